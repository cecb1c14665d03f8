package types

import (
	"fmt"
	"slices"
	"strconv"

	"fortio.org/safecast"
)

// FnInfo is the signature behind a KindFn type.
type FnInfo struct {
	Params []TypeID
	Result TypeID
}

// fnSig encodes a signature as "p1,p2->r"; equal signatures share a key, so
// function types intern like every other composite.
func fnSig(params []TypeID, result TypeID) string {
	buf := make([]byte, 0, 8*(len(params)+1))
	for i, p := range params {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(p), 10)
	}
	buf = append(buf, "->"...)
	buf = strconv.AppendUint(buf, uint64(result), 10)
	return string(buf)
}

// RegisterFn interns the function type (params) -> result.
func (in *Interner) RegisterFn(params []TypeID, result TypeID) TypeID {
	sig := fnSig(params, result)
	if id, ok := in.fnIndex[sig]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn signature table overflow: %w", err))
	}
	in.fns = append(in.fns, FnInfo{Params: slices.Clone(params), Result: result})
	id := in.internRaw(Type{Kind: KindFn, Payload: slot})
	if in.fnIndex == nil {
		in.fnIndex = make(map[string]TypeID)
	}
	in.fnIndex[sig] = id
	return id
}

// FnInfo returns the signature of a function type.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFn || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}
