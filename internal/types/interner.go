package types

import (
	"fmt"

	"fortio.org/safecast"

	"aster/internal/source"
)

// Builtins stores TypeIDs for primitive types.
type Builtins struct {
	Unknown TypeID
	Int     TypeID
	Long    TypeID
	Double  TypeID
	Text    TypeID
	Bool    TypeID
	Unit    TypeID
	Null    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors, so two
// structurally equal types always share an ID.
type Interner struct {
	Strings  *source.Interner
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	fns      []FnInfo
	fnIndex  map[string]TypeID
	datas    []DataInfo
	enums    []EnumInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
// If strings is nil a fresh string interner is allocated.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		Strings: strings,
		types:   make([]Type, 1, 64), // 0 = NoTypeID
		index:   make(map[typeKey]TypeID, 64),
	}
	in.datas = append(in.datas, DataInfo{}) // reserve 0 as invalid sentinel
	in.enums = append(in.enums, EnumInfo{})
	in.builtins.Unknown = in.Intern(Type{Kind: KindUnknown})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Long = in.Intern(Type{Kind: KindLong})
	in.builtins.Double = in.Intern(Type{Kind: KindDouble})
	in.builtins.Text = in.Intern(Type{Kind: KindText})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[keyOf(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[keyOf(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of interned types.
func (in *Interner) Len() int { return len(in.types) - 1 }

// Optional, List, Map and Result intern the matching composite.
func (in *Interner) Optional(elem TypeID) TypeID { return in.Intern(MakeOptional(elem)) }
func (in *Interner) List(elem TypeID) TypeID     { return in.Intern(MakeList(elem)) }
func (in *Interner) Map(key, value TypeID) TypeID {
	return in.Intern(MakeMap(key, value))
}
func (in *Interner) Result(ok, err TypeID) TypeID {
	return in.Intern(MakeResult(ok, err))
}

// Var interns a type parameter by name.
func (in *Interner) Var(name string) TypeID {
	return in.Intern(Type{Kind: KindVar, Payload: uint32(in.Strings.Intern(name))})
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Key     TypeID
	Payload uint32
	Level   uint8
}

func keyOf(t Type) typeKey {
	return typeKey{Kind: t.Kind, Elem: t.Elem, Key: t.Key, Payload: t.Payload, Level: uint8(t.Level)}
}
