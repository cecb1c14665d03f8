package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"aster/internal/source"
)

// Field describes a single field inside a data type.
type Field struct {
	Name string
	Type TypeID
	Span source.Span
}

// DataInfo stores metadata for a nominal record type.
type DataInfo struct {
	Name   string
	Decl   source.Span
	Fields []Field
}

// Field returns the named field.
func (d *DataInfo) Field(name string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name     string
	Decl     source.Span
	Variants []string
}

// HasVariant reports whether name is one of the variants.
func (e *EnumInfo) HasVariant(name string) bool {
	return e != nil && slices.Contains(e.Variants, name)
}

// RegisterData allocates a nominal data type slot and returns its TypeID.
// Fields are attached later with SetDataFields so that records can refer to
// each other.
func (in *Interner) RegisterData(name string, decl source.Span) TypeID {
	in.datas = append(in.datas, DataInfo{Name: name, Decl: decl})
	slot := toSlot(len(in.datas)-1, "data")
	return in.internRaw(Type{Kind: KindData, Payload: slot})
}

// SetDataFields stores the resolved field descriptors for the data type.
func (in *Interner) SetDataFields(id TypeID, fields []Field) {
	info, ok := in.DataInfo(id)
	if !ok {
		return
	}
	info.Fields = slices.Clone(fields)
}

// DataInfo returns metadata for the provided data TypeID.
func (in *Interner) DataInfo(id TypeID) (*DataInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindData || tt.Payload == 0 || int(tt.Payload) >= len(in.datas) {
		return nil, false
	}
	return &in.datas[tt.Payload], true
}

// RegisterEnum allocates an enum type with its variants.
func (in *Interner) RegisterEnum(name string, decl source.Span, variants []string) TypeID {
	in.enums = append(in.enums, EnumInfo{Name: name, Decl: decl, Variants: slices.Clone(variants)})
	slot := toSlot(len(in.enums)-1, "enum")
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil, false
	}
	return &in.enums[tt.Payload], true
}

func toSlot(n int, what string) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s info overflow: %w", what, err))
	}
	return slot
}
