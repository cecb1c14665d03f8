package types

import (
	"fmt"

	"aster/internal/pii"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnknown      // best-effort placeholder after an error
	KindInt
	KindLong
	KindDouble
	KindText
	KindBool
	KindUnit
	KindNull
	KindData     // nominal record, Payload = data slot
	KindEnum     // nominal enum, Payload = enum slot
	KindVar      // type parameter, Payload = name
	KindFn       // Payload = fn slot
	KindOptional // Elem?
	KindList     // List<Elem>
	KindMap      // Map<Key, Elem>
	KindResult   // Result<Elem, Key>
	KindPii      // Pii<Elem>, Level + Payload = category
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnknown:
		return "unknown"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindUnit:
		return "unit"
	case KindNull:
		return "null"
	case KindData:
		return "data"
	case KindEnum:
		return "enum"
	case KindVar:
		return "var"
	case KindFn:
		return "fn"
	case KindOptional:
		return "optional"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindResult:
		return "result"
	case KindPii:
		return "pii"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsPrimitive reports whether k is a builtin scalar.
func (k Kind) IsPrimitive() bool {
	return k >= KindInt && k <= KindNull
}

// Type is a compact descriptor for any supported type.
// For KindResult, Elem is the ok type and Key the error type.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Key     TypeID
	Payload uint32
	Level   pii.Level // for KindPii
}

// Descriptor helpers ---------------------------------------------------------

// MakeOptional describes T?.
func MakeOptional(elem TypeID) Type {
	return Type{Kind: KindOptional, Elem: elem}
}

// MakeList describes List<T>.
func MakeList(elem TypeID) Type {
	return Type{Kind: KindList, Elem: elem}
}

// MakeMap describes Map<K, V>.
func MakeMap(key, value TypeID) Type {
	return Type{Kind: KindMap, Key: key, Elem: value}
}

// MakeResult describes Result<Ok, Err>.
func MakeResult(ok, err TypeID) Type {
	return Type{Kind: KindResult, Elem: ok, Key: err}
}
