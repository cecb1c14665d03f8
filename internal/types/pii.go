package types

import (
	"aster/internal/pii"
	"aster/internal/source"
)

// Pii interns Pii<base, level, category>. Nested wrappers collapse into one
// whose level is the maximum.
func (in *Interner) Pii(base TypeID, level pii.Level, category string) TypeID {
	if tt, ok := in.Lookup(base); ok && tt.Kind == KindPii {
		if tt.Level > level {
			level = tt.Level
		}
		base = tt.Elem
	}
	return in.Intern(Type{
		Kind:    KindPii,
		Elem:    base,
		Level:   level,
		Payload: uint32(in.Strings.Intern(category)),
	})
}

// Unwrap strips a Pii wrapper, returning the underlying type.
func (in *Interner) Unwrap(id TypeID) TypeID {
	if tt, ok := in.Lookup(id); ok && tt.Kind == KindPii {
		return tt.Elem
	}
	return id
}

// PiiMeta returns the taint carried by a type: the Pii wrapper itself or a
// Pii wrapper directly inside Optional / List. Plain types carry none.
func (in *Interner) PiiMeta(id TypeID) *pii.Meta {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case KindPii:
		cat, _ := in.Strings.Lookup(source.StringID(tt.Payload))
		return pii.New(tt.Level, cat)
	case KindOptional, KindList:
		return in.PiiMeta(tt.Elem)
	case KindMap:
		return pii.Merge(in.PiiMeta(tt.Key), in.PiiMeta(tt.Elem))
	}
	return nil
}

// KindOf returns the kind of id after stripping Pii. Unknown for invalid IDs.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(in.Unwrap(id))
	if !ok {
		return KindUnknown
	}
	return tt.Kind
}

// IsUnknown reports whether id is the placeholder (or missing).
func (in *Interner) IsUnknown(id TypeID) bool {
	return in.KindOf(id) == KindUnknown
}
