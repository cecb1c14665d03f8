package types

// Compatible reports whether a value of type actual may be used where
// expected is required.
//
// Rules: identical IDs match; Unknown and type variables match anything;
// Pii wrappers are transparent (taint is tracked separately); T? accepts T,
// Null and U? with U compatible; containers, results and functions compare
// element-wise.
func (in *Interner) Compatible(expected, actual TypeID) bool {
	if expected == actual {
		return true
	}
	e, okE := in.Lookup(expected)
	a, okA := in.Lookup(actual)
	if !okE || !okA {
		return true
	}
	if e.Kind == KindUnknown || a.Kind == KindUnknown || e.Kind == KindVar || a.Kind == KindVar {
		return true
	}
	if e.Kind == KindPii {
		return in.Compatible(e.Elem, actual)
	}
	if a.Kind == KindPii {
		return in.Compatible(expected, a.Elem)
	}

	switch e.Kind {
	case KindOptional:
		switch a.Kind {
		case KindNull:
			return true
		case KindOptional:
			return in.Compatible(e.Elem, a.Elem)
		}
		return in.Compatible(e.Elem, actual)
	case KindList:
		return a.Kind == KindList && in.Compatible(e.Elem, a.Elem)
	case KindMap:
		return a.Kind == KindMap && in.Compatible(e.Key, a.Key) && in.Compatible(e.Elem, a.Elem)
	case KindResult:
		return a.Kind == KindResult && in.Compatible(e.Elem, a.Elem) && in.Compatible(e.Key, a.Key)
	case KindFn:
		return in.fnCompatible(expected, actual)
	}
	return false
}

func (in *Interner) fnCompatible(expected, actual TypeID) bool {
	ef, okE := in.FnInfo(expected)
	af, okA := in.FnInfo(actual)
	if !okE || !okA || len(ef.Params) != len(af.Params) {
		return false
	}
	for i := range ef.Params {
		// параметры контравариантны
		if !in.Compatible(af.Params[i], ef.Params[i]) {
			return false
		}
	}
	return in.Compatible(ef.Result, af.Result)
}

// Join returns a type both a and b fit into, used for branches and list
// items. Unknown absorbs; Null joins with T into T?. Incompatible types
// yield ok == false.
func (in *Interner) Join(a, b TypeID) (TypeID, bool) {
	switch {
	case a == b:
		return a, true
	case in.IsUnknown(a):
		return b, true
	case in.IsUnknown(b):
		return a, true
	}
	ka, kb := in.KindOf(a), in.KindOf(b)
	switch {
	case ka == KindNull && kb != KindOptional:
		return in.Optional(b), true
	case kb == KindNull && ka != KindOptional:
		return in.Optional(a), true
	}
	if in.Compatible(a, b) {
		return a, true
	}
	if in.Compatible(b, a) {
		return b, true
	}
	return in.builtins.Unknown, false
}
