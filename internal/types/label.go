package types

import (
	"strings"

	"aster/internal/source"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	if typesIn == nil {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnknown:
		return "Unknown"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindDouble:
		return "Double"
	case KindText:
		return "Text"
	case KindBool:
		return "Bool"
	case KindUnit:
		return "Unit"
	case KindNull:
		return "Null"
	case KindData:
		if info, ok := typesIn.DataInfo(id); ok {
			return info.Name
		}
	case KindEnum:
		if info, ok := typesIn.EnumInfo(id); ok {
			return info.Name
		}
	case KindVar:
		return typesIn.Strings.MustLookup(source.StringID(tt.Payload))
	case KindOptional:
		return labelDepth(typesIn, tt.Elem, depth+1) + "?"
	case KindList:
		return "List<" + labelDepth(typesIn, tt.Elem, depth+1) + ">"
	case KindMap:
		return "Map<" + labelDepth(typesIn, tt.Key, depth+1) + ", " + labelDepth(typesIn, tt.Elem, depth+1) + ">"
	case KindResult:
		return "Result<" + labelDepth(typesIn, tt.Elem, depth+1) + ", " + labelDepth(typesIn, tt.Key, depth+1) + ">"
	case KindFn:
		info, ok := typesIn.FnInfo(id)
		if !ok {
			return "fn"
		}
		params := make([]string, len(info.Params))
		for i, p := range info.Params {
			params[i] = labelDepth(typesIn, p, depth+1)
		}
		return "(" + strings.Join(params, ", ") + ") -> " + labelDepth(typesIn, info.Result, depth+1)
	case KindPii:
		var b strings.Builder
		b.WriteString("Pii<")
		b.WriteString(labelDepth(typesIn, tt.Elem, depth+1))
		b.WriteString(", ")
		b.WriteString(tt.Level.String())
		if cat, _ := typesIn.Strings.Lookup(source.StringID(tt.Payload)); cat != "" {
			b.WriteString(", ")
			b.WriteString(cat)
		}
		b.WriteByte('>')
		return b.String()
	}
	return tt.Kind.String()
}
