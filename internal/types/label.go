package types

import "strings"

// Label renders id in source syntax, e.g. dict[str, str | int] or
// Counter[list[int]].
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID || typesIn == nil {
		return "?"
	}
	if depth > 32 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindPrimitive, KindParam:
		return typesIn.names[tt.Payload]
	case KindList:
		return "list[" + labelDepth(typesIn, tt.Elem, depth+1) + "]"
	case KindDict:
		return "dict[" + labelDepth(typesIn, tt.Key, depth+1) + ", " + labelDepth(typesIn, tt.Elem, depth+1) + "]"
	case KindUnion:
		members := typesIn.unions[tt.Payload]
		parts := make([]string, len(members))
		for i, m := range members {
			parts[i] = labelDepth(typesIn, m, depth+1)
		}
		return strings.Join(parts, " | ")
	case KindGeneric:
		info := typesIn.generics[tt.Payload]
		parts := make([]string, len(info.Args))
		for i, a := range info.Args {
			parts[i] = labelDepth(typesIn, a, depth+1)
		}
		return info.Name + "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}
