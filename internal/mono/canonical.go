package mono

import (
	"strings"

	"pyjs/internal/types"
)

// CanonicalKey is the structural spelling of a type. Equal trees yield equal
// keys; the bracketed form keeps distinct trees apart.
type CanonicalKey string

// Canonicalize renders id as list[e], dict[k,v], a|b or T[a,b]. Union
// members keep declaration order.
func Canonicalize(in *types.Interner, id types.TypeID) CanonicalKey {
	var b strings.Builder
	writeCanonical(&b, in, id)
	return CanonicalKey(b.String())
}

// CanonicalArgs joins the keys of an argument tuple with ';'.
func CanonicalArgs(in *types.Interner, args []types.TypeID) CanonicalKey {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(';')
		}
		writeCanonical(&b, in, a)
	}
	return CanonicalKey(b.String())
}

func writeCanonical(b *strings.Builder, in *types.Interner, id types.TypeID) {
	tt, ok := in.Lookup(id)
	if !ok {
		b.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case types.KindPrimitive:
		b.WriteString(in.Name(id))
	case types.KindParam:
		b.WriteByte('?')
		b.WriteString(in.Name(id))
	case types.KindList:
		b.WriteString("list[")
		writeCanonical(b, in, tt.Elem)
		b.WriteByte(']')
	case types.KindDict:
		b.WriteString("dict[")
		writeCanonical(b, in, tt.Key)
		b.WriteByte(',')
		writeCanonical(b, in, tt.Elem)
		b.WriteByte(']')
	case types.KindUnion:
		for i, m := range in.UnionMembers(id) {
			if i > 0 {
				b.WriteByte('|')
			}
			writeCanonical(b, in, m)
		}
	case types.KindGeneric:
		info, _ := in.GenericInfo(id)
		b.WriteString(info.Name)
		b.WriteByte('[')
		for i, a := range info.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, in, a)
		}
		b.WriteByte(']')
	default:
		b.WriteString("<invalid>")
	}
}

// InstKey identifies one instantiation.
type InstKey struct {
	Template string
	Args     CanonicalKey
}

func (k InstKey) String() string {
	return k.Template + "[" + strings.ReplaceAll(string(k.Args), ";", ", ") + "]"
}

// NewInstKey builds the key for template applied to args.
func NewInstKey(in *types.Interner, template string, args []types.TypeID) InstKey {
	return InstKey{Template: template, Args: CanonicalArgs(in, args)}
}
