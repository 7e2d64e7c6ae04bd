package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindPrimitive is a named scalar or non-generic class (int, str, Vec).
	KindPrimitive
	KindList
	KindDict
	KindUnion
	// KindGeneric is a reference to a generic template applied to arguments.
	KindGeneric
	// KindParam is a formal type parameter inside a template.
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindPrimitive:
		return "primitive"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindUnion:
		return "union"
	case KindGeneric:
		return "generic"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor. Elem is the list element or dict value, Key
// the dict key. Payload indexes the name table for primitives and params, the
// member table for unions and the generic table for generic references.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Key     TypeID
	Payload uint32
}

// MakeList describes list[elem].
func MakeList(elem TypeID) Type {
	return Type{Kind: KindList, Elem: elem}
}

// MakeDict describes dict[key, value].
func MakeDict(key, value TypeID) Type {
	return Type{Kind: KindDict, Key: key, Elem: value}
}

// GenericInfo stores the template name and ordered arguments of a generic
// reference.
type GenericInfo struct {
	Name string
	Args []TypeID
}
