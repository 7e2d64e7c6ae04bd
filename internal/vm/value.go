package vm

import (
	"pyjs/internal/ir"
)

// ValueKind identifies the runtime kind of a Value.
type ValueKind uint8

const (
	VKNone ValueKind = iota
	VKInt
	VKFloat
	VKBool
	VKStr
	VKList
	VKDict
	// VKObject is a class instance.
	VKObject
	// VKClass is a class used as a value (Base.static_action, cls).
	VKClass
	// VKFunc is a module function or static method.
	VKFunc
	// VKBound is a method bound to an instance or, for class methods, to a
	// class.
	VKBound
	// VKBuiltin is a builtin function or container method.
	VKBuiltin
	// VKSuper is the receiver produced by super().
	VKSuper
)

func (k ValueKind) String() string {
	switch k {
	case VKNone:
		return "NoneType"
	case VKInt:
		return "int"
	case VKFloat:
		return "float"
	case VKBool:
		return "bool"
	case VKStr:
		return "str"
	case VKList:
		return "list"
	case VKDict:
		return "dict"
	case VKObject:
		return "object"
	case VKClass:
		return "type"
	case VKFunc, VKBound:
		return "function"
	case VKBuiltin:
		return "builtin_function_or_method"
	case VKSuper:
		return "super"
	default:
		return "unknown"
	}
}

// Value is a runtime value. Only the fields of its Kind are meaningful.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	List  *List
	Dict  *Dict
	Obj   *Object
	Class *Class
	Fn    *ir.Func
	// Recv is the bound receiver of VKBound, VKBuiltin and VKSuper values.
	Recv *Value
	// Owner is the class declaring Fn; super() inside Fn starts above it.
	Owner *Class
}

var None = Value{Kind: VKNone}

func IntValue(v int64) Value     { return Value{Kind: VKInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: VKFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: VKBool, Bool: v} }
func StrValue(v string) Value    { return Value{Kind: VKStr, Str: v} }

func ListValue(items ...Value) Value {
	return Value{Kind: VKList, List: &List{Items: items}}
}

// List is a mutable, shared list.
type List struct {
	Items []Value
}

// Object is a class instance.
type Object struct {
	Class  *Class
	Fields map[string]Value
}

// Class is the runtime view of a declaration: its statics and the resolved
// ancestor chain.
type Class struct {
	Decl    *ir.Class
	Base    *Class
	Statics map[string]Value
	// statics keeps declaration order for initialization.
	order []string
}

func (c *Class) Name() string {
	return c.Decl.Name
}

// chain returns c followed by its ancestors.
func (c *Class) chain() []*Class {
	var out []*Class
	for cur := c; cur != nil; cur = cur.Base {
		out = append(out, cur)
	}
	return out
}

// method finds name on c or an ancestor and reports the declaring class.
func (c *Class) method(name string) (*ir.Func, *Class) {
	for _, cur := range c.chain() {
		if fn := cur.Decl.Method(name); fn != nil {
			return fn, cur
		}
	}
	return nil, nil
}

func (c *Class) static(name string) (Value, bool) {
	for _, cur := range c.chain() {
		if v, ok := cur.Statics[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// isSubclass reports whether c is other or derives from it.
func (c *Class) isSubclass(other *Class) bool {
	for _, cur := range c.chain() {
		if cur == other {
			return true
		}
	}
	return false
}
