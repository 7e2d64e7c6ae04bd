package vm

import (
	"strconv"
	"strings"

	"pyjs/internal/ir"
)

// Str renders v the way str() does.
func Str(v Value) string {
	if v.Kind == VKStr {
		return v.Str
	}
	return Repr(v)
}

// Repr renders v the way repr() does.
func Repr(v Value) string {
	switch v.Kind {
	case VKNone:
		return "None"
	case VKBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case VKInt:
		return strconv.FormatInt(v.Int, 10)
	case VKFloat:
		return ir.FormatFloat(v.Float)
	case VKStr:
		return ir.Quote(v.Str)
	case VKList:
		parts := make([]string, len(v.List.Items))
		for i, item := range v.List.Items {
			parts[i] = Repr(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VKDict:
		keys, vals := v.Dict.Keys(), v.Dict.Values()
		parts := make([]string, len(keys))
		for i := range keys {
			parts[i] = Repr(keys[i]) + ": " + Repr(vals[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case VKObject:
		return "<" + v.Obj.Class.Name() + " object>"
	case VKClass:
		return "<class '" + v.Class.Name() + "'>"
	case VKFunc, VKBound:
		return "<function " + v.Fn.Name + ">"
	case VKBuiltin:
		return "<built-in function " + v.Str + ">"
	case VKSuper:
		return "<super>"
	}
	return "?"
}
