package vm

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"pyjs/internal/source"
)

type builtinFunc func(vm *VM, args []Value, span source.Span) (Value, error)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"print": builtinPrint,
		"len":   builtinLen,
		"str": func(_ *VM, args []Value, _ source.Span) (Value, error) {
			if len(args) == 0 {
				return StrValue(""), nil
			}
			return StrValue(Str(args[0])), nil
		},
		"int":   builtinInt,
		"float": builtinFloat,
		"bool": func(_ *VM, args []Value, _ source.Span) (Value, error) {
			return BoolValue(len(args) > 0 && truthy(args[0])), nil
		},
		"range": builtinRange,
		"abs":   builtinAbs,
		"min":   builtinMinMax(-1),
		"max":   builtinMinMax(1),
	}
}

func (vm *VM) callBuiltin(fn Value, args []Value, span source.Span) (Value, error) {
	if fn.Recv != nil {
		return vm.callMethodBuiltin(*fn.Recv, fn.Str, args, span)
	}
	impl, ok := builtins[fn.Str]
	if !ok {
		return None, vm.fail(span, PanicUndefinedName, "unknown builtin %s", fn.Str)
	}
	return impl(vm, args, span)
}

func builtinPrint(vm *VM, args []Value, _ source.Span) (Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Str(a)
	}
	_, _ = io.WriteString(vm.out, strings.Join(parts, " ")+"\n") //nolint:errcheck
	return None, nil
}

func builtinLen(vm *VM, args []Value, span source.Span) (Value, error) {
	if len(args) != 1 {
		return None, vm.fail(span, PanicArity, "len() takes exactly one argument (%d given)", len(args))
	}
	switch v := args[0]; v.Kind {
	case VKStr:
		return IntValue(int64(len([]rune(v.Str)))), nil
	case VKList:
		return IntValue(int64(len(v.List.Items))), nil
	case VKDict:
		return IntValue(int64(v.Dict.Len())), nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "object of type %s has no len()", args[0].Kind)
}

func builtinInt(vm *VM, args []Value, span source.Span) (Value, error) {
	if len(args) == 0 {
		return IntValue(0), nil
	}
	switch v := args[0]; v.Kind {
	case VKInt:
		return v, nil
	case VKBool:
		if v.Bool {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case VKFloat:
		return IntValue(int64(math.Trunc(v.Float))), nil
	case VKStr:
		i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return None, vm.fail(span, PanicTypeMismatch, "invalid literal for int(): %s", Repr(v))
		}
		return IntValue(i), nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "int() argument must be a string or a number, not %s", args[0].Kind)
}

func builtinFloat(vm *VM, args []Value, span source.Span) (Value, error) {
	if len(args) == 0 {
		return FloatValue(0), nil
	}
	if _, f, _, ok := numeric(args[0]); ok {
		return FloatValue(f), nil
	}
	if args[0].Kind == VKStr {
		f, err := strconv.ParseFloat(strings.TrimSpace(args[0].Str), 64)
		if err == nil {
			return FloatValue(f), nil
		}
	}
	return None, vm.fail(span, PanicTypeMismatch, "could not convert %s to float", Repr(args[0]))
}

func builtinRange(vm *VM, args []Value, span source.Span) (Value, error) {
	bounds := make([]int64, len(args))
	for i, a := range args {
		n, _, isFloat, ok := numeric(a)
		if !ok || isFloat {
			return None, vm.fail(span, PanicTypeMismatch, "range() arguments must be integers")
		}
		bounds[i] = n
	}
	start, stop, step := int64(0), int64(0), int64(1)
	switch len(bounds) {
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	case 3:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	default:
		return None, vm.fail(span, PanicArity, "range expected 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return None, vm.fail(span, PanicTypeMismatch, "range() arg 3 must not be zero")
	}
	var items []Value
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		items = append(items, IntValue(i))
	}
	return ListValue(items...), nil
}

func builtinAbs(vm *VM, args []Value, span source.Span) (Value, error) {
	if len(args) != 1 {
		return None, vm.fail(span, PanicArity, "abs() takes exactly one argument")
	}
	i, f, isFloat, ok := numeric(args[0])
	if !ok {
		return None, vm.fail(span, PanicTypeMismatch, "bad operand type for abs(): %s", args[0].Kind)
	}
	if isFloat {
		return FloatValue(math.Abs(f)), nil
	}
	if i < 0 {
		i = -i
	}
	return IntValue(i), nil
}

// builtinMinMax returns min when sign is -1 and max when it is 1.
func builtinMinMax(sign int) builtinFunc {
	return func(vm *VM, args []Value, span source.Span) (Value, error) {
		if len(args) == 1 && args[0].Kind == VKList {
			args = args[0].List.Items
		}
		if len(args) == 0 {
			return None, vm.fail(span, PanicArity, "expected at least one argument")
		}
		best := args[0]
		for _, a := range args[1:] {
			c, ok := compare(a, best)
			if !ok {
				return None, vm.fail(span, PanicTypeMismatch, "cannot compare %s and %s", a.Kind, best.Kind)
			}
			if c*sign > 0 {
				best = a
			}
		}
		return best, nil
	}
}

var containerMethods = map[ValueKind][]string{
	VKList: {"append", "pop", "insert", "extend", "index", "copy"},
	VKDict: {"get", "keys", "values", "items", "pop", "copy"},
	VKStr:  {"upper", "lower", "join", "split", "strip", "startswith", "endswith"},
}

func hasMethod(kind ValueKind, name string) bool {
	for _, m := range containerMethods[kind] {
		if m == name {
			return true
		}
	}
	return false
}

func (vm *VM) callMethodBuiltin(recv Value, name string, args []Value, span source.Span) (Value, error) {
	arity := func(lo, hi int) error {
		if len(args) < lo || len(args) > hi {
			return vm.fail(span, PanicArity, "%s.%s() takes %d to %d arguments, got %d", recv.Kind, name, lo, hi, len(args))
		}
		return nil
	}
	switch recv.Kind {
	case VKList:
		l := recv.List
		switch name {
		case "append":
			if err := arity(1, 1); err != nil {
				return None, err
			}
			l.Items = append(l.Items, args[0])
			return None, nil
		case "extend":
			if err := arity(1, 1); err != nil {
				return None, err
			}
			items, err := vm.iterate(args[0], span)
			if err != nil {
				return None, err
			}
			l.Items = append(l.Items, items...)
			return None, nil
		case "pop":
			if err := arity(0, 1); err != nil {
				return None, err
			}
			if len(l.Items) == 0 {
				return None, vm.fail(span, PanicOutOfBounds, "pop from empty list")
			}
			i := len(l.Items) - 1
			if len(args) == 1 {
				var err error
				if i, err = vm.normIndex(args[0], len(l.Items), span); err != nil {
					return None, err
				}
			}
			v := l.Items[i]
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return v, nil
		case "insert":
			if err := arity(2, 2); err != nil {
				return None, err
			}
			n, _, _, _ := numeric(args[0])
			i := int(max(min(n, int64(len(l.Items))), 0))
			l.Items = append(l.Items, None)
			copy(l.Items[i+1:], l.Items[i:])
			l.Items[i] = args[1]
			return None, nil
		case "index":
			if err := arity(1, 1); err != nil {
				return None, err
			}
			for i, v := range l.Items {
				if equal(v, args[0]) {
					return IntValue(int64(i)), nil
				}
			}
			return None, vm.fail(span, PanicKeyError, "%s is not in list", Repr(args[0]))
		case "copy":
			return ListValue(append([]Value(nil), l.Items...)...), nil
		}
	case VKDict:
		d := recv.Dict
		switch name {
		case "get":
			if err := arity(1, 2); err != nil {
				return None, err
			}
			if v, ok := d.Get(args[0]); ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return None, nil
		case "keys":
			return ListValue(d.Keys()...), nil
		case "values":
			return ListValue(d.Values()...), nil
		case "items":
			keys, vals := d.Keys(), d.Values()
			items := make([]Value, len(keys))
			for i := range keys {
				items[i] = ListValue(keys[i], vals[i])
			}
			return ListValue(items...), nil
		case "pop":
			if err := arity(1, 2); err != nil {
				return None, err
			}
			if v, ok := d.Delete(args[0]); ok {
				return v, nil
			}
			if len(args) == 2 {
				return args[1], nil
			}
			return None, vm.fail(span, PanicKeyError, "key %s not found", Repr(args[0]))
		case "copy":
			out := NewDict()
			keys, vals := d.Keys(), d.Values()
			for i := range keys {
				out.Set(keys[i], vals[i])
			}
			return Value{Kind: VKDict, Dict: out}, nil
		}
	case VKStr:
		s := recv.Str
		switch name {
		case "upper":
			return StrValue(strings.ToUpper(s)), nil
		case "lower":
			return StrValue(strings.ToLower(s)), nil
		case "strip":
			return StrValue(strings.TrimSpace(s)), nil
		case "startswith", "endswith":
			if err := arity(1, 1); err != nil {
				return None, err
			}
			if name == "startswith" {
				return BoolValue(strings.HasPrefix(s, Str(args[0]))), nil
			}
			return BoolValue(strings.HasSuffix(s, Str(args[0]))), nil
		case "join":
			if err := arity(1, 1); err != nil {
				return None, err
			}
			items, err := vm.iterate(args[0], span)
			if err != nil {
				return None, err
			}
			parts := make([]string, len(items))
			for i, it := range items {
				if it.Kind != VKStr {
					return None, vm.fail(span, PanicTypeMismatch, "sequence item %d: expected str, %s found", i, it.Kind)
				}
				parts[i] = it.Str
			}
			return StrValue(strings.Join(parts, s)), nil
		case "split":
			var parts []string
			if len(args) == 0 {
				parts = strings.Fields(s)
			} else {
				parts = strings.Split(s, Str(args[0]))
			}
			items := make([]Value, len(parts))
			for i, p := range parts {
				items[i] = StrValue(p)
			}
			return ListValue(items...), nil
		}
	}
	return None, vm.fail(span, PanicUndefinedAttr, "%s", fmt.Sprintf("%s object has no attribute %q", recv.Kind, name))
}
