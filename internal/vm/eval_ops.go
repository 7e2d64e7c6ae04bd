package vm

import (
	"math"
	"strings"

	"pyjs/internal/source"
)

func truthy(v Value) bool {
	switch v.Kind {
	case VKNone:
		return false
	case VKBool:
		return v.Bool
	case VKInt:
		return v.Int != 0
	case VKFloat:
		return v.Float != 0
	case VKStr:
		return v.Str != ""
	case VKList:
		return len(v.List.Items) > 0
	case VKDict:
		return v.Dict.Len() > 0
	}
	return true
}

// numeric widens bools and ints for arithmetic.
func numeric(v Value) (i int64, f float64, isFloat, ok bool) {
	switch v.Kind {
	case VKInt:
		return v.Int, float64(v.Int), false, true
	case VKBool:
		if v.Bool {
			return 1, 1, false, true
		}
		return 0, 0, false, true
	case VKFloat:
		return 0, v.Float, true, true
	}
	return 0, 0, false, false
}

func (vm *VM) binary(op string, l, r Value, span source.Span) (Value, error) {
	switch op {
	case "==":
		return BoolValue(equal(l, r)), nil
	case "!=":
		return BoolValue(!equal(l, r)), nil
	case "<", "<=", ">", ">=":
		c, ok := compare(l, r)
		if !ok {
			return None, vm.fail(span, PanicTypeMismatch, "'%s' not supported between %s and %s", op, l.Kind, r.Kind)
		}
		switch op {
		case "<":
			return BoolValue(c < 0), nil
		case "<=":
			return BoolValue(c <= 0), nil
		case ">":
			return BoolValue(c > 0), nil
		}
		return BoolValue(c >= 0), nil
	case "in":
		return vm.contains(r, l, span)
	}

	li, lf, lfloat, lok := numeric(l)
	ri, rf, rfloat, rok := numeric(r)
	if lok && rok {
		if lfloat || rfloat || op == "/" {
			return vm.floatOp(op, lf, rf, span)
		}
		return vm.intOp(op, li, ri, span)
	}

	switch {
	case op == "+" && l.Kind == VKStr && r.Kind == VKStr:
		return StrValue(l.Str + r.Str), nil
	case op == "+" && l.Kind == VKList && r.Kind == VKList:
		items := append(append([]Value(nil), l.List.Items...), r.List.Items...)
		return ListValue(items...), nil
	case op == "*" && l.Kind == VKStr && rok && !rfloat:
		return StrValue(strings.Repeat(l.Str, int(max(ri, 0)))), nil
	case op == "*" && l.Kind == VKList && rok && !rfloat:
		var items []Value
		for range max(ri, 0) {
			items = append(items, l.List.Items...)
		}
		return ListValue(items...), nil
	case op == "%" && l.Kind == VKStr:
		return StrValue(strings.Replace(l.Str, "%s", Str(r), 1)), nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "unsupported operand types for %s: %s and %s", op, l.Kind, r.Kind)
}

func (vm *VM) intOp(op string, a, b int64, span source.Span) (Value, error) {
	switch op {
	case "+":
		return IntValue(a + b), nil
	case "-":
		return IntValue(a - b), nil
	case "*":
		return IntValue(a * b), nil
	case "//", "%":
		if b == 0 {
			return None, vm.fail(span, PanicDivByZero, "integer division or modulo by zero")
		}
		q, m := a/b, a%b
		if m != 0 && (m < 0) != (b < 0) {
			q--
			m += b
		}
		if op == "//" {
			return IntValue(q), nil
		}
		return IntValue(m), nil
	case "**":
		if b < 0 {
			return FloatValue(math.Pow(float64(a), float64(b))), nil
		}
		out := int64(1)
		for range b {
			out *= a
		}
		return IntValue(out), nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "unsupported operator %s for int", op)
}

func (vm *VM) floatOp(op string, a, b float64, span source.Span) (Value, error) {
	switch op {
	case "+":
		return FloatValue(a + b), nil
	case "-":
		return FloatValue(a - b), nil
	case "*":
		return FloatValue(a * b), nil
	case "/", "//", "%":
		if b == 0 {
			return None, vm.fail(span, PanicDivByZero, "float division by zero")
		}
		switch op {
		case "/":
			return FloatValue(a / b), nil
		case "//":
			return FloatValue(math.Floor(a / b)), nil
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return FloatValue(m), nil
	case "**":
		return FloatValue(math.Pow(a, b)), nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "unsupported operator %s for float", op)
}

func (vm *VM) unary(op string, v Value, span source.Span) (Value, error) {
	switch op {
	case "not":
		return BoolValue(!truthy(v)), nil
	case "-":
		i, f, isFloat, ok := numeric(v)
		if ok {
			if isFloat {
				return FloatValue(-f), nil
			}
			return IntValue(-i), nil
		}
	case "+":
		i, f, isFloat, ok := numeric(v)
		if ok {
			if isFloat {
				return FloatValue(f), nil
			}
			return IntValue(i), nil
		}
	}
	return None, vm.fail(span, PanicTypeMismatch, "bad operand type for unary %s: %s", op, v.Kind)
}

func equal(a, b Value) bool {
	ai, af, afloat, aok := numeric(a)
	bi, bf, bfloat, bok := numeric(b)
	if aok && bok {
		if afloat || bfloat {
			return af == bf
		}
		return ai == bi
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VKNone:
		return true
	case VKStr:
		return a.Str == b.Str
	case VKList:
		if len(a.List.Items) != len(b.List.Items) {
			return false
		}
		for i := range a.List.Items {
			if !equal(a.List.Items[i], b.List.Items[i]) {
				return false
			}
		}
		return true
	case VKDict:
		if a.Dict.Len() != b.Dict.Len() {
			return false
		}
		for _, k := range a.Dict.Keys() {
			av, _ := a.Dict.Get(k)
			bv, ok := b.Dict.Get(k)
			if !ok || !equal(av, bv) {
				return false
			}
		}
		return true
	case VKObject:
		return a.Obj == b.Obj
	case VKClass:
		return a.Class == b.Class
	case VKFunc, VKBound:
		return a.Fn == b.Fn
	}
	return false
}

func compare(a, b Value) (int, bool) {
	ai, af, afloat, aok := numeric(a)
	bi, bf, bfloat, bok := numeric(b)
	if aok && bok {
		if afloat || bfloat {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			}
			return 0, true
		}
		switch {
		case ai < bi:
			return -1, true
		case ai > bi:
			return 1, true
		}
		return 0, true
	}
	if a.Kind == VKStr && b.Kind == VKStr {
		return strings.Compare(a.Str, b.Str), true
	}
	if a.Kind == VKList && b.Kind == VKList {
		for i := 0; i < len(a.List.Items) && i < len(b.List.Items); i++ {
			if equal(a.List.Items[i], b.List.Items[i]) {
				continue
			}
			return compare(a.List.Items[i], b.List.Items[i])
		}
		return len(a.List.Items) - len(b.List.Items), true
	}
	return 0, false
}

func (vm *VM) contains(container, item Value, span source.Span) (Value, error) {
	switch container.Kind {
	case VKList:
		for _, v := range container.List.Items {
			if equal(v, item) {
				return BoolValue(true), nil
			}
		}
		return BoolValue(false), nil
	case VKDict:
		_, ok := container.Dict.Get(item)
		return BoolValue(ok), nil
	case VKStr:
		if item.Kind != VKStr {
			return None, vm.fail(span, PanicTypeMismatch, "'in <string>' requires string as left operand")
		}
		return BoolValue(strings.Contains(container.Str, item.Str)), nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "argument of type %s is not iterable", container.Kind)
}

// normIndex applies Python's negative indexing.
func (vm *VM) normIndex(idx Value, n int, span source.Span) (int, error) {
	i, _, isFloat, ok := numeric(idx)
	if !ok || isFloat {
		return 0, vm.fail(span, PanicTypeMismatch, "indices must be integers, not %s", idx.Kind)
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, vm.fail(span, PanicOutOfBounds, "index %d out of range", i)
	}
	return int(i), nil
}

func (vm *VM) index(obj, idx Value, span source.Span) (Value, error) {
	switch obj.Kind {
	case VKList:
		i, err := vm.normIndex(idx, len(obj.List.Items), span)
		if err != nil {
			return None, err
		}
		return obj.List.Items[i], nil
	case VKStr:
		runes := []rune(obj.Str)
		i, err := vm.normIndex(idx, len(runes), span)
		if err != nil {
			return None, err
		}
		return StrValue(string(runes[i])), nil
	case VKDict:
		v, ok := obj.Dict.Get(idx)
		if !ok {
			return None, vm.fail(span, PanicKeyError, "key %s not found", Repr(idx))
		}
		return v, nil
	}
	return None, vm.fail(span, PanicTypeMismatch, "%s object is not subscriptable", obj.Kind)
}

func (vm *VM) setIndex(obj, idx, v Value, span source.Span) error {
	switch obj.Kind {
	case VKList:
		i, err := vm.normIndex(idx, len(obj.List.Items), span)
		if err != nil {
			return err
		}
		obj.List.Items[i] = v
		return nil
	case VKDict:
		if !obj.Dict.Set(idx, v) {
			return vm.fail(span, PanicTypeMismatch, "unhashable type: %s", idx.Kind)
		}
		return nil
	}
	return vm.fail(span, PanicTypeMismatch, "%s object does not support item assignment", obj.Kind)
}
