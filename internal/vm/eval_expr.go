package vm

import (
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/source"
)

func (vm *VM) eval(e *ir.Expr) (Value, error) {
	if e == nil {
		return None, nil
	}
	switch d := e.Data.(type) {
	case ir.LiteralData:
		switch d.Kind {
		case ir.LiteralInt:
			return IntValue(d.IntValue), nil
		case ir.LiteralFloat:
			return FloatValue(d.FloatValue), nil
		case ir.LiteralBool:
			return BoolValue(d.BoolValue), nil
		case ir.LiteralString:
			return StrValue(d.StringValue), nil
		}
		return None, nil
	case ir.NameData:
		return vm.lookup(d.Name, e.Span)
	case ir.FieldData:
		obj, err := vm.eval(d.Object)
		if err != nil {
			return None, err
		}
		return vm.attr(obj, d.Name, e.Span)
	case ir.IndexData:
		obj, err := vm.eval(d.Object)
		if err != nil {
			return None, err
		}
		idx, err := vm.eval(d.Index)
		if err != nil {
			return None, err
		}
		return vm.index(obj, idx, e.Span)
	case ir.BinaryData:
		return vm.evalBinary(d, e.Span)
	case ir.UnaryData:
		v, err := vm.eval(d.Operand)
		if err != nil {
			return None, err
		}
		return vm.unary(d.Op, v, e.Span)
	case ir.CallData:
		callee, err := vm.eval(d.Callee)
		if err != nil {
			return None, err
		}
		args, err := vm.evalAll(d.Args)
		if err != nil {
			return None, err
		}
		return vm.call(callee, args, e.Span)
	case ir.NewData:
		c := vm.Classes[d.Class]
		if c == nil {
			return None, vm.fail(e.Span, PanicUndefinedName, "class %q is not defined", d.Class)
		}
		args, err := vm.evalAll(d.Args)
		if err != nil {
			return None, err
		}
		return vm.instantiate(c, args, e.Span)
	case ir.ListData:
		items, err := vm.evalAll(d.Elems)
		if err != nil {
			return None, err
		}
		return ListValue(items...), nil
	case ir.DictData:
		dict := NewDict()
		for _, en := range d.Entries {
			k, err := vm.eval(en.Key)
			if err != nil {
				return None, err
			}
			v, err := vm.eval(en.Value)
			if err != nil {
				return None, err
			}
			if !dict.Set(k, v) {
				return None, vm.fail(en.Key.Span, PanicTypeMismatch, "unhashable type: %s", k.Kind)
			}
		}
		return Value{Kind: VKDict, Dict: dict}, nil
	case ir.FormatData:
		var b strings.Builder
		for _, p := range d.Parts {
			if p.Expr == nil {
				b.WriteString(p.Text)
				continue
			}
			v, err := vm.eval(p.Expr)
			if err != nil {
				return None, err
			}
			b.WriteString(Str(v))
		}
		return StrValue(b.String()), nil
	case ir.SuperData:
		f := vm.frame()
		if f.owner == nil || f.recv == nil {
			return None, vm.fail(e.Span, PanicTypeMismatch, "super() used outside a method")
		}
		return Value{Kind: VKSuper, Recv: f.recv, Owner: f.owner}, nil
	}
	return None, vm.fail(e.Span, PanicUnimplemented, "unsupported expression %s", e.Kind)
}

func (vm *VM) evalAll(es []*ir.Expr) ([]Value, error) {
	out := make([]Value, 0, len(es))
	for _, e := range es {
		v, err := vm.eval(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// lookup resolves a name: locals, globals, functions, classes, builtins.
func (vm *VM) lookup(name string, span source.Span) (Value, error) {
	if v, ok := vm.frame().env.get(name); ok {
		return v, nil
	}
	if v, ok := vm.Globals[name]; ok {
		return v, nil
	}
	if fn := vm.M.Func(name); fn != nil {
		return Value{Kind: VKFunc, Fn: fn}, nil
	}
	if c := vm.Classes[name]; c != nil {
		return Value{Kind: VKClass, Class: c}, nil
	}
	if _, ok := builtins[name]; ok {
		return Value{Kind: VKBuiltin, Str: name}, nil
	}
	return None, vm.fail(span, PanicUndefinedName, "name %q is not defined", name)
}

// attr reads obj.name.
func (vm *VM) attr(obj Value, name string, span source.Span) (Value, error) {
	switch obj.Kind {
	case VKObject:
		if v, ok := obj.Obj.Fields[name]; ok {
			return v, nil
		}
		if fn, owner := obj.Obj.Class.method(name); fn != nil {
			return bindMethod(fn, owner, obj), nil
		}
		if v, ok := obj.Obj.Class.static(name); ok {
			return v, nil
		}
		return None, vm.fail(span, PanicUndefinedAttr, "%s object has no attribute %q", obj.Obj.Class.Name(), name)
	case VKClass:
		if v, ok := obj.Class.static(name); ok {
			return v, nil
		}
		if fn, owner := obj.Class.method(name); fn != nil {
			return bindMethod(fn, owner, obj), nil
		}
		return None, vm.fail(span, PanicUndefinedAttr, "type object %s has no attribute %q", obj.Class.Name(), name)
	case VKSuper:
		if obj.Owner.Base != nil {
			if fn, owner := obj.Owner.Base.method(name); fn != nil {
				return bindMethod(fn, owner, *obj.Recv), nil
			}
		}
		return None, vm.fail(span, PanicUndefinedAttr, "super object has no attribute %q", name)
	case VKList, VKDict, VKStr:
		if hasMethod(obj.Kind, name) {
			recv := obj
			return Value{Kind: VKBuiltin, Str: name, Recv: &recv}, nil
		}
	}
	return None, vm.fail(span, PanicUndefinedAttr, "%s object has no attribute %q", obj.Kind, name)
}

func (vm *VM) evalBinary(d ir.BinaryData, span source.Span) (Value, error) {
	left, err := vm.eval(d.Left)
	if err != nil {
		return None, err
	}
	switch d.Op {
	case "and":
		if !truthy(left) {
			return left, nil
		}
		return vm.eval(d.Right)
	case "or":
		if truthy(left) {
			return left, nil
		}
		return vm.eval(d.Right)
	}
	right, err := vm.eval(d.Right)
	if err != nil {
		return None, err
	}
	return vm.binary(d.Op, left, right, span)
}
