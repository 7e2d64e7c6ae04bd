package vm

import (
	"pyjs/internal/ir"
	"pyjs/internal/source"
)

// call invokes any callable value.
func (vm *VM) call(callee Value, args []Value, span source.Span) (Value, error) {
	switch callee.Kind {
	case VKFunc:
		return vm.callFunc(callee.Fn, callee.Owner, nil, args, span)
	case VKBound:
		return vm.callFunc(callee.Fn, callee.Owner, callee.Recv, args, span)
	case VKClass:
		return vm.instantiate(callee.Class, args, span)
	case VKBuiltin:
		return vm.callBuiltin(callee, args, span)
	}
	return None, vm.fail(span, PanicTypeMismatch, "%s object is not callable", callee.Kind)
}

// callFunc runs fn in a new frame. recv becomes self, or cls for class
// methods.
func (vm *VM) callFunc(fn *ir.Func, owner *Class, recv *Value, args []Value, span source.Span) (Value, error) {
	if len(vm.Stack) >= vm.maxCallDepth {
		return None, vm.fail(span, PanicRecursionLimit, "maximum call depth %d exceeded", vm.maxCallDepth)
	}
	if fn.Kind == ir.FuncMethod && recv == nil && len(args) > 0 {
		recv, args = &args[0], args[1:]
	}
	if len(args) > len(fn.Params) {
		return None, vm.fail(span, PanicArity, "%s() takes %d arguments but %d were given", fn.Name, len(fn.Params), len(args))
	}
	frame := Frame{Name: frameName(fn, owner), Span: span, Func: fn, env: newEnv(nil), owner: owner, recv: recv}
	vm.Stack = append(vm.Stack, frame)
	defer func() { vm.Stack = vm.Stack[:len(vm.Stack)-1] }()

	env := vm.frame().env
	switch fn.Kind {
	case ir.FuncMethod:
		if recv != nil {
			env.define("self", *recv)
		}
	case ir.FuncClassMethod:
		if recv != nil {
			env.define("cls", *recv)
		}
	}
	for i, p := range fn.Params {
		if i < len(args) {
			env.define(p.Name, args[i])
			continue
		}
		if p.Default == nil {
			return None, vm.fail(span, PanicArity, "%s() missing required argument %q", fn.Name, p.Name)
		}
		v, err := vm.eval(p.Default)
		if err != nil {
			return None, err
		}
		env.define(p.Name, v)
	}
	ctl, v, err := vm.execBlock(fn.Body)
	if err != nil {
		return None, err
	}
	if ctl != ctlReturn {
		return None, nil
	}
	return v, nil
}

func frameName(fn *ir.Func, owner *Class) string {
	if owner != nil {
		return owner.Name() + "." + fn.Name
	}
	return fn.Name
}

// instantiate creates an object and runs the nearest __init__.
func (vm *VM) instantiate(c *Class, args []Value, span source.Span) (Value, error) {
	obj := Value{Kind: VKObject, Obj: &Object{Class: c, Fields: make(map[string]Value)}}
	init, owner := c.method("__init__")
	if init == nil {
		if len(args) > 0 {
			return None, vm.fail(span, PanicArity, "%s() takes no arguments", c.Name())
		}
		return obj, nil
	}
	if _, err := vm.callFunc(init, owner, &obj, args, span); err != nil {
		return None, err
	}
	return obj, nil
}

// bindMethod turns fn found on owner into a callable for recv.
func bindMethod(fn *ir.Func, owner *Class, recv Value) Value {
	switch fn.Kind {
	case ir.FuncStatic:
		return Value{Kind: VKFunc, Fn: fn, Owner: owner}
	case ir.FuncMethod:
		if recv.Kind == VKClass {
			return Value{Kind: VKFunc, Fn: fn, Owner: owner}
		}
	case ir.FuncClassMethod:
		cls := recv
		if recv.Kind == VKObject {
			cls = Value{Kind: VKClass, Class: recv.Obj.Class}
		}
		return Value{Kind: VKBound, Fn: fn, Owner: owner, Recv: &cls}
	}
	return Value{Kind: VKBound, Fn: fn, Owner: owner, Recv: &recv}
}
