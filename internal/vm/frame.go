package vm

import (
	"pyjs/internal/ir"
	"pyjs/internal/source"
)

// Frame is one active call.
type Frame struct {
	Name string
	Span source.Span // call site
	Func *ir.Func
	env  *env
	// owner is the class declaring Func, used by super().
	owner *Class
	// recv is self for methods and cls for class methods.
	recv *Value
}

type env struct {
	enclosing *env
	values    map[string]Value
}

func newEnv(enclosing *env) *env {
	return &env{enclosing: enclosing, values: make(map[string]Value)}
}

func (e *env) define(name string, v Value) {
	e.values[name] = v
}

func (e *env) get(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.enclosing {
		if v, ok := cur.values[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// assign updates the nearest binding of name or defines it locally.
func (e *env) assign(name string, v Value) {
	for cur := e; cur != nil; cur = cur.enclosing {
		if _, ok := cur.values[name]; ok {
			cur.values[name] = v
			return
		}
	}
	e.values[name] = v
}

func (vm *VM) frame() *Frame {
	return &vm.Stack[len(vm.Stack)-1]
}
