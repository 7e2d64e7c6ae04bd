// Package jsgen lowers a monomorphized module to JavaScript: ES classes with
// static fields, arrays for lists and Map for dicts. Container operations are
// chosen from the concrete type of each expression, which is only possible
// once every generic class has been specialized.
package jsgen

import (
	"fmt"
	"slices"
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/types"
)

// Options tunes the generated script.
type Options struct {
	// RunMain appends a call to main when the module defines one.
	RunMain bool
}

type Emitter struct {
	mod  *ir.Module
	in   *types.Interner
	b    types.Builtins
	opts Options
	buf  strings.Builder
}

type funcEmitter struct {
	emitter  *Emitter
	cls      *ir.Class
	fn       *ir.Func
	indent   int
	declared map[string]bool
}

// EmitModule returns the JavaScript for m. Generic classes must have been
// specialized away.
func EmitModule(m *ir.Module, opts Options) (string, error) {
	if m == nil {
		return "", nil
	}
	e := &Emitter{mod: m, in: m.Types, b: m.Types.Builtins(), opts: opts}
	for _, c := range m.Classes {
		if c.IsGeneric() {
			return "", fmt.Errorf("jsgen: generic class %s must be monomorphized before emission", c.Name)
		}
	}
	fmt.Fprintf(&e.buf, "// %s\n", m.Name)
	if err := e.emitGlobals(); err != nil {
		return "", err
	}
	for _, c := range m.Classes {
		if err := e.emitClass(c); err != nil {
			return "", fmt.Errorf("jsgen: class %s: %w", c.Name, err)
		}
	}
	for _, fn := range m.Funcs {
		if err := e.emitFunc(fn); err != nil {
			return "", fmt.Errorf("jsgen: function %s: %w", fn.Name, err)
		}
	}
	out := strings.TrimRight(e.buf.String(), "\n") + "\n"
	if opts.RunMain && m.Func("main") != nil {
		out += "\nmain();\n"
	}
	return out, nil
}

func (e *Emitter) emitGlobals() error {
	fe := e.newFunc(nil, nil)
	for _, g := range e.mod.Globals {
		val, err := fe.expr(g.Value)
		if err != nil {
			return fmt.Errorf("jsgen: global %s: %w", g.Name, err)
		}
		fmt.Fprintf(&e.buf, "const %s = %s;\n", g.Name, val)
	}
	return nil
}

func (e *Emitter) emitFunc(fn *ir.Func) error {
	fe := e.newFunc(nil, fn)
	params, err := fe.params()
	if err != nil {
		return err
	}
	fmt.Fprintf(&e.buf, "function %s(%s) {\n", fn.Name, params)
	fe.indent = 1
	if err := fe.block(fn.Body); err != nil {
		return err
	}
	e.buf.WriteString("}\n\n")
	return nil
}

func (e *Emitter) newFunc(cls *ir.Class, fn *ir.Func) *funcEmitter {
	fe := &funcEmitter{emitter: e, cls: cls, fn: fn, declared: make(map[string]bool)}
	if fn != nil {
		for _, p := range fn.Params {
			fe.declared[p.Name] = true
		}
	}
	return fe
}

// classOf returns the class a receiver type names. Generic references are
// matched against specialized classes by origin and arguments.
func (e *Emitter) classOf(id types.TypeID) *ir.Class {
	t, ok := e.in.Lookup(id)
	if !ok {
		return nil
	}
	switch t.Kind {
	case types.KindPrimitive:
		return e.mod.Class(e.in.Name(id))
	case types.KindGeneric:
		info, _ := e.in.GenericInfo(id)
		for _, c := range e.mod.Classes {
			if c.Origin == info.Name && slices.Equal(c.TypeArgs, info.Args) {
				return c
			}
		}
	}
	return nil
}

func (e *Emitter) kindOf(id types.TypeID) types.Kind {
	if id == e.b.Str {
		return kindStr
	}
	t, ok := e.in.Lookup(id)
	if !ok {
		return types.KindInvalid
	}
	return t.Kind
}

// kindStr extends types.Kind locally; strings share list lowering for
// length and indexing.
const kindStr types.Kind = 255

// member resolves name on c through its ancestors. owner is the class that
// declares it.
type member struct {
	owner  *ir.Class
	field  *ir.Field
	static *ir.Field
	method *ir.Func
}

func (e *Emitter) member(c *ir.Class, name string) (member, bool) {
	if c == nil {
		return member{}, false
	}
	for _, cur := range append([]*ir.Class{c}, e.mod.Ancestors(c)...) {
		if f := cur.Field(name); f != nil {
			return member{owner: cur, field: f}, true
		}
		if f := cur.Static(name); f != nil {
			return member{owner: cur, static: f}, true
		}
		if fn := cur.Method(name); fn != nil {
			return member{owner: cur, method: fn}, true
		}
	}
	return member{}, false
}
