package jsgen

import (
	"fmt"

	"pyjs/internal/ir"
)

func (e *Emitter) emitClass(c *ir.Class) error {
	if c.Base != "" {
		fmt.Fprintf(&e.buf, "class %s extends %s {\n", c.Name, c.Base)
	} else {
		fmt.Fprintf(&e.buf, "class %s {\n", c.Name)
	}
	statics := e.newFunc(c, nil)
	for _, f := range c.Statics {
		val, err := statics.expr(f.Value)
		if err != nil {
			return fmt.Errorf("static %s: %w", f.Name, err)
		}
		fmt.Fprintf(&e.buf, "  static %s = %s;\n", f.Name, val)
	}
	for _, fn := range c.Methods {
		if err := e.emitMethod(c, fn); err != nil {
			return fmt.Errorf("method %s: %w", fn.Name, err)
		}
	}
	e.buf.WriteString("}\n\n\n")
	return nil
}

func (e *Emitter) emitMethod(c *ir.Class, fn *ir.Func) error {
	fe := e.newFunc(c, fn)
	params, err := fe.params()
	if err != nil {
		return err
	}
	switch {
	case fn.IsConstructor():
		fmt.Fprintf(&e.buf, "  constructor(%s) {\n", params)
	case fn.Kind == ir.FuncClassMethod || fn.Kind == ir.FuncStatic:
		fmt.Fprintf(&e.buf, "  static %s(%s) {\n", fn.Name, params)
	default:
		fmt.Fprintf(&e.buf, "  %s(%s) {\n", fn.Name, params)
	}
	fe.indent = 2
	if fn.IsConstructor() && c.Base != "" && !callsSuperInit(fn.Body) {
		// Derived constructors must call super before touching this.
		fe.line("super();")
	}
	if err := fe.block(fn.Body); err != nil {
		return err
	}
	e.buf.WriteString("  }\n\n")
	return nil
}

// callsSuperInit reports whether body starts the parent constructor.
func callsSuperInit(body []*ir.Stmt) bool {
	found := false
	ir.Visitor{Expr: func(ex *ir.Expr) bool {
		if isSuperInit(ex) {
			found = true
		}
		return !found
	}}.Stmts(body)
	return found
}

func isSuperInit(ex *ir.Expr) bool {
	call, ok := ex.Data.(ir.CallData)
	if !ok {
		return false
	}
	f, ok := call.Callee.Data.(ir.FieldData)
	return ok && f.Name == "__init__" && f.Object.Kind == ir.ExprSuper
}
