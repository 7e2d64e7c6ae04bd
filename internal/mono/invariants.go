package mono

import (
	"fmt"

	"pyjs/internal/ir"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// TypeParamLeakError reports a formal type parameter that survived into a
// monomorphized module.
type TypeParamLeakError struct {
	Where string
	Type  string
	Site  source.Span
}

func (e *TypeParamLeakError) Error() string {
	return fmt.Sprintf("mono: type parameter leaked into %s: %s", e.Where, e.Type)
}

// ValidateNoTypeParams checks that m has no generic classes left and that no
// annotation or expression type mentions a type parameter.
func ValidateNoTypeParams(m *ir.Module) error {
	v := leakCheck{in: m.Types}
	for _, g := range m.Globals {
		v.check(g.Type, "global "+g.Name, g.Span)
		v.expr(g.Value, "global "+g.Name)
	}
	for _, c := range m.Classes {
		if c.IsGeneric() {
			return &TypeParamLeakError{Where: "class " + c.Name, Type: fmt.Sprintf("%v", c.TypeParams), Site: c.Span}
		}
		for _, f := range c.Fields {
			v.check(f.Type, c.Name+"."+f.Name, f.Span)
		}
		for _, f := range c.Statics {
			v.check(f.Type, c.Name+"."+f.Name, f.Span)
			v.expr(f.Value, c.Name+"."+f.Name)
		}
		for _, fn := range c.Methods {
			v.fn(fn, c.Name+"."+fn.Name)
		}
	}
	for _, fn := range m.Funcs {
		v.fn(fn, fn.Name)
	}
	if v.err != nil {
		return v.err
	}
	return nil
}

type leakCheck struct {
	in  *types.Interner
	err *TypeParamLeakError
}

func (v *leakCheck) check(id types.TypeID, where string, site source.Span) {
	if v.err != nil || id == types.NoTypeID || !v.in.ContainsParam(id) {
		return
	}
	v.err = &TypeParamLeakError{Where: where, Type: types.Label(v.in, id), Site: site}
}

func (v *leakCheck) fn(fn *ir.Func, where string) {
	for _, p := range fn.Params {
		v.check(p.Type, where, p.Span)
		v.expr(p.Default, where)
	}
	v.check(fn.Result, where, fn.Span)
	ir.Visitor{
		Stmt: func(s *ir.Stmt) bool {
			if d, ok := s.Data.(ir.LetData); ok {
				v.check(d.Type, where+" local "+d.Name, s.Span)
			}
			return v.err == nil
		},
		Expr: func(e *ir.Expr) bool {
			v.exprNode(e, where)
			return v.err == nil
		},
	}.Stmts(fn.Body)
}

func (v *leakCheck) expr(e *ir.Expr, where string) {
	ir.Visitor{Expr: func(e *ir.Expr) bool {
		v.exprNode(e, where)
		return v.err == nil
	}}.VisitExpr(e)
}

func (v *leakCheck) exprNode(e *ir.Expr, where string) {
	v.check(e.Type, where, e.Span)
	if d, ok := e.Data.(ir.NewData); ok {
		for _, a := range d.TypeArgs {
			v.check(a, where, e.Span)
		}
	}
}
