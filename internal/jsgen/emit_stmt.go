package jsgen

import (
	"fmt"
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/types"
)

func (fe *funcEmitter) line(format string, args ...any) {
	buf := &fe.emitter.buf
	buf.WriteString(strings.Repeat("  ", fe.indent))
	fmt.Fprintf(buf, format, args...)
	buf.WriteByte('\n')
}

func (fe *funcEmitter) params() (string, error) {
	if fe.fn == nil {
		return "", nil
	}
	parts := make([]string, 0, len(fe.fn.Params))
	for _, p := range fe.fn.Params {
		if p.Default == nil {
			parts = append(parts, p.Name)
			continue
		}
		def, err := fe.expr(p.Default)
		if err != nil {
			return "", fmt.Errorf("default of %s: %w", p.Name, err)
		}
		parts = append(parts, p.Name+" = "+def)
	}
	return strings.Join(parts, ", "), nil
}

func (fe *funcEmitter) block(stmts []*ir.Stmt) error {
	for _, s := range stmts {
		if err := fe.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fe *funcEmitter) nested(stmts []*ir.Stmt) error {
	fe.indent++
	defer func() { fe.indent-- }()
	return fe.block(stmts)
}

func (fe *funcEmitter) stmt(s *ir.Stmt) error {
	switch d := s.Data.(type) {
	case ir.LetData:
		val, err := fe.expr(d.Value)
		if err != nil {
			return err
		}
		fe.declared[d.Name] = true
		fe.line("var %s = %s;", d.Name, val)
	case ir.ExprStmtData:
		val, err := fe.expr(d.Expr)
		if err != nil {
			return err
		}
		fe.line("%s;", val)
	case ir.AssignData:
		return fe.assign(d)
	case ir.ReturnData:
		if d.Value == nil {
			fe.line("return;")
			return nil
		}
		val, err := fe.expr(d.Value)
		if err != nil {
			return err
		}
		fe.line("return %s;", val)
	case ir.IfData:
		return fe.ifStmt(d, false)
	case ir.WhileData:
		cond, err := fe.cond(d.Cond)
		if err != nil {
			return err
		}
		fe.line("while (%s) {", cond)
		if err := fe.nested(d.Body); err != nil {
			return err
		}
		fe.line("}")
	case ir.ForData:
		return fe.forStmt(d)
	case ir.BreakData:
		fe.line("break;")
	case ir.ContinueData:
		fe.line("continue;")
	default:
		return fmt.Errorf("unsupported statement %T", s.Data)
	}
	return nil
}

func (fe *funcEmitter) ifStmt(d ir.IfData, chained bool) error {
	cond, err := fe.cond(d.Cond)
	if err != nil {
		return err
	}
	if chained {
		fe.line("} else if (%s) {", cond)
	} else {
		fe.line("if (%s) {", cond)
	}
	if err := fe.nested(d.Then); err != nil {
		return err
	}
	if len(d.Else) == 1 {
		if elif, ok := d.Else[0].Data.(ir.IfData); ok {
			return fe.ifStmt(elif, true)
		}
	}
	if len(d.Else) > 0 {
		fe.line("} else {")
		if err := fe.nested(d.Else); err != nil {
			return err
		}
	}
	fe.line("}")
	return nil
}

// cond lowers a condition with Python truthiness for containers: an empty
// array or Map is truthy in JavaScript.
func (fe *funcEmitter) cond(e *ir.Expr) (string, error) {
	val, err := fe.expr(e)
	if err != nil {
		return "", err
	}
	switch fe.emitter.kindOf(e.Type) {
	case types.KindList, kindStr:
		return val + ".length", nil
	case types.KindDict:
		return val + ".size", nil
	}
	return val, nil
}

func (fe *funcEmitter) assign(d ir.AssignData) error {
	val, err := fe.expr(d.Value)
	if err != nil {
		return err
	}
	if idx, ok := d.Target.Data.(ir.IndexData); ok && fe.emitter.kindOf(idx.Object.Type) == types.KindDict {
		obj, err := fe.expr(idx.Object)
		if err != nil {
			return err
		}
		key, err := fe.expr(idx.Index)
		if err != nil {
			return err
		}
		if d.Op != "" {
			val = binaryOp(d.Op, obj+".get("+key+")", val)
		}
		fe.line("%s.set(%s, %s);", obj, key, val)
		return nil
	}

	target, err := fe.expr(d.Target)
	if err != nil {
		return err
	}
	switch {
	case d.Op == "//":
		fe.line("%s = Math.floor(%s / %s);", target, target, val)
	case d.Op != "":
		fe.line("%s %s= %s;", target, d.Op, val)
	default:
		name := ir.NameOf(d.Target)
		if d.Target.Kind == ir.ExprName && !fe.declared[name] && fe.fn != nil {
			fe.declared[name] = true
			fe.line("var %s = %s;", target, val)
			return nil
		}
		fe.line("%s = %s;", target, val)
	}
	return nil
}

func (fe *funcEmitter) forStmt(d ir.ForData) error {
	if call, ok := d.Iter.Data.(ir.CallData); ok && ir.NameOf(call.Callee) == "range" && d.Var2 == "" {
		return fe.rangeLoop(d, call.Args)
	}
	iter, err := fe.iterable(d.Iter)
	if err != nil {
		return err
	}
	fe.declared[d.Var] = true
	if d.Var2 != "" {
		fe.declared[d.Var2] = true
		fe.line("for (var [%s, %s] of %s) {", d.Var, d.Var2, iter)
	} else {
		fe.line("for (var %s of %s) {", d.Var, iter)
	}
	if err := fe.nested(d.Body); err != nil {
		return err
	}
	fe.line("}")
	return nil
}

// rangeLoop turns for-in-range into a counting loop. A step must be positive.
func (fe *funcEmitter) rangeLoop(d ir.ForData, args []*ir.Expr) error {
	vals, err := fe.exprs(args)
	if err != nil {
		return err
	}
	start, stop, step := "0", "", "1"
	switch len(vals) {
	case 1:
		stop = vals[0]
	case 2:
		start, stop = vals[0], vals[1]
	case 3:
		start, stop, step = vals[0], vals[1], vals[2]
	default:
		return fmt.Errorf("range expects 1 to 3 arguments, got %d", len(vals))
	}
	fe.declared[d.Var] = true
	incr := d.Var + "++"
	if step != "1" {
		incr = d.Var + " += " + step
	}
	fe.line("for (var %s = %s; %s < %s; %s) {", d.Var, start, d.Var, stop, incr)
	if err := fe.nested(d.Body); err != nil {
		return err
	}
	fe.line("}")
	return nil
}

// iterable lowers the subject of a for loop. Dict views iterate directly
// instead of being spread into arrays.
func (fe *funcEmitter) iterable(e *ir.Expr) (string, error) {
	if call, ok := e.Data.(ir.CallData); ok {
		if f, ok := call.Callee.Data.(ir.FieldData); ok && fe.emitter.kindOf(f.Object.Type) == types.KindDict {
			if view, ok := dictViews[f.Name]; ok && len(call.Args) == 0 {
				obj, err := fe.expr(f.Object)
				if err != nil {
					return "", err
				}
				return obj + "." + view + "()", nil
			}
		}
	}
	val, err := fe.expr(e)
	if err != nil {
		return "", err
	}
	if fe.emitter.kindOf(e.Type) == types.KindDict {
		return val + ".keys()", nil
	}
	return val, nil
}
