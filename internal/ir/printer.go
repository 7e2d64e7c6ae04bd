package ir

import (
	"strconv"
	"strings"

	"pyjs/internal/types"
)

// FormatModule renders m in Python surface syntax. Generic annotations keep
// their source spelling while construction sites show the class actually
// built, so a monomorphized module reads like
//
//	inferred_list: Counter[list[int]] = Counter__list__int([1, 2])
func FormatModule(m *Module) string {
	p := &printer{in: m.Types}
	p.module(m)
	return p.b.String()
}

// FormatClass renders a single class declaration.
func FormatClass(in *types.Interner, c *Class) string {
	p := &printer{in: in}
	p.class(c)
	return p.b.String()
}

// FormatExpr renders e as a Python expression.
func FormatExpr(in *types.Interner, e *Expr) string {
	p := &printer{in: in}
	p.expr(e, 0)
	return p.b.String()
}

type printer struct {
	in     *types.Interner
	b      strings.Builder
	indent int
}

func (p *printer) line(parts ...string) {
	for range p.indent {
		p.b.WriteString("    ")
	}
	for _, s := range parts {
		p.b.WriteString(s)
	}
	p.b.WriteByte('\n')
}

func (p *printer) label(id types.TypeID) string {
	return types.Label(p.in, id)
}

func (p *printer) module(m *Module) {
	for _, g := range m.Globals {
		p.line(g.Name, " = ", p.exprString(g.Value))
	}
	if len(m.Globals) > 0 {
		p.b.WriteByte('\n')
	}
	for _, c := range m.Classes {
		p.class(c)
		p.b.WriteByte('\n')
	}
	for i, fn := range m.Funcs {
		if i > 0 {
			p.b.WriteByte('\n')
		}
		p.fn(fn)
	}
}

func (p *printer) class(c *Class) {
	header := "class " + c.Name
	if len(c.TypeParams) > 0 {
		header += "[" + strings.Join(c.TypeParams, ", ") + "]"
	}
	if c.Base != "" {
		header += "(" + c.Base + ")"
	}
	p.line(header, ":")
	p.indent++
	defer func() { p.indent-- }()
	if len(c.Statics) == 0 && len(c.Methods) == 0 {
		p.line("pass")
		return
	}
	for _, f := range c.Statics {
		p.line(f.Name, " = ", p.exprString(f.Value))
	}
	for _, m := range c.Methods {
		p.b.WriteByte('\n')
		p.fn(m)
	}
}

func (p *printer) fn(fn *Func) {
	switch fn.Kind {
	case FuncClassMethod:
		p.line("@classmethod")
	case FuncStatic:
		p.line("@staticmethod")
	}
	params := make([]string, len(fn.Params))
	for i, prm := range fn.Params {
		s := prm.Name
		if prm.Type != types.NoTypeID {
			s += ": " + p.label(prm.Type)
			if prm.Default != nil {
				s += " = " + p.exprString(prm.Default)
			}
		} else if prm.Default != nil {
			s += "=" + p.exprString(prm.Default)
		}
		params[i] = s
	}
	sig := "def " + fn.Name + "(" + strings.Join(params, ", ") + ")"
	if fn.Result != types.NoTypeID {
		sig += " -> " + p.label(fn.Result)
	}
	p.line(sig, ":")
	p.block(fn.Body)
}

func (p *printer) block(stmts []*Stmt) {
	p.indent++
	if len(stmts) == 0 {
		p.line("pass")
	}
	for _, s := range stmts {
		p.stmt(s)
	}
	p.indent--
}

func (p *printer) stmt(s *Stmt) {
	switch d := s.Data.(type) {
	case LetData:
		if d.Type != types.NoTypeID {
			p.line(d.Name, ": ", p.label(d.Type), " = ", p.exprString(d.Value))
		} else {
			p.line(d.Name, " = ", p.exprString(d.Value))
		}
	case ExprStmtData:
		p.line(p.exprString(d.Expr))
	case AssignData:
		p.line(p.exprString(d.Target), " ", d.Op, "= ", p.exprString(d.Value))
	case ReturnData:
		if d.Value == nil {
			p.line("return")
		} else {
			p.line("return ", p.exprString(d.Value))
		}
	case IfData:
		p.line("if ", p.exprString(d.Cond), ":")
		p.block(d.Then)
		if len(d.Else) > 0 {
			p.line("else:")
			p.block(d.Else)
		}
	case WhileData:
		p.line("while ", p.exprString(d.Cond), ":")
		p.block(d.Body)
	case ForData:
		target := d.Var
		if d.Var2 != "" {
			target += ", " + d.Var2
		}
		p.line("for ", target, " in ", p.exprString(d.Iter), ":")
		p.block(d.Body)
	case BreakData:
		p.line("break")
	case ContinueData:
		p.line("continue")
	}
}

func (p *printer) exprString(e *Expr) string {
	sub := &printer{in: p.in}
	sub.expr(e, 0)
	return sub.b.String()
}

// Binding strength of binary and unary operators; postfix forms bind
// tighter than all of them.
func precedence(op string) int {
	switch op {
	case "or":
		return 1
	case "and":
		return 2
	case "not":
		return 3
	case "==", "!=", "<", "<=", ">", ">=", "in":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "//", "%":
		return 6
	case "neg":
		return 7
	}
	return 8
}

func (p *printer) expr(e *Expr, outer int) {
	if e == nil {
		p.b.WriteString("None")
		return
	}
	switch d := e.Data.(type) {
	case LiteralData:
		p.b.WriteString(formatLiteral(d))
	case NameData:
		p.b.WriteString(d.Name)
	case SuperData:
		p.b.WriteString("super()")
	case FieldData:
		p.expr(d.Object, 9)
		p.b.WriteString("." + d.Name)
	case IndexData:
		p.expr(d.Object, 9)
		p.b.WriteByte('[')
		p.expr(d.Index, 0)
		p.b.WriteByte(']')
	case BinaryData:
		prec := precedence(d.Op)
		if prec < outer {
			p.b.WriteByte('(')
		}
		p.expr(d.Left, prec)
		p.b.WriteString(" " + d.Op + " ")
		p.expr(d.Right, prec+1)
		if prec < outer {
			p.b.WriteByte(')')
		}
	case UnaryData:
		prec := precedence("neg")
		op := d.Op
		if op == "not" {
			prec = precedence("not")
			op = "not "
		}
		if prec < outer {
			p.b.WriteByte('(')
		}
		p.b.WriteString(op)
		p.expr(d.Operand, prec)
		if prec < outer {
			p.b.WriteByte(')')
		}
	case CallData:
		p.expr(d.Callee, 9)
		p.args(d.Args)
	case NewData:
		p.b.WriteString(d.Class)
		if len(d.TypeArgs) > 0 {
			labels := make([]string, len(d.TypeArgs))
			for i, a := range d.TypeArgs {
				labels[i] = p.label(a)
			}
			p.b.WriteString("[" + strings.Join(labels, ", ") + "]")
		}
		p.args(d.Args)
	case ListData:
		p.b.WriteByte('[')
		for i, el := range d.Elems {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(el, 0)
		}
		p.b.WriteByte(']')
	case DictData:
		p.b.WriteByte('{')
		for i, en := range d.Entries {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(en.Key, 0)
			p.b.WriteString(": ")
			p.expr(en.Value, 0)
		}
		p.b.WriteByte('}')
	case FormatData:
		var body strings.Builder
		for _, part := range d.Parts {
			if part.Expr != nil {
				body.WriteString("{" + p.exprString(part.Expr) + "}")
				continue
			}
			body.WriteString(part.Text)
		}
		p.b.WriteString("f" + Quote(body.String()))
	}
}

func (p *printer) args(args []*Expr) {
	p.b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		p.expr(a, 0)
	}
	p.b.WriteByte(')')
}

func formatLiteral(d LiteralData) string {
	switch d.Kind {
	case LiteralInt:
		return strconv.FormatInt(d.IntValue, 10)
	case LiteralFloat:
		return FormatFloat(d.FloatValue)
	case LiteralBool:
		if d.BoolValue {
			return "True"
		}
		return "False"
	case LiteralString:
		return Quote(d.StringValue)
	}
	return "None"
}

// FormatFloat renders v the way Python's repr does for finite values.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// Quote mimics repr(str): single quotes unless the text contains a single
// quote and no double quote.
func Quote(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
