package jsgen

import (
	"fmt"
	"strconv"
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/types"
)

func (fe *funcEmitter) exprs(es []*ir.Expr) ([]string, error) {
	out := make([]string, 0, len(es))
	for _, e := range es {
		v, err := fe.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (fe *funcEmitter) expr(e *ir.Expr) (string, error) {
	if e == nil {
		return "null", nil
	}
	switch d := e.Data.(type) {
	case ir.LiteralData:
		return literal(d), nil
	case ir.NameData:
		return fe.name(d.Name), nil
	case ir.FieldData:
		return fe.field(d)
	case ir.IndexData:
		return fe.index(d)
	case ir.BinaryData:
		return fe.binary(d)
	case ir.UnaryData:
		if d.Op == "not" {
			operand, err := fe.cond(d.Operand)
			return "!" + operand, err
		}
		operand, err := fe.expr(d.Operand)
		if err != nil {
			return "", err
		}
		return d.Op + operand, nil
	case ir.CallData:
		return fe.call(d)
	case ir.NewData:
		args, err := fe.exprs(d.Args)
		if err != nil {
			return "", err
		}
		if c := fe.emitter.mod.Class(d.Class); c == nil || c.IsGeneric() {
			return "", fmt.Errorf("construction of %s does not name a concrete class", d.Class)
		}
		return "new " + d.Class + "(" + strings.Join(args, ", ") + ")", nil
	case ir.ListData:
		elems, err := fe.exprs(d.Elems)
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(elems, ", ") + "]", nil
	case ir.DictData:
		pairs := make([]string, 0, len(d.Entries))
		for _, en := range d.Entries {
			k, err := fe.expr(en.Key)
			if err != nil {
				return "", err
			}
			v, err := fe.expr(en.Value)
			if err != nil {
				return "", err
			}
			pairs = append(pairs, "["+k+", "+v+"]")
		}
		return "new Map([" + strings.Join(pairs, ", ") + "])", nil
	case ir.FormatData:
		return fe.format(d)
	case ir.SuperData:
		return "super", nil
	}
	return "", fmt.Errorf("unsupported expression %s", e.Kind)
}

func literal(d ir.LiteralData) string {
	switch d.Kind {
	case ir.LiteralInt:
		return strconv.FormatInt(d.IntValue, 10)
	case ir.LiteralFloat:
		return ir.FormatFloat(d.FloatValue)
	case ir.LiteralBool:
		return strconv.FormatBool(d.BoolValue)
	case ir.LiteralString:
		return quote(d.StringValue)
	}
	return "null"
}

func (fe *funcEmitter) name(n string) string {
	switch {
	case n == "self" && fe.fn != nil && fe.fn.Kind == ir.FuncMethod:
		return "this"
	case n == "cls" && fe.cls != nil:
		return fe.cls.Name
	case n == "None":
		return "null"
	case n == "True":
		return "true"
	case n == "False":
		return "false"
	}
	return n
}

// receiverClass returns the class a field or method access resolves
// against: the current class for self and cls, the named class, or the
// class of the object's type.
func (fe *funcEmitter) receiverClass(obj *ir.Expr) (c *ir.Class, isClass bool) {
	e := fe.emitter
	switch name := ir.NameOf(obj); {
	case name == "self" && fe.cls != nil:
		return fe.cls, false
	case name == "cls" && fe.cls != nil:
		return fe.cls, true
	case name != "" && e.mod.Class(name) != nil && !fe.declared[name]:
		return e.mod.Class(name), true
	}
	return e.classOf(obj.Type), false
}

func (fe *funcEmitter) field(d ir.FieldData) (string, error) {
	if d.Object.Kind == ir.ExprSuper {
		return "super." + d.Name, nil
	}
	if c, isClass := fe.receiverClass(d.Object); c != nil {
		if m, ok := fe.emitter.member(c, d.Name); ok {
			switch {
			case m.static != nil:
				return m.owner.Name + "." + d.Name, nil
			case m.method != nil && m.method.Kind != ir.FuncMethod:
				return c.Name + "." + d.Name, nil
			case isClass && m.method != nil:
				return c.Name + ".prototype." + d.Name, nil
			}
		}
	}
	obj, err := fe.expr(d.Object)
	if err != nil {
		return "", err
	}
	return obj + "." + d.Name, nil
}

func (fe *funcEmitter) index(d ir.IndexData) (string, error) {
	obj, err := fe.expr(d.Object)
	if err != nil {
		return "", err
	}
	idx, err := fe.expr(d.Index)
	if err != nil {
		return "", err
	}
	switch fe.emitter.kindOf(d.Object.Type) {
	case types.KindDict:
		return obj + ".get(" + idx + ")", nil
	case types.KindList, kindStr:
		if lit, ok := d.Index.Data.(ir.LiteralData); ok && lit.Kind == ir.LiteralInt && lit.IntValue < 0 {
			return obj + ".at(" + idx + ")", nil
		}
		if u, ok := d.Index.Data.(ir.UnaryData); ok && u.Op == "-" {
			return obj + ".at(" + idx + ")", nil
		}
	}
	return obj + "[" + idx + "]", nil
}

func (fe *funcEmitter) binary(d ir.BinaryData) (string, error) {
	l, err := fe.expr(d.Left)
	if err != nil {
		return "", err
	}
	r, err := fe.expr(d.Right)
	if err != nil {
		return "", err
	}
	e := fe.emitter
	switch d.Op {
	case "in", "not in":
		var test string
		if e.kindOf(d.Right.Type) == types.KindDict {
			test = r + ".has(" + l + ")"
		} else {
			test = r + ".includes(" + l + ")"
		}
		if d.Op == "not in" {
			return "!" + test, nil
		}
		return test, nil
	case "+":
		if e.kindOf(d.Left.Type) == types.KindList {
			return l + ".concat(" + r + ")", nil
		}
	case "*":
		if e.kindOf(d.Left.Type) == kindStr && d.Right.Type == e.b.Int {
			return l + ".repeat(" + r + ")", nil
		}
	}
	return binaryOp(d.Op, l, r), nil
}

var jsOps = map[string]string{
	"and": "&&",
	"or":  "||",
	"==":  "===",
	"!=":  "!==",
	"is":  "===",
}

func binaryOp(op, l, r string) string {
	if op == "//" {
		return "Math.floor(" + l + " / " + r + ")"
	}
	if js, ok := jsOps[op]; ok {
		op = js
	}
	return "(" + l + " " + op + " " + r + ")"
}

// format lowers an f-string to concatenation.
func (fe *funcEmitter) format(d ir.FormatData) (string, error) {
	parts := make([]string, 0, len(d.Parts)+1)
	for i, p := range d.Parts {
		if p.Expr == nil {
			parts = append(parts, quote(p.Text))
			continue
		}
		if i == 0 {
			parts = append(parts, "''")
		}
		v, err := fe.expr(p.Expr)
		if err != nil {
			return "", err
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "''", nil
	}
	return strings.Join(parts, "+"), nil
}

// quote renders s as a single-quoted JavaScript string.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
