package ir

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"pyjs/internal/diag"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// ErrInvalidUnit is returned when a unit file loaded with diagnostics of
// error severity.
var ErrInvalidUnit = errors.New("invalid unit")

// LoadUnitFile reads path into fs and loads it with LoadUnit.
func LoadUnitFile(fs *source.FileSet, path string, rep diag.Reporter) (*Module, error) {
	id, err := fs.Load(path)
	if err != nil {
		diag.ReportError(rep, diag.IOLoadFileError, source.NoSpan, fmt.Sprintf("load %s: %v", path, err)).Emit()
		return nil, fmt.Errorf("load unit: %w", err)
	}
	return LoadUnit(fs, id, types.NewInterner(), rep)
}

// LoadUnit decodes a typed unit file (YAML) into a Module whose types live
// in in. Structural problems are reported through rep; the returned error
// wraps ErrInvalidUnit when any were found.
//
// Expressions are mappings keyed by their kind (name, attr, call, new, ...)
// or plain scalars: integers, floats, booleans and null are literals, any
// other scalar names a variable.
func LoadUnit(fs *source.FileSet, id source.FileID, in *types.Interner, rep diag.Reporter) (*Module, error) {
	file := fs.Get(id)
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(file.Content))
	if err := dec.Decode(&root); err != nil {
		diag.ReportError(rep, diag.UnitMalformedYAML, fs.SpanAt(id, source.LineCol{Line: 1, Col: 1}, 0), err.Error()).Emit()
		return nil, fmt.Errorf("%s: %w: %w", file.Path, ErrInvalidUnit, err)
	}

	l := &unitLoader{
		fs:      fs,
		file:    id,
		rep:     rep,
		in:      in,
		classes: make(map[string]*Class),
		mod:     &Module{Path: file.Path, File: id, Types: in},
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}
	l.module(doc)
	if l.errors == 0 {
		annotate(l.mod)
	}
	if l.errors > 0 {
		return l.mod, fmt.Errorf("%s: %d error(s): %w", file.Path, l.errors, ErrInvalidUnit)
	}
	return l.mod, nil
}

type unitLoader struct {
	fs      *source.FileSet
	file    source.FileID
	rep     diag.Reporter
	in      *types.Interner
	mod     *Module
	classes map[string]*Class
	params  []string // type parameters of the class being loaded
	errors  int
}

func (l *unitLoader) span(n *yaml.Node) source.Span {
	if n == nil || n.Line == 0 {
		return source.NoSpan
	}
	if (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) && len(n.Content) > 0 {
		return l.span(n.Content[0])
	}
	width := len(n.Value)
	if width == 0 {
		width = 1
	}
	return l.fs.SpanAt(l.file, source.LineCol{Line: uint32(n.Line), Col: uint32(n.Column)}, uint32(width)) // #nosec G115 -- yaml positions are small
}

func (l *unitLoader) errorf(n *yaml.Node, code diag.Code, format string, args ...any) {
	l.errors++
	diag.ReportError(l.rep, code, l.span(n), fmt.Sprintf(format, args...)).Emit()
}

// pairs returns the key/value nodes of a mapping.
func pairs(n *yaml.Node) [][2]*yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, [2]*yaml.Node{n.Content[i], n.Content[i+1]})
	}
	return out
}

func lookup(n *yaml.Node, key string) *yaml.Node {
	for _, kv := range pairs(n) {
		if kv[0].Value == key {
			return kv[1]
		}
	}
	return nil
}

func (l *unitLoader) expectKeys(n *yaml.Node, allowed ...string) {
	for _, kv := range pairs(n) {
		ok := false
		for _, a := range allowed {
			if kv[0].Value == a {
				ok = true
				break
			}
		}
		if !ok {
			l.errorf(kv[0], diag.UnitUnknownNode, "unknown key %q", kv[0].Value)
		}
	}
}

func (l *unitLoader) seq(n *yaml.Node) []*yaml.Node {
	if n == nil || n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		l.errorf(n, diag.UnitMalformedYAML, "expected a list")
		return nil
	}
	return n.Content
}

func (l *unitLoader) str(n *yaml.Node, what string) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.Value == "" {
		l.errorf(n, diag.UnitMissingField, "%s is required", what)
		return ""
	}
	return n.Value
}

func (l *unitLoader) typ(n *yaml.Node) types.TypeID {
	if n == nil || n.Tag == "!!null" {
		return types.NoTypeID
	}
	id, err := types.Parse(l.in, n.Value, l.params)
	if err != nil {
		l.errorf(n, diag.TypSyntax, "%v", err)
		return types.NoTypeID
	}
	return id
}

func (l *unitLoader) module(n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		l.errorf(n, diag.UnitMalformedYAML, "unit must be a mapping")
		return
	}
	l.expectKeys(n, "module", "globals", "classes", "funcs")
	if name := lookup(n, "module"); name != nil {
		l.mod.Name = name.Value
	}

	// Class names first so calls like Base() become constructions.
	classNodes := l.seq(lookup(n, "classes"))
	for _, cn := range classNodes {
		name := lookup(cn, "name")
		if name == nil {
			continue
		}
		if _, dup := l.classes[name.Value]; dup {
			l.errorf(name, diag.UnitDuplicateDecl, "class %s declared twice", name.Value)
			continue
		}
		l.classes[name.Value] = &Class{Name: name.Value, Span: l.span(name)}
	}

	for _, gn := range l.seq(lookup(n, "globals")) {
		l.expectKeys(gn, "name", "type", "value")
		l.mod.Globals = append(l.mod.Globals, &Global{
			Name:  l.str(lookup(gn, "name"), "global name"),
			Type:  l.typ(lookup(gn, "type")),
			Value: l.expr(lookup(gn, "value")),
			Span:  l.span(gn),
		})
	}
	for _, cn := range classNodes {
		if c := l.class(cn); c != nil {
			l.mod.Classes = append(l.mod.Classes, c)
		}
	}
	seen := make(map[string]struct{})
	for _, fnode := range l.seq(lookup(n, "funcs")) {
		fn := l.fn(fnode, FuncPlain)
		if _, dup := seen[fn.Name]; dup {
			l.errorf(fnode, diag.UnitDuplicateDecl, "function %s declared twice", fn.Name)
		}
		seen[fn.Name] = struct{}{}
		l.mod.Funcs = append(l.mod.Funcs, fn)
	}
}

func (l *unitLoader) class(n *yaml.Node) *Class {
	l.expectKeys(n, "name", "type_params", "base", "statics", "fields", "methods")
	name := l.str(lookup(n, "name"), "class name")
	c := l.classes[name]
	if c == nil || l.mod.Class(name) != nil {
		return nil
	}
	for _, p := range l.seq(lookup(n, "type_params")) {
		if c.HasParam(p.Value) {
			l.errorf(p, diag.UnitDuplicateDecl, "type parameter %s repeated on %s", p.Value, name)
			continue
		}
		c.TypeParams = append(c.TypeParams, p.Value)
	}
	if base := lookup(n, "base"); base != nil {
		c.Base = base.Value
		if _, ok := l.classes[c.Base]; !ok {
			l.errorf(base, diag.TypUnknownName, "unknown base class %s", c.Base)
		}
	}

	l.params = c.TypeParams
	defer func() { l.params = nil }()

	for _, fnode := range l.seq(lookup(n, "statics")) {
		l.expectKeys(fnode, "name", "type", "value")
		c.Statics = append(c.Statics, &Field{
			Name:  l.str(lookup(fnode, "name"), "static name"),
			Type:  l.typ(lookup(fnode, "type")),
			Value: l.expr(lookup(fnode, "value")),
			Span:  l.span(fnode),
		})
	}
	for _, fnode := range l.seq(lookup(n, "fields")) {
		l.expectKeys(fnode, "name", "type")
		c.Fields = append(c.Fields, &Field{
			Name: l.str(lookup(fnode, "name"), "field name"),
			Type: l.typ(lookup(fnode, "type")),
			Span: l.span(fnode),
		})
	}
	for _, mnode := range l.seq(lookup(n, "methods")) {
		kind := FuncMethod
		if k := lookup(mnode, "kind"); k != nil {
			switch k.Value {
			case "method":
			case "classmethod":
				kind = FuncClassMethod
			case "staticmethod":
				kind = FuncStatic
			default:
				l.errorf(k, diag.UnitUnknownNode, "unknown method kind %q", k.Value)
			}
		}
		c.Methods = append(c.Methods, l.fn(mnode, kind))
	}
	return c
}

func (l *unitLoader) fn(n *yaml.Node, kind FuncKind) *Func {
	l.expectKeys(n, "name", "kind", "params", "returns", "body")
	fn := &Func{
		Name:   l.str(lookup(n, "name"), "function name"),
		Kind:   kind,
		Result: l.typ(lookup(n, "returns")),
		Span:   l.span(n),
	}
	for _, pn := range l.seq(lookup(n, "params")) {
		if pn.Kind == yaml.ScalarNode {
			fn.Params = append(fn.Params, Param{Name: pn.Value, Span: l.span(pn)})
			continue
		}
		l.expectKeys(pn, "name", "type", "default")
		fn.Params = append(fn.Params, Param{
			Name:    l.str(lookup(pn, "name"), "parameter name"),
			Type:    l.typ(lookup(pn, "type")),
			Default: l.optExpr(lookup(pn, "default")),
			Span:    l.span(pn),
		})
	}
	fn.Body = l.stmts(lookup(n, "body"))
	return fn
}

func (l *unitLoader) stmts(n *yaml.Node) []*Stmt {
	nodes := l.seq(n)
	out := make([]*Stmt, 0, len(nodes))
	for _, sn := range nodes {
		if s := l.stmt(sn); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (l *unitLoader) stmt(n *yaml.Node) *Stmt {
	s := &Stmt{Span: l.span(n)}
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "break":
			s.Kind, s.Data = StmtBreak, BreakData{}
		case "continue":
			s.Kind, s.Data = StmtContinue, ContinueData{}
		case "return":
			s.Kind, s.Data = StmtReturn, ReturnData{}
		case "pass":
			return nil
		default:
			l.errorf(n, diag.UnitUnknownNode, "unknown statement %q", n.Value)
			return nil
		}
		return s
	}
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		l.errorf(n, diag.UnitMalformedYAML, "statement must be a mapping")
		return nil
	}

	switch head := n.Content[0].Value; head {
	case "let":
		l.expectKeys(n, "let", "type", "value")
		s.Kind = StmtLet
		s.Data = LetData{
			Name:  l.str(lookup(n, "let"), "let name"),
			Type:  l.typ(lookup(n, "type")),
			Value: l.expr(lookup(n, "value")),
		}
	case "expr":
		l.expectKeys(n, "expr")
		s.Kind = StmtExpr
		s.Data = ExprStmtData{Expr: l.expr(lookup(n, "expr"))}
	case "assign":
		l.expectKeys(n, "assign", "op", "value")
		op := ""
		if opn := lookup(n, "op"); opn != nil {
			op = opn.Value
		}
		s.Kind = StmtAssign
		s.Data = AssignData{Target: l.expr(lookup(n, "assign")), Op: op, Value: l.expr(lookup(n, "value"))}
	case "return":
		l.expectKeys(n, "return")
		s.Kind = StmtReturn
		s.Data = ReturnData{Value: l.optExpr(lookup(n, "return"))}
	case "if":
		l.expectKeys(n, "if", "then", "else")
		s.Kind = StmtIf
		s.Data = IfData{Cond: l.expr(lookup(n, "if")), Then: l.stmts(lookup(n, "then")), Else: l.stmts(lookup(n, "else"))}
	case "while":
		l.expectKeys(n, "while", "body")
		s.Kind = StmtWhile
		s.Data = WhileData{Cond: l.expr(lookup(n, "while")), Body: l.stmts(lookup(n, "body"))}
	case "for":
		l.expectKeys(n, "for", "in", "body")
		d := ForData{Iter: l.expr(lookup(n, "in")), Body: l.stmts(lookup(n, "body"))}
		target := lookup(n, "for")
		switch {
		case target != nil && target.Kind == yaml.SequenceNode && len(target.Content) == 2:
			d.Var, d.Var2 = target.Content[0].Value, target.Content[1].Value
		default:
			d.Var = l.str(target, "loop variable")
		}
		s.Kind = StmtFor
		s.Data = d
	default:
		l.errorf(n.Content[0], diag.UnitUnknownNode, "unknown statement %q", head)
		return nil
	}
	return s
}

func (l *unitLoader) optExpr(n *yaml.Node) *Expr {
	if n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return nil
	}
	return l.expr(n)
}

func (l *unitLoader) exprs(n *yaml.Node) []*Expr {
	nodes := l.seq(n)
	out := make([]*Expr, 0, len(nodes))
	for _, en := range nodes {
		out = append(out, l.expr(en))
	}
	return out
}

func (l *unitLoader) literal(n *yaml.Node, kind LiteralKind) *Expr {
	e := &Expr{Kind: ExprLiteral, Span: l.span(n)}
	d := LiteralData{Kind: kind}
	var err error
	switch kind {
	case LiteralInt:
		d.IntValue, err = strconv.ParseInt(n.Value, 0, 64)
	case LiteralFloat:
		d.FloatValue, err = strconv.ParseFloat(n.Value, 64)
	case LiteralBool:
		d.BoolValue, err = strconv.ParseBool(n.Value)
		if err != nil {
			var b bool
			if derr := n.Decode(&b); derr == nil {
				d.BoolValue, err = b, nil
			}
		}
	case LiteralString:
		d.StringValue = n.Value
	}
	if err != nil {
		l.errorf(n, diag.UnitMalformedYAML, "bad %s literal %q", kindName(kind), n.Value)
	}
	e.Data = d
	return e
}

func kindName(k LiteralKind) string {
	switch k {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralBool:
		return "bool"
	case LiteralString:
		return "str"
	}
	return "None"
}

func (l *unitLoader) expr(n *yaml.Node) *Expr {
	if n == nil {
		l.errorf(n, diag.UnitMissingField, "expression is required")
		return &Expr{Kind: ExprLiteral, Data: LiteralData{Kind: LiteralNone}}
	}
	if n.Kind == yaml.ScalarNode {
		switch n.Tag {
		case "!!int":
			return l.literal(n, LiteralInt)
		case "!!float":
			return l.literal(n, LiteralFloat)
		case "!!bool":
			return l.literal(n, LiteralBool)
		case "!!null":
			return &Expr{Kind: ExprLiteral, Span: l.span(n), Data: LiteralData{Kind: LiteralNone}}
		}
		return &Expr{Kind: ExprName, Span: l.span(n), Data: NameData{Name: n.Value}}
	}
	if n.Kind != yaml.MappingNode || len(n.Content) == 0 {
		l.errorf(n, diag.UnitMalformedYAML, "expression must be a scalar or a mapping")
		return &Expr{Kind: ExprLiteral, Data: LiteralData{Kind: LiteralNone}}
	}

	head, val := n.Content[0].Value, n.Content[1]
	e := &Expr{Span: l.span(n)}
	switch head {
	case "int":
		return l.literal(val, LiteralInt)
	case "float":
		return l.literal(val, LiteralFloat)
	case "bool":
		return l.literal(val, LiteralBool)
	case "str":
		return l.literal(val, LiteralString)
	case "none":
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralNone}
	case "name":
		e.Kind, e.Data = ExprName, NameData{Name: l.str(val, "name")}
	case "attr":
		l.expectKeys(n, "attr", "of")
		e.Kind, e.Data = ExprField, FieldData{Object: l.expr(lookup(n, "of")), Name: l.str(val, "attribute")}
	case "index":
		l.expectKeys(n, "index", "of")
		e.Kind, e.Data = ExprIndex, IndexData{Object: l.expr(lookup(n, "of")), Index: l.expr(val)}
	case "binary":
		l.expectKeys(n, "binary", "left", "right")
		e.Kind, e.Data = ExprBinary, BinaryData{Op: val.Value, Left: l.expr(lookup(n, "left")), Right: l.expr(lookup(n, "right"))}
	case "unary":
		l.expectKeys(n, "unary", "operand")
		e.Kind, e.Data = ExprUnary, UnaryData{Op: val.Value, Operand: l.expr(lookup(n, "operand"))}
	case "call":
		l.expectKeys(n, "call", "args")
		callee := l.expr(val)
		args := l.exprs(lookup(n, "args"))
		if name := NameOf(callee); name != "" {
			if _, isClass := l.classes[name]; isClass {
				e.Kind, e.Data = ExprNew, NewData{Class: name, Args: args}
				return e
			}
		}
		e.Kind, e.Data = ExprCall, CallData{Callee: callee, Args: args}
	case "new":
		l.expectKeys(n, "new", "type_args", "args")
		name := l.str(val, "class name")
		if _, ok := l.classes[name]; !ok {
			l.errorf(val, diag.TypUnknownName, "unknown class %s", name)
		}
		d := NewData{Class: name, Args: l.exprs(lookup(n, "args"))}
		for _, tn := range l.seq(lookup(n, "type_args")) {
			d.TypeArgs = append(d.TypeArgs, l.typ(tn))
		}
		e.Kind, e.Data = ExprNew, d
	case "list":
		l.expectKeys(n, "list")
		e.Kind, e.Data = ExprList, ListData{Elems: l.exprs(val)}
	case "dict":
		l.expectKeys(n, "dict")
		var entries []DictEntry
		for _, en := range l.seq(val) {
			l.expectKeys(en, "key", "value")
			entries = append(entries, DictEntry{Key: l.expr(lookup(en, "key")), Value: l.expr(lookup(en, "value"))})
		}
		e.Kind, e.Data = ExprDict, DictData{Entries: entries}
	case "format":
		l.expectKeys(n, "format")
		var parts []FormatPart
		for _, pn := range l.seq(val) {
			if pn.Kind == yaml.ScalarNode && pn.Tag == "!!str" {
				parts = append(parts, FormatPart{Text: pn.Value})
				continue
			}
			parts = append(parts, FormatPart{Expr: l.expr(pn)})
		}
		e.Kind, e.Data = ExprFormat, FormatData{Parts: parts}
	case "super":
		e.Kind, e.Data = ExprSuper, SuperData{}
	default:
		l.errorf(n.Content[0], diag.UnitUnknownNode, "unknown expression %q", head)
		e.Kind, e.Data = ExprLiteral, LiteralData{Kind: LiteralNone}
	}
	return e
}
