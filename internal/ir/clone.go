package ir

import "pyjs/internal/types"

// TypeMapper rewrites a TypeID while cloning. Returning an error aborts the
// clone; the first error is reported by the Clone* entry points.
type TypeMapper func(types.TypeID) (types.TypeID, error)

// Cloner deep-copies IR, passing every TypeID it meets through Map.
type Cloner struct {
	Map TypeMapper
	err error
}

func (c *Cloner) ty(id types.TypeID) types.TypeID {
	if c.Map == nil || c.err != nil || id == types.NoTypeID {
		return id
	}
	out, err := c.Map(id)
	if err != nil {
		c.err = err
		return id
	}
	return out
}

func (c *Cloner) tys(ids []types.TypeID) []types.TypeID {
	if ids == nil {
		return nil
	}
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = c.ty(id)
	}
	return out
}

// CloneClass copies cls with every type mapped.
func (c *Cloner) CloneClass(cls *Class) (*Class, error) {
	out := c.class(cls)
	return out, c.err
}

// CloneFunc copies fn with every type mapped.
func (c *Cloner) CloneFunc(fn *Func) (*Func, error) {
	out := c.fn(fn)
	return out, c.err
}

func (c *Cloner) class(cls *Class) *Class {
	out := &Class{
		Name:       cls.Name,
		TypeParams: append([]string(nil), cls.TypeParams...),
		Base:       cls.Base,
		Span:       cls.Span,
		Origin:     cls.Origin,
		TypeArgs:   c.tys(cls.TypeArgs),
	}
	for _, f := range cls.Statics {
		out.Statics = append(out.Statics, c.field(f))
	}
	for _, f := range cls.Fields {
		out.Fields = append(out.Fields, c.field(f))
	}
	for _, m := range cls.Methods {
		out.Methods = append(out.Methods, c.fn(m))
	}
	return out
}

func (c *Cloner) field(f *Field) *Field {
	return &Field{Name: f.Name, Type: c.ty(f.Type), Value: c.Expr(f.Value), Span: f.Span}
}

func (c *Cloner) fn(fn *Func) *Func {
	out := &Func{
		Name:   fn.Name,
		Kind:   fn.Kind,
		Result: c.ty(fn.Result),
		Body:   c.Stmts(fn.Body),
		Span:   fn.Span,
	}
	for _, p := range fn.Params {
		out.Params = append(out.Params, Param{Name: p.Name, Type: c.ty(p.Type), Default: c.Expr(p.Default), Span: p.Span})
	}
	return out
}

func (c *Cloner) Stmts(stmts []*Stmt) []*Stmt {
	if stmts == nil {
		return nil
	}
	out := make([]*Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, c.Stmt(s))
	}
	return out
}

func (c *Cloner) Stmt(s *Stmt) *Stmt {
	if s == nil {
		return nil
	}
	out := &Stmt{Kind: s.Kind, Span: s.Span}
	switch d := s.Data.(type) {
	case LetData:
		out.Data = LetData{Name: d.Name, Type: c.ty(d.Type), Value: c.Expr(d.Value)}
	case ExprStmtData:
		out.Data = ExprStmtData{Expr: c.Expr(d.Expr)}
	case AssignData:
		out.Data = AssignData{Target: c.Expr(d.Target), Op: d.Op, Value: c.Expr(d.Value)}
	case ReturnData:
		out.Data = ReturnData{Value: c.Expr(d.Value)}
	case IfData:
		out.Data = IfData{Cond: c.Expr(d.Cond), Then: c.Stmts(d.Then), Else: c.Stmts(d.Else)}
	case WhileData:
		out.Data = WhileData{Cond: c.Expr(d.Cond), Body: c.Stmts(d.Body)}
	case ForData:
		out.Data = ForData{Var: d.Var, Var2: d.Var2, Iter: c.Expr(d.Iter), Body: c.Stmts(d.Body)}
	default:
		out.Data = s.Data
	}
	return out
}

func (c *Cloner) exprs(es []*Expr) []*Expr {
	if es == nil {
		return nil
	}
	out := make([]*Expr, len(es))
	for i, e := range es {
		out[i] = c.Expr(e)
	}
	return out
}

func (c *Cloner) Expr(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	out := &Expr{Kind: e.Kind, Type: c.ty(e.Type), Span: e.Span}
	switch d := e.Data.(type) {
	case FieldData:
		out.Data = FieldData{Object: c.Expr(d.Object), Name: d.Name}
	case IndexData:
		out.Data = IndexData{Object: c.Expr(d.Object), Index: c.Expr(d.Index)}
	case BinaryData:
		out.Data = BinaryData{Op: d.Op, Left: c.Expr(d.Left), Right: c.Expr(d.Right)}
	case UnaryData:
		out.Data = UnaryData{Op: d.Op, Operand: c.Expr(d.Operand)}
	case CallData:
		out.Data = CallData{Callee: c.Expr(d.Callee), Args: c.exprs(d.Args)}
	case NewData:
		out.Data = NewData{Class: d.Class, TypeArgs: c.tys(d.TypeArgs), Args: c.exprs(d.Args)}
	case ListData:
		out.Data = ListData{Elems: c.exprs(d.Elems)}
	case DictData:
		entries := make([]DictEntry, len(d.Entries))
		for i, en := range d.Entries {
			entries[i] = DictEntry{Key: c.Expr(en.Key), Value: c.Expr(en.Value)}
		}
		out.Data = DictData{Entries: entries}
	case FormatData:
		parts := make([]FormatPart, len(d.Parts))
		for i, p := range d.Parts {
			parts[i] = FormatPart{Text: p.Text, Expr: c.Expr(p.Expr)}
		}
		out.Data = FormatData{Parts: parts}
	default:
		out.Data = e.Data
	}
	return out
}
