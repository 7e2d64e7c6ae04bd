package mono

import (
	"context"

	"pyjs/internal/ir"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// locals tracks the declared type of names within one function so uses of
// a let whose type was only known after inference pick it up.
type locals map[string]types.TypeID

// Func resolves fn's annotations and rewrites its body.
func (r *Rewriter) Func(ctx context.Context, fn *ir.Func) error {
	for _, p := range fn.Params {
		if err := r.cache.resolveType(ctx, p.Type, spanOr(p.Span, fn.Span)); err != nil {
			return err
		}
		if err := r.expr(ctx, p.Default, nil); err != nil {
			return err
		}
	}
	if err := r.cache.resolveType(ctx, fn.Result, fn.Span); err != nil {
		return err
	}
	return r.stmts(ctx, fn.Body, locals{})
}

// Global rewrites a module-level binding.
func (r *Rewriter) Global(ctx context.Context, g *ir.Global) error {
	if err := r.expr(ctx, g.Value, nil); err != nil {
		return err
	}
	if g.Type == types.NoTypeID {
		g.Type = r.constructedType(g.Value)
	}
	return r.cache.resolveType(ctx, g.Type, g.Span)
}

// Class rewrites a plain class: field annotations, static initializers and
// methods.
func (r *Rewriter) Class(ctx context.Context, c *ir.Class) error {
	for _, f := range c.Fields {
		if err := r.cache.resolveType(ctx, f.Type, spanOr(f.Span, c.Span)); err != nil {
			return err
		}
	}
	for _, f := range c.Statics {
		if err := r.expr(ctx, f.Value, nil); err != nil {
			return err
		}
		if err := r.cache.resolveType(ctx, f.Type, spanOr(f.Span, c.Span)); err != nil {
			return err
		}
	}
	for _, fn := range c.Methods {
		if err := r.Func(ctx, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rewriter) stmts(ctx context.Context, stmts []*ir.Stmt, env locals) error {
	for _, s := range stmts {
		if err := r.stmt(ctx, s, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rewriter) stmt(ctx context.Context, s *ir.Stmt, env locals) error {
	switch d := s.Data.(type) {
	case ir.LetData:
		if err := r.expr(ctx, d.Value, env); err != nil {
			return err
		}
		if d.Type == types.NoTypeID {
			// Keep the generic spelling for display; the value names the
			// specialized class. The construction already recorded its site.
			d.Type = r.constructedType(d.Value)
			s.Data = d
		} else if err := r.cache.resolveType(ctx, d.Type, s.Span); err != nil {
			return err
		}
		if d.Type != types.NoTypeID {
			env[d.Name] = d.Type
		}
	case ir.ExprStmtData:
		return r.expr(ctx, d.Expr, env)
	case ir.AssignData:
		if err := r.expr(ctx, d.Target, env); err != nil {
			return err
		}
		return r.expr(ctx, d.Value, env)
	case ir.ReturnData:
		return r.expr(ctx, d.Value, env)
	case ir.IfData:
		if err := r.expr(ctx, d.Cond, env); err != nil {
			return err
		}
		if err := r.stmts(ctx, d.Then, env); err != nil {
			return err
		}
		return r.stmts(ctx, d.Else, env)
	case ir.WhileData:
		if err := r.expr(ctx, d.Cond, env); err != nil {
			return err
		}
		return r.stmts(ctx, d.Body, env)
	case ir.ForData:
		if err := r.expr(ctx, d.Iter, env); err != nil {
			return err
		}
		return r.stmts(ctx, d.Body, env)
	}
	return nil
}

func (r *Rewriter) exprs(ctx context.Context, es []*ir.Expr, env locals) error {
	for _, e := range es {
		if err := r.expr(ctx, e, env); err != nil {
			return err
		}
	}
	return nil
}

// expr rewrites children before e itself, so nested constructions are
// discovered first.
func (r *Rewriter) expr(ctx context.Context, e *ir.Expr, env locals) error {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case ir.NameData:
		if e.Type == types.NoTypeID && env != nil {
			e.Type = env[d.Name]
		}
	case ir.FieldData:
		return r.expr(ctx, d.Object, env)
	case ir.IndexData:
		if err := r.expr(ctx, d.Object, env); err != nil {
			return err
		}
		return r.expr(ctx, d.Index, env)
	case ir.BinaryData:
		if err := r.expr(ctx, d.Left, env); err != nil {
			return err
		}
		return r.expr(ctx, d.Right, env)
	case ir.UnaryData:
		return r.expr(ctx, d.Operand, env)
	case ir.CallData:
		if err := r.expr(ctx, d.Callee, env); err != nil {
			return err
		}
		return r.exprs(ctx, d.Args, env)
	case ir.ListData:
		return r.exprs(ctx, d.Elems, env)
	case ir.DictData:
		for _, en := range d.Entries {
			if err := r.expr(ctx, en.Key, env); err != nil {
				return err
			}
			if err := r.expr(ctx, en.Value, env); err != nil {
				return err
			}
		}
	case ir.FormatData:
		for _, p := range d.Parts {
			if err := r.expr(ctx, p.Expr, env); err != nil {
				return err
			}
		}
	case ir.NewData:
		if err := r.exprs(ctx, d.Args, env); err != nil {
			return err
		}
		return r.construction(ctx, e, d)
	}
	return nil
}

// construction rewrites a generic construction site to its specialized
// class. Plain classes only get their name checked.
func (r *Rewriter) construction(ctx context.Context, e *ir.Expr, d ir.NewData) error {
	template := r.mod.Class(d.Class)
	if template == nil {
		return &UnknownTemplateError{Name: d.Class, Site: e.Span}
	}
	if !template.IsGeneric() {
		_, err := r.Rewrite(ctx, e.Span, d.Class, d.TypeArgs)
		return err
	}
	args := d.TypeArgs
	if len(args) == 0 {
		inferred, err := r.inferArgs(template, d.Args, e.Span)
		if err != nil {
			return err
		}
		args = inferred
	}
	ref, err := r.Rewrite(ctx, e.Span, template.Name, args)
	if err != nil {
		return err
	}
	e.Type = ref.Entry.Type(r.in)
	e.Data = ir.NewData{Class: ref.Name, Args: d.Args}
	return nil
}

// constructedType is the generic type of a rewritten generic construction,
// or NoTypeID.
func (r *Rewriter) constructedType(e *ir.Expr) types.TypeID {
	if e == nil || e.Kind != ir.ExprNew {
		return types.NoTypeID
	}
	if _, ok := r.in.GenericInfo(e.Type); !ok {
		return types.NoTypeID
	}
	return e.Type
}

func spanOr(sp, fallback source.Span) source.Span {
	if sp != source.NoSpan {
		return sp
	}
	return fallback
}
