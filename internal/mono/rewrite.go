package mono

import (
	"context"

	"pyjs/internal/ir"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// ClassRef is what a construction site resolves to.
type ClassRef struct {
	Name string
	// Entry is nil for plain classes.
	Entry *Specialized
}

// Rewriter points generic uses at specialized classes. Entries created while
// it runs are queued and their method bodies rewritten by Drain, so a method
// may construct its own class.
type Rewriter struct {
	cache   *Cache
	mod     *ir.Module
	in      *types.Interner
	pending []*Specialized
}

func NewRewriter(c *Cache) *Rewriter {
	r := &Rewriter{cache: c, mod: c.mod, in: c.in}
	c.created = func(s *Specialized) {
		r.pending = append(r.pending, s)
	}
	return r
}

// Rewrite resolves a use of template with args.
func (r *Rewriter) Rewrite(ctx context.Context, site source.Span, template string, args []types.TypeID) (ClassRef, error) {
	cls := r.mod.Class(template)
	if cls == nil {
		return ClassRef{}, &UnknownTemplateError{Name: template, Site: site}
	}
	if !cls.IsGeneric() {
		if len(args) > 0 {
			return ClassRef{}, &ArityMismatchError{Template: template, Want: 0, Got: len(args), Site: site}
		}
		return ClassRef{Name: cls.Name}, nil
	}
	entry, err := r.cache.GetOrCreate(ctx, cls, args, site)
	if err != nil {
		return ClassRef{}, err
	}
	return ClassRef{Name: entry.Name, Entry: entry}, nil
}

// Drain rewrites the bodies of queued entries until none are left.
func (r *Rewriter) Drain(ctx context.Context) error {
	for len(r.pending) > 0 {
		entry := r.pending[0]
		r.pending = r.pending[1:]
		if err := r.specialized(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rewriter) specialized(ctx context.Context, entry *Specialized) error {
	prev := r.cache.origin
	r.cache.origin = entry
	defer func() { r.cache.origin = prev }()

	cls := entry.Class
	for _, f := range cls.Statics {
		if err := r.expr(ctx, f.Value, nil); err != nil {
			return err
		}
	}
	for _, fn := range cls.Methods {
		if err := r.Func(ctx, fn); err != nil {
			return err
		}
	}
	return nil
}

// inferArgs binds template parameters from constructor arguments: every
// __init__ parameter declared as a bare type parameter takes the type of the
// matching argument.
func (r *Rewriter) inferArgs(template *ir.Class, args []*ir.Expr, site source.Span) ([]types.TypeID, error) {
	init := r.constructor(template)
	b := NewBinding(template.TypeParams, nil)
	if init != nil {
		for i, p := range init.Params {
			if i >= len(args) || !r.in.IsParam(p.Type) {
				continue
			}
			name := r.in.Name(p.Type)
			if !template.HasParam(name) || args[i].Type == types.NoTypeID {
				continue
			}
			b = b.With(name, args[i].Type)
		}
	}
	if missing := b.Missing(); len(missing) > 0 {
		return nil, &UnboundTypeParameterError{Template: template.Name, Param: missing[0], Site: site}
	}
	return b.Args(), nil
}

func (r *Rewriter) constructor(c *ir.Class) *ir.Func {
	if fn := c.Method("__init__"); fn != nil {
		return fn
	}
	for _, base := range r.mod.Ancestors(c) {
		if fn := base.Method("__init__"); fn != nil {
			return fn
		}
	}
	return nil
}
