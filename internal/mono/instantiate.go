package mono

import (
	"context"

	"pyjs/internal/ir"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// instantiate clones template with every type substituted through b. Field
// types that name generic classes are resolved through the cache before the
// clone is returned, so nested entries are registered first.
func (c *Cache) instantiate(ctx context.Context, template *ir.Class, b Binding, label string, site source.Span) (*ir.Class, error) {
	if missing := b.Missing(); len(missing) > 0 {
		return nil, &UnboundTypeParameterError{Template: template.Name, Param: missing[0], Args: label, Site: site}
	}
	s := &subst{in: c.in, template: template.Name, args: label, binding: b, site: site}
	cl := &ir.Cloner{Map: s.apply}
	cls, err := cl.CloneClass(template)
	if err != nil {
		return nil, err
	}
	for _, f := range cls.Fields {
		if err := c.resolveType(ctx, f.Type, fieldSite(f, site)); err != nil {
			return nil, err
		}
	}
	for _, f := range cls.Statics {
		if err := c.resolveType(ctx, f.Type, fieldSite(f, site)); err != nil {
			return nil, err
		}
	}
	return cls, nil
}

func fieldSite(f *ir.Field, fallback source.Span) source.Span {
	if f.Span != source.NoSpan {
		return f.Span
	}
	return fallback
}

// resolveType instantiates every generic class named inside id, innermost
// arguments first. Generic references to unknown names are left alone; they
// are reported where a construction needs them.
func (c *Cache) resolveType(ctx context.Context, id types.TypeID, site source.Span) error {
	tt, ok := c.in.Lookup(id)
	if !ok {
		return nil
	}
	switch tt.Kind {
	case types.KindList:
		return c.resolveType(ctx, tt.Elem, site)
	case types.KindDict:
		if err := c.resolveType(ctx, tt.Key, site); err != nil {
			return err
		}
		return c.resolveType(ctx, tt.Elem, site)
	case types.KindUnion:
		for _, m := range c.in.UnionMembers(id) {
			if err := c.resolveType(ctx, m, site); err != nil {
				return err
			}
		}
	case types.KindGeneric:
		info, _ := c.in.GenericInfo(id)
		for _, a := range info.Args {
			if err := c.resolveType(ctx, a, site); err != nil {
				return err
			}
		}
		template := c.mod.Class(info.Name)
		if template == nil {
			return nil
		}
		if !template.IsGeneric() {
			return &ArityMismatchError{Template: template.Name, Want: 0, Got: len(info.Args), Site: site}
		}
		_, err := c.GetOrCreate(ctx, template, info.Args, site)
		return err
	}
	return nil
}
