package mono

import (
	"context"
	"strconv"

	"pyjs/internal/ir"
	"pyjs/internal/trace"
	"pyjs/internal/types"
)

type Options struct {
	// MaxDepth bounds chains of nested instantiations; 64 when unset.
	MaxDepth int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 64
	}
	return o
}

// MonoModule is the result of monomorphizing one unit.
type MonoModule struct {
	Source *ir.Module
	// Module holds plain classes in source order with each template's slot
	// replaced by its specializations in discovery order.
	Module *ir.Module
	// Specialized lists every entry in global discovery order.
	Specialized []*Specialized
}

// ByName returns the specialized class called name.
func (mm *MonoModule) ByName(name string) *Specialized {
	for _, s := range mm.Specialized {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Lookup returns the entry for template applied to args.
func (mm *MonoModule) Lookup(template string, args ...types.TypeID) *Specialized {
	key := NewInstKey(mm.Module.Types, template, args)
	for _, s := range mm.Specialized {
		if s.Key == key {
			return s
		}
	}
	return nil
}

// MonomorphizeModule specializes every generic class m uses. m itself is
// left untouched; the output shares its interner.
func MonomorphizeModule(ctx context.Context, m *ir.Module, opt Options) (*MonoModule, error) {
	if m == nil {
		return &MonoModule{}, nil
	}
	ctx, span := trace.BeginCtx(ctx, trace.ScopeUnit, "mono:"+m.Name)
	cache := NewCache(m, opt)
	out, err := monomorphize(ctx, m, cache)
	span.WithExtra("specialized", strconv.Itoa(cache.Len()))
	if err != nil {
		span.End("failed")
		return nil, err
	}
	span.End("")
	return out, nil
}

func monomorphize(ctx context.Context, m *ir.Module, cache *Cache) (*MonoModule, error) {
	rw := NewRewriter(cache)
	out := &ir.Module{Name: m.Name, Path: m.Path, File: m.File, Types: m.Types}
	cl := &ir.Cloner{}

	for _, g := range m.Globals {
		cp := &ir.Global{Name: g.Name, Type: g.Type, Value: cl.Expr(g.Value), Span: g.Span}
		if err := rw.Global(ctx, cp); err != nil {
			return nil, err
		}
		if err := rw.Drain(ctx); err != nil {
			return nil, err
		}
		out.Globals = append(out.Globals, cp)
	}

	plain := make(map[*ir.Class]*ir.Class)
	for _, c := range m.Classes {
		if c.IsGeneric() {
			continue
		}
		cp, err := cl.CloneClass(c)
		if err != nil {
			return nil, err
		}
		if err := rw.Class(ctx, cp); err != nil {
			return nil, err
		}
		if err := rw.Drain(ctx); err != nil {
			return nil, err
		}
		plain[c] = cp
	}

	for _, fn := range m.Funcs {
		cp, err := cl.CloneFunc(fn)
		if err != nil {
			return nil, err
		}
		if err := rw.Func(ctx, cp); err != nil {
			return nil, err
		}
		if err := rw.Drain(ctx); err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, cp)
	}

	entries := cache.Entries()
	for _, c := range m.Classes {
		if cp, ok := plain[c]; ok {
			out.Classes = append(out.Classes, cp)
			continue
		}
		for _, e := range entries {
			if e.Template == c {
				out.Classes = append(out.Classes, e.Class)
			}
		}
	}

	if err := ValidateNoTypeParams(out); err != nil {
		return nil, err
	}
	return &MonoModule{Source: m, Module: out, Specialized: entries}, nil
}
