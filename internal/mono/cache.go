package mono

import (
	"context"
	"strconv"
	"strings"

	"pyjs/internal/ir"
	"pyjs/internal/source"
	"pyjs/internal/trace"
	"pyjs/internal/types"
)

// UseSite records a location that resolved to an entry.
type UseSite struct {
	Span source.Span
	Note string
}

// Specialized is one concrete class produced from a template.
type Specialized struct {
	Name     string
	Key      InstKey
	Template *ir.Class
	TypeArgs []types.TypeID
	Class    *ir.Class
	UseSites []UseSite

	// Parent is the entry whose body or fields first asked for this one; nil
	// for instantiations discovered in plain code.
	Parent *Specialized
	Depth  int
}

// Type returns the generic reference this entry implements.
func (s *Specialized) Type(in *types.Interner) types.TypeID {
	return in.Generic(s.Template.Name, s.TypeArgs...)
}

func (s *Specialized) addUse(site source.Span, note string) {
	if site == source.NoSpan {
		return
	}
	us := UseSite{Span: site, Note: note}
	for _, existing := range s.UseSites {
		if existing == us {
			return
		}
	}
	s.UseSites = append(s.UseSites, us)
}

// Cache deduplicates instantiations for one unit. It is not safe for
// concurrent use.
type Cache struct {
	mod   *ir.Module
	in    *types.Interner
	names *NameRegistry
	opt   Options

	entries map[InstKey]*Specialized
	order   []*Specialized

	stack  []InstKey
	active map[InstKey]struct{}
	// origin is the entry whose method bodies are being rewritten.
	origin *Specialized

	// created runs once per new entry, after it is registered.
	created func(*Specialized)
}

// NewCache creates an empty cache for m and reserves the names of its plain
// classes.
func NewCache(m *ir.Module, opt Options) *Cache {
	opt = opt.withDefaults()
	c := &Cache{
		mod:     m,
		in:      m.Types,
		names:   NewNameRegistry(),
		opt:     opt,
		entries: make(map[InstKey]*Specialized),
		active:  make(map[InstKey]struct{}),
	}
	for _, cls := range m.Classes {
		if !cls.IsGeneric() {
			c.names.Reserve(cls.Name)
		}
	}
	return c
}

func (c *Cache) Len() int {
	return len(c.order)
}

// Entries returns every entry in discovery order.
func (c *Cache) Entries() []*Specialized {
	return append([]*Specialized(nil), c.order...)
}

// Lookup returns the entry registered for key, if any.
func (c *Cache) Lookup(key InstKey) (*Specialized, bool) {
	s, ok := c.entries[key]
	return s, ok
}

// Names exposes the registry of claimed class names.
func (c *Cache) Names() *NameRegistry {
	return c.names
}

// GetOrCreate returns the entry for template applied to args, instantiating
// it on first use. A failed attempt leaves nothing registered for its key.
func (c *Cache) GetOrCreate(ctx context.Context, template *ir.Class, args []types.TypeID, site source.Span) (*Specialized, error) {
	if err := c.checkArgs(template, args, site); err != nil {
		return nil, err
	}
	key := NewInstKey(c.in, template.Name, args)
	if hit, ok := c.Lookup(key); ok {
		hit.addUse(site, "")
		return hit, nil
	}

	label := argsLabel(key)
	if _, busy := c.active[key]; busy {
		return nil, &RecursiveInstantiationError{Template: template.Name, Args: label, Chain: c.chain(key), Site: site}
	}
	depth := len(c.stack)
	if c.origin != nil {
		depth += c.origin.Depth + 1
	}
	if depth >= c.opt.MaxDepth {
		return nil, &RecursiveInstantiationError{
			Template:      template.Name,
			Args:          label,
			Chain:         c.chain(key),
			DepthExceeded: true,
			MaxDepth:      c.opt.MaxDepth,
			Site:          site,
		}
	}

	c.stack = append(c.stack, key)
	c.active[key] = struct{}{}
	defer func() {
		c.stack = c.stack[:len(c.stack)-1]
		delete(c.active, key)
	}()

	cls, err := c.instantiate(ctx, template, NewBinding(template.TypeParams, args), label, site)
	if err != nil {
		return nil, err
	}
	name, err := Mangle(c.in, template.Name, args)
	if err != nil {
		return nil, err
	}
	if err := c.names.Claim(name, key); err != nil {
		if coll, ok := err.(*MangledNameCollisionError); ok {
			coll.Site = site
		}
		return nil, err
	}

	cls.Name = name
	cls.TypeParams = nil
	cls.Origin = template.Name
	cls.TypeArgs = append([]types.TypeID(nil), args...)
	entry := &Specialized{
		Name:     name,
		Key:      key,
		Template: template,
		TypeArgs: cls.TypeArgs,
		Class:    cls,
		Parent:   c.origin,
		Depth:    depth,
	}
	entry.addUse(site, "")
	c.entries[key] = entry
	c.order = append(c.order, entry)

	trace.PointCtx(ctx, trace.ScopeInstance, name, key.String(), map[string]string{
		"depth": strconv.Itoa(depth),
	})
	if c.created != nil {
		c.created(entry)
	}
	return entry, nil
}

// checkArgs validates the argument tuple before a key is computed.
func (c *Cache) checkArgs(template *ir.Class, args []types.TypeID, site source.Span) error {
	want := len(template.TypeParams)
	if len(args) > want {
		return &ArityMismatchError{Template: template.Name, Want: want, Got: len(args), Site: site}
	}
	label := c.label(args)
	for i, p := range template.TypeParams {
		if i >= len(args) || args[i] == types.NoTypeID {
			return &UnboundTypeParameterError{Template: template.Name, Param: p, Args: label, Site: site}
		}
		if c.in.ContainsParam(args[i]) {
			return &UnboundTypeParameterError{Template: template.Name, Param: firstParam(c.in, args[i]), Args: label, Site: site}
		}
	}
	return nil
}

func (c *Cache) label(args []types.TypeID) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == types.NoTypeID {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, types.Label(c.in, a))
	}
	return strings.Join(parts, ", ")
}

// chain lists the keys from the outermost pending instantiation to key.
func (c *Cache) chain(key InstKey) []InstKey {
	var outer []InstKey
	for p := c.origin; p != nil; p = p.Parent {
		outer = append([]InstKey{p.Key}, outer...)
	}
	out := append(outer, c.stack...)
	return append(out, key)
}

func firstParam(in *types.Interner, id types.TypeID) string {
	name := ""
	types.Walk(in, id, func(t types.TypeID) bool {
		if in.IsParam(t) {
			name = in.Name(t)
			return false
		}
		return true
	})
	return name
}
