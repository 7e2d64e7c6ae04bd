package mono

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"pyjs/internal/types"
)

// Mangle renders the specialized class name for template applied to args:
// the template, "__", then the rendered arguments joined by "_". Lists render
// as list__E, dicts as dict__K_V, unions join their members with "U", and
// generic arguments mangle recursively.
func Mangle(in *types.Interner, template string, args []types.TypeID) (string, error) {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("__")
	for i, a := range args {
		if i > 0 {
			b.WriteByte('_')
		}
		if err := renderArg(&b, in, a); err != nil {
			return "", err
		}
	}
	name := norm.NFC.String(b.String())
	if !IsIdentifier(name) {
		return "", fmt.Errorf("mono: mangled name %q is not a valid identifier", name)
	}
	return name, nil
}

func renderArg(b *strings.Builder, in *types.Interner, id types.TypeID) error {
	tt, ok := in.Lookup(id)
	if !ok {
		return fmt.Errorf("mono: cannot mangle invalid type %d", id)
	}
	switch tt.Kind {
	case types.KindPrimitive:
		b.WriteString(in.Name(id))
	case types.KindList:
		b.WriteString("list__")
		return renderArg(b, in, tt.Elem)
	case types.KindDict:
		b.WriteString("dict__")
		if err := renderArg(b, in, tt.Key); err != nil {
			return err
		}
		b.WriteByte('_')
		return renderArg(b, in, tt.Elem)
	case types.KindUnion:
		for i, m := range in.UnionMembers(id) {
			if i > 0 {
				b.WriteByte('U')
			}
			if err := renderArg(b, in, m); err != nil {
				return err
			}
		}
	case types.KindGeneric:
		info, _ := in.GenericInfo(id)
		inner, err := Mangle(in, info.Name, info.Args)
		if err != nil {
			return err
		}
		b.WriteString(inner)
	case types.KindParam:
		return fmt.Errorf("mono: cannot mangle type parameter %s", in.Name(id))
	default:
		return fmt.Errorf("mono: cannot mangle %s type", tt.Kind)
	}
	return nil
}

// IsIdentifier reports whether s is usable as a class name in both the
// py-style output and JavaScript.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// NameRegistry records which instantiation owns each mangled name. Plain
// class names are reserved up front so a specialization cannot shadow them.
type NameRegistry struct {
	owners   map[string]InstKey
	reserved map[string]struct{}
}

// NewNameRegistry returns an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		owners:   make(map[string]InstKey),
		reserved: make(map[string]struct{}),
	}
}

// Reserve marks name as taken by a non-generic declaration.
func (r *NameRegistry) Reserve(name string) {
	r.reserved[name] = struct{}{}
}

// Claim assigns name to key. Claiming a name again for the same key is a
// no-op; a different owner yields a MangledNameCollisionError without Site.
func (r *NameRegistry) Claim(name string, key InstKey) error {
	if _, ok := r.reserved[name]; ok {
		return &MangledNameCollisionError{Name: name, Template: key.Template, Args: argsLabel(key), Existing: "class " + name}
	}
	if owner, ok := r.owners[name]; ok {
		if owner == key {
			return nil
		}
		return &MangledNameCollisionError{Name: name, Template: key.Template, Args: argsLabel(key), Existing: owner.String()}
	}
	r.owners[name] = key
	return nil
}

// Owner returns the key that claimed name.
func (r *NameRegistry) Owner(name string) (InstKey, bool) {
	k, ok := r.owners[name]
	return k, ok
}

func argsLabel(k InstKey) string {
	return strings.ReplaceAll(string(k.Args), ";", ", ")
}
