// Package ir holds the typed program representation shared by the loader,
// the monomorphizer and the backends.
//
// A Module is what the type checker hands over: every expression carries a
// TypeID from the module's interner, generic classes keep their formal
// parameters, and construction sites name the template plus the resolved type
// arguments. After monomorphization the same structures describe concrete
// classes only.
package ir

import (
	"slices"

	"pyjs/internal/source"
	"pyjs/internal/types"
)

// Module is one compilation unit.
type Module struct {
	Name    string
	Path    string
	File    source.FileID
	Types   *types.Interner
	Globals []*Global
	Classes []*Class
	Funcs   []*Func
}

// Global is a module-level binding.
type Global struct {
	Name  string
	Type  types.TypeID
	Value *Expr
	Span  source.Span
}

// Class is a class declaration. A class with TypeParams is a generic
// template; Origin and TypeArgs are set on specialized classes.
type Class struct {
	Name       string
	TypeParams []string
	Base       string
	Statics    []*Field
	Fields     []*Field
	Methods    []*Func
	Span       source.Span

	Origin   string
	TypeArgs []types.TypeID
}

// IsGeneric reports whether c declares type parameters.
func (c *Class) IsGeneric() bool {
	return c != nil && len(c.TypeParams) > 0
}

// HasParam reports whether name is one of c's formal parameters.
func (c *Class) HasParam(name string) bool {
	return slices.Contains(c.TypeParams, name)
}

func (c *Class) Method(name string) *Func {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (c *Class) Static(name string) *Field {
	for _, f := range c.Statics {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Field is an instance field or a static class attribute. Statics carry a
// Value evaluated once per unit.
type Field struct {
	Name  string
	Type  types.TypeID
	Value *Expr
	Span  source.Span
}

// FuncKind distinguishes module functions from the three method flavours.
type FuncKind uint8

const (
	FuncPlain FuncKind = iota
	FuncMethod
	FuncClassMethod
	FuncStatic
)

func (k FuncKind) String() string {
	switch k {
	case FuncMethod:
		return "method"
	case FuncClassMethod:
		return "classmethod"
	case FuncStatic:
		return "staticmethod"
	default:
		return "function"
	}
}

// Param is a declared parameter. The implicit self/cls receiver is not
// listed.
type Param struct {
	Name    string
	Type    types.TypeID
	Default *Expr
	Span    source.Span
}

type Func struct {
	Name   string
	Kind   FuncKind
	Params []Param
	Result types.TypeID
	Body   []*Stmt
	Span   source.Span
}

// IsConstructor reports whether f is a class's __init__.
func (f *Func) IsConstructor() bool {
	return f != nil && f.Kind == FuncMethod && f.Name == "__init__"
}

func (m *Module) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (m *Module) Global(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Ancestors returns c's base chain, nearest first. Unknown bases end the
// chain; cycles are cut at the first repeated class.
func (m *Module) Ancestors(c *Class) []*Class {
	var chain []*Class
	seen := map[string]struct{}{c.Name: {}}
	for base := c.Base; base != ""; {
		if _, dup := seen[base]; dup {
			break
		}
		seen[base] = struct{}{}
		bc := m.Class(base)
		if bc == nil {
			break
		}
		chain = append(chain, bc)
		base = bc.Base
	}
	return chain
}
