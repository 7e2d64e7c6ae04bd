package mono

import (
	"errors"
	"fmt"
	"strings"

	"pyjs/internal/source"
)

var (
	ErrUnboundTypeParameter   = errors.New("unbound type parameter")
	ErrMangledNameCollision   = errors.New("mangled name collision")
	ErrRecursiveInstantiation = errors.New("recursive instantiation")
	ErrUnknownTemplate        = errors.New("unknown template")
	ErrArityMismatch          = errors.New("type argument count mismatch")
)

// UnboundTypeParameterError reports a formal parameter with no binding:
// missing type arguments, a type argument that could not be inferred, or a
// template body naming a parameter it does not declare.
type UnboundTypeParameterError struct {
	Template string
	Param    string
	Args     string
	Site     source.Span
}

func (e *UnboundTypeParameterError) Error() string {
	return fmt.Sprintf("mono: type parameter %s of %s is unbound%s", e.Param, e.Template, argsSuffix(e.Args))
}

func (e *UnboundTypeParameterError) Is(target error) bool {
	return target == ErrUnboundTypeParameter
}

// MangledNameCollisionError reports two different instantiations, or an
// instantiation and a plain class, that render to the same name.
type MangledNameCollisionError struct {
	Name     string
	Template string
	Args     string
	Existing string
	Site     source.Span
}

func (e *MangledNameCollisionError) Error() string {
	return fmt.Sprintf("mono: %s[%s] mangles to %s, already used by %s", e.Template, e.Args, e.Name, e.Existing)
}

func (e *MangledNameCollisionError) Is(target error) bool {
	return target == ErrMangledNameCollision
}

// RecursiveInstantiationError reports an instantiation that needs itself, or
// a chain of nested instantiations deeper than Options.MaxDepth.
type RecursiveInstantiationError struct {
	Template      string
	Args          string
	Chain         []InstKey
	DepthExceeded bool
	MaxDepth      int
	Site          source.Span
}

func (e *RecursiveInstantiationError) Error() string {
	chain := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		chain[i] = k.String()
	}
	if e.DepthExceeded {
		return fmt.Sprintf("mono: instantiation depth exceeded (%d) at %s[%s]: %s", e.MaxDepth, e.Template, e.Args, strings.Join(chain, " -> "))
	}
	return fmt.Sprintf("mono: %s[%s] instantiates itself: %s", e.Template, e.Args, strings.Join(chain, " -> "))
}

func (e *RecursiveInstantiationError) Is(target error) bool {
	return target == ErrRecursiveInstantiation
}

type UnknownTemplateError struct {
	Name string
	Site source.Span
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("mono: unknown class %s", e.Name)
}

func (e *UnknownTemplateError) Is(target error) bool {
	return target == ErrUnknownTemplate
}

// ArityMismatchError reports more type arguments than the template declares,
// or type arguments applied to a non-generic class.
type ArityMismatchError struct {
	Template string
	Want     int
	Got      int
	Site     source.Span
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("mono: %s expects %d type arguments, got %d", e.Template, e.Want, e.Got)
}

func (e *ArityMismatchError) Is(target error) bool {
	return target == ErrArityMismatch
}

func argsSuffix(args string) string {
	if args == "" {
		return ""
	}
	return " in [" + args + "]"
}
