package types

import (
	"fmt"
	"slices"
)

// ParseError reports a malformed type expression. Pos is a byte offset into
// the parsed text.
type ParseError struct {
	Text string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("type %q at %d: %s", e.Text, e.Pos, e.Msg)
}

// Parse reads a type expression:
//
//	type  := union
//	union := atom ('|' atom)*
//	atom  := name ('[' type (',' type)* ']')?
//
// list[T] and dict[K, V] (also typing's List and Dict) build containers,
// Optional[T] is T | None, names listed in params become KindParam and any
// other applied name is a generic reference.
func Parse(in *Interner, text string, params []string) (TypeID, error) {
	p := &typeParser{in: in, src: text, params: params}
	p.skipSpace()
	id, err := p.union()
	if err != nil {
		return NoTypeID, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return NoTypeID, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return id, nil
}

type typeParser struct {
	in     *Interner
	src    string
	pos    int
	params []string
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &ParseError{Text: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) union() (TypeID, error) {
	first, err := p.atom()
	if err != nil {
		return NoTypeID, err
	}
	members := []TypeID{first}
	for p.accept('|') {
		next, err := p.atom()
		if err != nil {
			return NoTypeID, err
		}
		members = append(members, next)
	}
	return p.in.Union(members...), nil
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		isLetter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
		isDigit := c >= '0' && c <= '9'
		if !isLetter && (!isDigit || p.pos == start) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) atom() (TypeID, error) {
	if p.accept('(') {
		inner, err := p.union()
		if err != nil {
			return NoTypeID, err
		}
		if !p.accept(')') {
			return NoTypeID, p.errorf("expected ')'")
		}
		return inner, nil
	}
	name := p.ident()
	if name == "" {
		return NoTypeID, p.errorf("expected type name")
	}
	if !p.accept('[') {
		if slices.Contains(p.params, name) {
			return p.in.Param(name), nil
		}
		return p.in.Primitive(name), nil
	}
	var args []TypeID
	for {
		arg, err := p.union()
		if err != nil {
			return NoTypeID, err
		}
		args = append(args, arg)
		if p.accept(']') {
			break
		}
		if !p.accept(',') {
			return NoTypeID, p.errorf("expected ',' or ']'")
		}
	}
	switch name {
	case "list", "List":
		if len(args) != 1 {
			return NoTypeID, p.errorf("list takes 1 type argument, got %d", len(args))
		}
		return p.in.List(args[0]), nil
	case "dict", "Dict":
		if len(args) != 2 {
			return NoTypeID, p.errorf("dict takes 2 type arguments, got %d", len(args))
		}
		return p.in.Dict(args[0], args[1]), nil
	case "Optional":
		if len(args) != 1 {
			return NoTypeID, p.errorf("Optional takes 1 type argument, got %d", len(args))
		}
		return p.in.Union(args[0], p.in.Builtins().None), nil
	}
	if slices.Contains(p.params, name) {
		return NoTypeID, p.errorf("type parameter %s cannot take arguments", name)
	}
	return p.in.Generic(name, args...), nil
}
