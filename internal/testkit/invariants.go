// Package testkit holds structural checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"pyjs/internal/ir"
	"pyjs/internal/mono"
	"pyjs/internal/source"
)

// CheckSpanInvariants verifies that every located node of m points into sf:
// the span's file is sf and Start <= End <= len(sf.Content). Synthesized
// nodes carrying source.NoSpan are skipped.
func CheckSpanInvariants(m *ir.Module, sf *source.File) error {
	if m == nil || sf == nil {
		return fmt.Errorf("nil module or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	check := func(what string, sp source.Span) error {
		if sp == source.NoSpan {
			return nil
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s: span points to different file id: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End < sp.Start {
			return fmt.Errorf("%s: inverted span %v", what, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%s: span end beyond content: %d > %d", what, sp.End, lenContent)
		}
		return nil
	}

	var firstErr error
	record := func(what string, sp source.Span) {
		if firstErr == nil {
			firstErr = check(what, sp)
		}
	}
	for _, g := range m.Globals {
		record("global "+g.Name, g.Span)
	}
	for _, c := range m.Classes {
		record("class "+c.Name, c.Span)
		for _, f := range c.Statics {
			record(c.Name+"."+f.Name, f.Span)
		}
		for _, f := range c.Fields {
			record(c.Name+"."+f.Name, f.Span)
		}
		for _, fn := range c.Methods {
			record(c.Name+"."+fn.Name, fn.Span)
		}
	}
	for _, fn := range m.Funcs {
		record("func "+fn.Name, fn.Span)
		for _, p := range fn.Params {
			record(fn.Name+" param "+p.Name, p.Span)
		}
	}
	ir.Visitor{
		Stmt: func(s *ir.Stmt) bool {
			record("statement", s.Span)
			return firstErr == nil
		},
		Expr: func(e *ir.Expr) bool {
			record("expression", e.Span)
			return firstErr == nil
		},
	}.Module(m)
	return firstErr
}

// CheckMonoInvariants verifies the shape of a monomorphized module: no
// generic class survives, every specialized entry is emitted exactly once
// under its mangled name, and no type parameter leaks into the output.
func CheckMonoInvariants(mm *mono.MonoModule) error {
	if mm == nil || mm.Module == nil {
		return fmt.Errorf("nil mono module")
	}
	emitted := make(map[string]int, len(mm.Module.Classes))
	for _, c := range mm.Module.Classes {
		if len(c.TypeParams) > 0 {
			return fmt.Errorf("generic class %s survived monomorphization", c.Name)
		}
		emitted[c.Name]++
	}
	for _, s := range mm.Specialized {
		if s.Class == nil || s.Class.Name != s.Name {
			return fmt.Errorf("entry %s has mismatched class", s.Name)
		}
		if n := emitted[s.Name]; n != 1 {
			return fmt.Errorf("specialized class %s emitted %d times", s.Name, n)
		}
	}
	return mono.ValidateNoTypeParams(mm.Module)
}
