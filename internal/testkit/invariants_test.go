package testkit

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/ir"
	"pyjs/internal/mono"
	"pyjs/internal/source"
)

func loadUnit(t *testing.T, name string) (*ir.Module, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(16)
	m, err := ir.LoadUnitFile(fs, filepath.Join("..", "..", "testdata", "units", name), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load %s: %v\n%s", name, err, diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return m, fs.Get(m.File)
}

func TestUnitsSatisfyInvariants(t *testing.T) {
	for _, name := range []string{"generics.yaml", "classes.yaml"} {
		t.Run(name, func(t *testing.T) {
			m, sf := loadUnit(t, name)
			if err := CheckSpanInvariants(m, sf); err != nil {
				t.Fatalf("source spans: %v", err)
			}
			mm, err := mono.MonomorphizeModule(context.Background(), m, mono.Options{})
			if err != nil {
				t.Fatalf("mono: %v", err)
			}
			if err := CheckMonoInvariants(mm); err != nil {
				t.Fatalf("mono invariants: %v", err)
			}
			if err := CheckSpanInvariants(mm.Module, sf); err != nil {
				t.Fatalf("specialized spans: %v", err)
			}
		})
	}
}

func TestCheckSpanInvariantsRejectsForeignSpan(t *testing.T) {
	m, sf := loadUnit(t, "generics.yaml")
	m.Funcs[0].Span = source.Span{File: sf.ID + 1, Start: 0, End: 1}
	err := CheckSpanInvariants(m, sf)
	if err == nil || !strings.Contains(err.Error(), "different file") {
		t.Fatalf("expected file mismatch, got %v", err)
	}
}

func TestCheckMonoInvariantsRejectsGenericLeftovers(t *testing.T) {
	m, _ := loadUnit(t, "generics.yaml")
	mm := &mono.MonoModule{Source: m, Module: m}
	if err := CheckMonoInvariants(mm); err == nil {
		t.Fatalf("expected generic template to be rejected")
	}
}
