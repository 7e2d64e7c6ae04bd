package ir

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

func loadString(t *testing.T, src string) (*Module, *diag.Bag, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.yaml", []byte(src))
	bag := diag.NewBag(32)
	m, err := LoadUnit(fs, id, types.NewInterner(), diag.BagReporter{Bag: bag})
	return m, bag, err
}

func TestLoadGenericsUnit(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(32)
	m, err := LoadUnitFile(fs, filepath.Join("..", "..", "testdata", "units", "generics.yaml"), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v\n%s", err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	if m.Name != "tests.cases.generics" {
		t.Fatalf("unexpected module name %q", m.Name)
	}
	counter := m.Class("Counter")
	if counter == nil || !counter.IsGeneric() || counter.TypeParams[0] != "T" {
		t.Fatalf("expected generic Counter[T], got %+v", counter)
	}
	if got := types.Label(m.Types, counter.Field("items").Type); got != "T" {
		t.Fatalf("items should be typed T, got %s", got)
	}
	if !m.Types.IsParam(counter.Method("__init__").Params[0].Type) {
		t.Fatalf("__init__ parameter should be the formal T")
	}

	main := m.Func("main")
	if len(main.Body) != 8 {
		t.Fatalf("expected 8 statements in main, got %d", len(main.Body))
	}
	explicit := main.Body[2].Data.(LetData).Value
	nd := explicit.Data.(NewData)
	if nd.Class != "Counter" || len(nd.TypeArgs) != 1 || types.Label(m.Types, nd.TypeArgs[0]) != "list[int]" {
		t.Fatalf("unexpected explicit construction %+v", nd)
	}
	if got := types.Label(m.Types, explicit.Type); got != "Counter[list[int]]" {
		t.Fatalf("explicit construction typed %s", got)
	}

	inferredDict := main.Body[4].Data.(LetData).Value.Data.(NewData)
	if got := types.Label(m.Types, inferredDict.Args[0].Type); got != "dict[str, str | int]" {
		t.Fatalf("dict literal typed %s", got)
	}
	if span := explicit.Span; span.Empty() {
		t.Fatalf("expected a source span on the construction")
	}
}

func TestLoadTypesSelfFields(t *testing.T) {
	m, _, err := loadString(t, `
classes:
  - name: Box
    type_params: [V]
    fields:
      - {name: value, type: "list[V]"}
    methods:
      - name: size
        body:
          - return: {call: len, args: [{attr: value, of: self}]}
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ret := m.Class("Box").Method("size").Body[0].Data.(ReturnData).Value
	arg := ret.Data.(CallData).Args[0]
	if got := types.Label(m.Types, arg.Type); got != "list[V]" {
		t.Fatalf("self.value typed %s", got)
	}
	if ret.Type != m.Types.Builtins().Int {
		t.Fatalf("len() should be int")
	}
}

func TestLoadCallOfClassBecomesConstruction(t *testing.T) {
	m, _, err := loadString(t, `
classes:
  - name: Base
funcs:
  - name: main
    body:
      - let: b
        value: {call: Base}
`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	v := m.Func("main").Body[0].Data.(LetData).Value
	if v.Kind != ExprNew || v.Data.(NewData).Class != "Base" {
		t.Fatalf("expected construction, got %v", v.Kind)
	}
}

func TestLoadReportsProblems(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unknown key", "classes:\n  - name: A\n    colour: red\n", diag.UnitUnknownNode},
		{"bad type", "classes:\n  - name: A\n    fields:\n      - {name: x, type: \"list[int\"}\n", diag.TypSyntax},
		{"duplicate class", "classes:\n  - name: A\n  - name: A\n", diag.UnitDuplicateDecl},
		{"unknown statement", "funcs:\n  - name: f\n    body:\n      - yield: 1\n", diag.UnitUnknownNode},
		{"unknown base", "classes:\n  - name: A\n    base: Missing\n", diag.TypUnknownName},
		{"malformed yaml", "classes: [\n", diag.UnitMalformedYAML},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, bag, err := loadString(t, tc.src)
			if !errors.Is(err, ErrInvalidUnit) {
				t.Fatalf("expected ErrInvalidUnit, got %v", err)
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tc.code {
					found = true
				}
			}
			if !found {
				var codes []string
				for _, d := range bag.Items() {
					codes = append(codes, d.Code.ID())
				}
				t.Fatalf("expected %s, got [%s]", tc.code.ID(), strings.Join(codes, ", "))
			}
		})
	}
}
