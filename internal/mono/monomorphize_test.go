package mono

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/ir"
	"pyjs/internal/source"
	"pyjs/internal/trace"
	"pyjs/internal/types"
)

const genericsWant = `class Counter__list__int:

    def __init__(items: list[int]):
        self.items = items

    def add(num: int):
        return len(self.items) + num

    def multiply(num: int):
        return len(self.items) * num

class Counter__dict__str_strUint:

    def __init__(items: dict[str, str | int]):
        self.items = items

    def add(num: int):
        return len(self.items) + num

    def multiply(num: int):
        return len(self.items) * num

def main():
    inferred_list: Counter[list[int]] = Counter__list__int([1, 2])
    print(inferred_list.add(3))
    explicit_list: Counter[list[int]] = Counter__list__int([])
    print(explicit_list.add(5))
    inferred_dict: Counter[dict[str, str | int]] = Counter__dict__str_strUint({'one': 'two', 'three': 4})
    print(inferred_dict.multiply(2))
    explicit_dict: Counter[dict[str, str | int]] = Counter__dict__str_strUint({})
    print(explicit_dict.multiply(4))
`

func loadGenerics(t *testing.T) *ir.Module {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(32)
	m, err := ir.LoadUnitFile(fs, filepath.Join("..", "..", "testdata", "units", "generics.yaml"), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v\n%s", err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m
}

func loadUnit(t *testing.T, src string) *ir.Module {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.yaml", []byte(src))
	bag := diag.NewBag(32)
	m, err := ir.LoadUnit(fs, id, types.NewInterner(), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v\n%s", err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m
}

func TestMonomorphizeGenericsUnit(t *testing.T) {
	m := loadGenerics(t)
	before := ir.FormatModule(m)

	mm, err := MonomorphizeModule(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	if got := ir.FormatModule(mm.Module); got != genericsWant {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, genericsWant)
	}
	if len(mm.Specialized) != 2 {
		t.Fatalf("expected 2 specializations, got %d", len(mm.Specialized))
	}
	for _, s := range mm.Specialized {
		if len(s.UseSites) != 2 {
			t.Fatalf("%s: expected 2 use sites, got %d", s.Name, len(s.UseSites))
		}
		if s.Class.Origin != "Counter" || s.Class.IsGeneric() {
			t.Fatalf("%s: unexpected class header %+v", s.Name, s.Class)
		}
	}
	in := m.Types
	if s := mm.Lookup("Counter", in.List(in.Builtins().Int)); s == nil || s.Name != "Counter__list__int" {
		t.Fatalf("lookup by args failed: %+v", s)
	}
	if ir.FormatModule(m) != before {
		t.Fatalf("the input module must not be modified")
	}
}

func TestMonomorphizeIsDeterministic(t *testing.T) {
	var outs []string
	for range 3 {
		mm, err := MonomorphizeModule(context.Background(), loadGenerics(t), Options{})
		if err != nil {
			t.Fatalf("monomorphize: %v", err)
		}
		var b strings.Builder
		if err := DumpMonoModule(&b, mm, DumpOptions{}); err != nil {
			t.Fatalf("dump: %v", err)
		}
		outs = append(outs, b.String())
	}
	if outs[0] != outs[1] || outs[1] != outs[2] {
		t.Fatalf("output differs between runs:\n%s\n---\n%s", outs[0], outs[1])
	}
	if !strings.HasPrefix(outs[0], "Counter__list__int = Counter[list[int]] (2 sites)\n") {
		t.Fatalf("unexpected dump header:\n%s", outs[0])
	}
}

func TestInferredLetCountsOneSite(t *testing.T) {
	m := loadUnit(t, `
module: u
classes:
  - name: Box
    type_params: [T]
    fields:
      - {name: x, type: T}
    methods:
      - name: __init__
        params:
          - {name: x, type: T}
        body:
          - assign: {attr: x, of: self}
            value: x
funcs:
  - name: main
    body:
      - let: b
        value: {new: Box, args: [1]}
`)
	mm, err := MonomorphizeModule(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	s := mm.ByName("Box__int")
	if s == nil || len(s.UseSites) != 1 {
		t.Fatalf("expected one use site for Box__int, got %+v", s)
	}
	var b strings.Builder
	if err := DumpMonoModule(&b, mm, DumpOptions{HeadersOnly: true}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.HasPrefix(b.String(), "Box__int = Box[int] (1 site)\n") {
		t.Fatalf("unexpected dump header:\n%s", b.String())
	}
}

func TestMonomorphizeEmitsTracePoints(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := MonomorphizeModule(ctx, loadGenerics(t), Options{}); err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	var points []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindPoint {
			points = append(points, ev.Name)
		}
	}
	if len(points) != 2 || points[0] != "Counter__list__int" || points[1] != "Counter__dict__str_strUint" {
		t.Fatalf("unexpected instantiation events %v", points)
	}
}

const nestedUnit = `
module: nested
classes:
  - name: Box
    type_params: [T]
    fields:
      - {name: value, type: T}
    methods:
      - name: __init__
        params: [{name: value, type: T}]
        body:
          - assign: {attr: value, of: self}
            value: value
  - name: Wrapper
    type_params: [T]
    fields:
      - {name: inner, type: "Box[T]"}
    methods:
      - name: __init__
        params: [{name: value, type: T}]
        body:
          - assign: {attr: inner, of: self}
            value: {new: Box, type_args: [T], args: [value]}
funcs:
  - name: main
    body:
      - let: w
        value: {new: Wrapper, type_args: [int], args: [1]}
      - let: again
        value: {new: Wrapper, type_args: [int], args: [2]}
`

func TestNestedInstantiationIsRegisteredFirst(t *testing.T) {
	m := loadUnit(t, nestedUnit)
	mm, err := MonomorphizeModule(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	var names []string
	for _, s := range mm.Specialized {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "Box__int,Wrapper__int" {
		t.Fatalf("unexpected discovery order %v", names)
	}
	wrapper := mm.ByName("Wrapper__int").Class
	init := wrapper.Method("__init__")
	assign := init.Body[0].Data.(ir.AssignData)
	if nd := assign.Value.Data.(ir.NewData); nd.Class != "Box__int" || len(nd.TypeArgs) != 0 {
		t.Fatalf("constructor body not rewritten: %+v", nd)
	}
	if got := types.Label(m.Types, wrapper.Field("inner").Type); got != "Box[int]" {
		t.Fatalf("field type should keep its generic spelling, got %s", got)
	}
	// Box comes first in source order, so its slot is emitted first too.
	if mm.Module.Classes[0].Name != "Box__int" || mm.Module.Classes[1].Name != "Wrapper__int" {
		t.Fatalf("unexpected class order")
	}
}

func TestMethodMayConstructItsOwnClass(t *testing.T) {
	m := loadUnit(t, `
module: self_ref
classes:
  - name: Counter
    type_params: [T]
    fields:
      - {name: items, type: T}
    methods:
      - name: __init__
        params: [{name: items, type: T}]
        body:
          - assign: {attr: items, of: self}
            value: items
      - name: copy
        body:
          - return: {new: Counter, args: [{attr: items, of: self}]}
funcs:
  - name: main
    body:
      - let: c
        value: {new: Counter, args: [{list: [1]}]}
`)
	mm, err := MonomorphizeModule(context.Background(), m, Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	if len(mm.Specialized) != 1 {
		t.Fatalf("expected one specialization, got %d", len(mm.Specialized))
	}
	body := mm.Specialized[0].Class.Method("copy").Body
	ret := body[0].Data.(ir.ReturnData)
	if nd := ret.Value.Data.(ir.NewData); nd.Class != "Counter__list__int" {
		t.Fatalf("copy should construct Counter__list__int, got %s", nd.Class)
	}
}

func TestUnboundTypeParameter(t *testing.T) {
	cases := []struct {
		name  string
		unit  string
		param string
	}{
		{
			name: "missing argument",
			unit: `
module: u
classes:
  - name: Pair
    type_params: [K, V]
    fields:
      - {name: key, type: K}
      - {name: value, type: V}
funcs:
  - name: main
    body:
      - let: p
        value: {new: Pair, type_args: [str], args: []}
`,
			param: "V",
		},
		{
			name: "not inferable",
			unit: `
module: u
classes:
  - name: Counter
    type_params: [T]
    fields:
      - {name: items, type: T}
    methods:
      - name: __init__
        params: [{name: n, type: int}]
        body: [pass]
funcs:
  - name: main
    body:
      - let: c
        value: {new: Counter, args: [1]}
`,
			param: "T",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := loadUnit(t, tc.unit)
			_, err := MonomorphizeModule(context.Background(), m, Options{})
			if !errors.Is(err, ErrUnboundTypeParameter) {
				t.Fatalf("expected unbound type parameter, got %v", err)
			}
			var ue *UnboundTypeParameterError
			if !errors.As(err, &ue) || ue.Param != tc.param || ue.Site == source.NoSpan {
				t.Fatalf("unexpected error details %+v", ue)
			}
		})
	}
}

func TestFailedInstantiationRegistersNothing(t *testing.T) {
	m := loadUnit(t, `
module: u
classes:
  - name: Bad
    type_params: [T]
    fields:
      - {name: x, type: T}
      - {name: y, type: "list[U]"}
`)
	// U is not a declared parameter of Bad, so it parses as a plain name.
	// Build the leak by hand instead.
	bad := m.Class("Bad")
	bad.Fields[1].Type = m.Types.List(m.Types.Param("U"))

	cache := NewCache(m, Options{})
	_, err := cache.GetOrCreate(context.Background(), bad, []types.TypeID{m.Types.Builtins().Int}, source.NoSpan)
	var ue *UnboundTypeParameterError
	if !errors.As(err, &ue) || ue.Param != "U" || ue.Template != "Bad" {
		t.Fatalf("expected U unbound in Bad, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("failed instantiation left %d entries", cache.Len())
	}
	if _, ok := cache.Lookup(NewInstKey(m.Types, "Bad", []types.TypeID{m.Types.Builtins().Int})); ok {
		t.Fatalf("failed instantiation is still looked up")
	}
	if _, ok := cache.Names().Owner("Bad__int"); ok {
		t.Fatalf("failed instantiation claimed its name")
	}
	if _, err := cache.GetOrCreate(context.Background(), bad, []types.TypeID{m.Types.Builtins().Int, m.Types.Builtins().Str}, source.NoSpan); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("expected arity mismatch, got %v", err)
	}
}

func TestRecursiveInstantiation(t *testing.T) {
	m := loadUnit(t, `
module: u
classes:
  - name: Node
    type_params: [T]
    fields:
      - {name: value, type: T}
      - {name: next, type: "Node[T]"}
funcs:
  - name: main
    body:
      - let: n
        value: {new: Node, type_args: [int], args: []}
`)
	_, err := MonomorphizeModule(context.Background(), m, Options{})
	var re *RecursiveInstantiationError
	if !errors.As(err, &re) || re.DepthExceeded {
		t.Fatalf("expected a self instantiation error, got %v", err)
	}
	if len(re.Chain) != 2 || re.Chain[0] != re.Chain[1] || re.Chain[0].String() != "Node[int]" {
		t.Fatalf("unexpected chain %v", re.Chain)
	}
}

func TestInstantiationDepthLimit(t *testing.T) {
	m := loadUnit(t, `
module: u
classes:
  - name: Grow
    type_params: [T]
    fields:
      - {name: next, type: "Grow[list[T]]"}
funcs:
  - name: main
    body:
      - let: g
        value: {new: Grow, type_args: [int], args: []}
`)
	_, err := MonomorphizeModule(context.Background(), m, Options{MaxDepth: 8})
	var re *RecursiveInstantiationError
	if !errors.As(err, &re) || !re.DepthExceeded || re.MaxDepth != 8 {
		t.Fatalf("expected depth exceeded, got %v", err)
	}
	if !errors.Is(err, ErrRecursiveInstantiation) {
		t.Fatalf("depth errors must match ErrRecursiveInstantiation")
	}
}

func TestMangledNameCollision(t *testing.T) {
	m := loadUnit(t, `
module: u
classes:
  - name: strUint
  - name: Counter
    type_params: [T]
    fields:
      - {name: items, type: T}
funcs:
  - name: main
    body:
      - let: a
        value: {new: Counter, type_args: ["dict[str, str | int]"], args: []}
      - let: b
        value: {new: Counter, type_args: ["dict[str, strUint]"], args: []}
`)
	_, err := MonomorphizeModule(context.Background(), m, Options{})
	var ce *MangledNameCollisionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a collision, got %v", err)
	}
	if ce.Name != "Counter__dict__str_strUint" || ce.Existing != "Counter[dict[str,str|int]]" {
		t.Fatalf("unexpected collision details %+v", ce)
	}

	m = loadUnit(t, `
module: u
classes:
  - name: Box__int
  - name: Box
    type_params: [T]
funcs:
  - name: main
    body:
      - let: b
        value: {new: Box, type_args: [int], args: []}
`)
	_, err = MonomorphizeModule(context.Background(), m, Options{})
	if !errors.As(err, &ce) || ce.Existing != "class Box__int" {
		t.Fatalf("expected collision with the plain class, got %v", err)
	}
}

func TestReportMapsErrorsToCodes(t *testing.T) {
	cases := []struct {
		err  error
		code diag.Code
	}{
		{&UnboundTypeParameterError{Template: "Pair", Param: "V"}, diag.MonoUnboundTypeParameter},
		{&MangledNameCollisionError{Name: "A__b"}, diag.MonoNameCollision},
		{&RecursiveInstantiationError{Template: "Node", Chain: []InstKey{{Template: "Node", Args: "int"}}}, diag.MonoRecursiveInstantiation},
		{&UnknownTemplateError{Name: "Nope"}, diag.MonoUnknownTemplate},
		{&ArityMismatchError{Template: "Box", Want: 1, Got: 2}, diag.MonoArityMismatch},
		{&TypeParamLeakError{Where: "main", Type: "T"}, diag.MonoTypeParamLeak},
	}
	for _, tc := range cases {
		bag := diag.NewBag(4)
		if !Report(diag.BagReporter{Bag: bag}, tc.err) {
			t.Fatalf("%T was not reported", tc.err)
		}
		if got := bag.Items()[0].Code; got != tc.code {
			t.Fatalf("%T: want %s, got %s", tc.err, tc.code.ID(), got.ID())
		}
	}
	if Report(diag.NopReporter{}, errors.New("other")) {
		t.Fatalf("foreign errors must not be reported")
	}
}

func TestValidateNoTypeParams(t *testing.T) {
	m := loadGenerics(t)
	if err := ValidateNoTypeParams(m); err == nil {
		t.Fatalf("the unmonomorphized module still has a template")
	}
	mm, err := MonomorphizeModule(context.Background(), loadGenerics(t), Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	if err := ValidateNoTypeParams(mm.Module); err != nil {
		t.Fatalf("unexpected leak: %v", err)
	}
	mm.Module.Funcs[0].Result = mm.Module.Types.Param("T")
	var leak *TypeParamLeakError
	if err := ValidateNoTypeParams(mm.Module); !errors.As(err, &leak) || leak.Where != "main" {
		t.Fatalf("expected a leak in main, got %v", err)
	}
}
