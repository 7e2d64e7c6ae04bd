package vm

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/ir"
	"pyjs/internal/mono"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

func loadFile(t *testing.T, name string) (*ir.Module, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(32)
	m, err := ir.LoadUnitFile(fs, filepath.Join("..", "..", "testdata", "units", name), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load %s: %v\n%s", name, err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m, fs
}

func loadString(t *testing.T, src string) (*ir.Module, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.yaml", []byte(src))
	bag := diag.NewBag(32)
	m, err := ir.LoadUnit(fs, id, types.NewInterner(), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v\n%s", err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m, fs
}

func monomorphize(t *testing.T, m *ir.Module) *ir.Module {
	t.Helper()
	mm, err := mono.MonomorphizeModule(context.Background(), m, mono.Options{})
	if err != nil {
		t.Fatalf("monomorphize: %v", err)
	}
	return mm.Module
}

func TestSpecializedCountersBehave(t *testing.T) {
	m, _ := loadFile(t, "generics.yaml")
	var out bytes.Buffer
	machine := New(monomorphize(t, m), Config{Stdout: &out})
	ctx := context.Background()

	list, err := machine.New(ctx, "Counter__list__int", ListValue(IntValue(1), IntValue(2)))
	if err != nil {
		t.Fatalf("construct list counter: %v", err)
	}
	got, err := machine.CallMethod(ctx, list, "add", IntValue(3))
	if err != nil || got.Kind != VKInt || got.Int != 5 {
		t.Fatalf("add(3): want 5, got %s (%v)", Repr(got), err)
	}

	dict := NewDict()
	dict.Set(StrValue("one"), StrValue("two"))
	dict.Set(StrValue("three"), IntValue(4))
	counter, err := machine.New(ctx, "Counter__dict__str_strUint", Value{Kind: VKDict, Dict: dict})
	if err != nil {
		t.Fatalf("construct dict counter: %v", err)
	}
	got, err = machine.CallMethod(ctx, counter, "multiply", IntValue(2))
	if err != nil || got.Int != 4 {
		t.Fatalf("multiply(2): want 4, got %s (%v)", Repr(got), err)
	}

	if _, err := machine.New(ctx, "Counter", ListValue()); err == nil {
		t.Fatalf("the template must not survive monomorphization")
	}
}

func TestRunGenericsMain(t *testing.T) {
	m, _ := loadFile(t, "generics.yaml")
	var out bytes.Buffer
	if err := New(monomorphize(t, m), Config{Stdout: &out}).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := out.String(), "5\n5\n4\n0\n"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

const classesWant = `Base:
Base.__init__
['hello', 9, 'hello world!', 42, 'thing']
Base.action: 42
Base.action: 2
Base.class_action: 2
Base.static_action: 2
SubClass:
Base.__init__
['hello', 9, 'hello world!', 42, 'thing']
Base.__init__
['hello', 9, 'hello world!', 42, 'thing']
SubClass.__init__
more than 1
hello
Base.action: 42
Base.action: 2
SubClass.action: fortytwo
SubClass.action: 42
SubClass.action: forty
SubClass.action: 2
Base.class_action: 2
Base.static_action: 2
SubClass.static_action: forty
SubClass.static_action: 2
SubClass.class_action: forty
SubClass.class_action: 2
Base.static_action: 2
SubClass.static_action: forty
SubClass.static_action: 2
Base.static_action: 2
`

func TestRunClassesMain(t *testing.T) {
	m, _ := loadFile(t, "classes.yaml")
	var out bytes.Buffer
	if err := New(monomorphize(t, m), Config{Stdout: &out}).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != classesWant {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, classesWant)
	}
}

func TestStaticReadsGlobal(t *testing.T) {
	m, _ := loadString(t, `
module: order
globals:
  - name: g
    value: {str: hi}
classes:
  - name: A
    statics:
      - name: s
        value: {binary: "+", left: g, right: {str: "!"}}
funcs:
  - name: main
    body:
      - expr: {call: print, args: [{attr: s, of: A}]}
`)
	var out bytes.Buffer
	if err := New(m, Config{Stdout: &out}).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "hi!\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestControlFlowAndContainers(t *testing.T) {
	m, _ := loadString(t, `
module: flow
funcs:
  - name: main
    body:
      - let: total
        value: 0
      - for: i
        in: {call: range, args: [10]}
        body:
          - if: {binary: "==", left: {binary: "%", left: i, right: 2}, right: 0}
            then: [continue]
          - if: {binary: ">", left: i, right: 7}
            then: [break]
          - assign: total
            op: "+"
            value: i
      - expr: {call: print, args: [total]}
      - let: d
        value:
          dict:
            - {key: {str: a}, value: 1}
            - {key: {str: b}, value: 2}
      - for: [k, v]
        in: {call: {attr: items, of: d}}
        body:
          - expr: {call: print, args: [k, v]}
      - let: n
        value: 3
      - while: {binary: ">", left: n, right: 0}
        body:
          - assign: n
            op: "-"
            value: 1
      - expr: {call: print, args: [n, {binary: "//", left: -7, right: 2}, {binary: "/", left: 7, right: 2}]}
      - expr: {call: print, args: [{format: ["d=", {name: d}]}]}
`)
	var out bytes.Buffer
	if err := New(m, Config{Stdout: &out}).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "16\na 1\nb 2\n0 -4 3.5\nd={'a': 1, 'b': 2}\n"
	if got := out.String(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRuntimeErrorsCarryBacktrace(t *testing.T) {
	m, fs := loadString(t, `
module: failing
funcs:
  - name: lookup
    params: [d]
    body:
      - return: {index: {str: missing}, of: d}
  - name: main
    body:
      - expr: {call: lookup, args: [{dict: []}]}
`)
	err := New(m, Config{Stdout: &bytes.Buffer{}, Files: fs}).Run(context.Background())
	var ve *VMError
	if !errors.As(err, &ve) || ve.Code != PanicKeyError {
		t.Fatalf("expected a key error, got %v", err)
	}
	if len(ve.Backtrace) != 2 || ve.Backtrace[0].FuncName != "lookup" || ve.Backtrace[1].FuncName != "main" {
		t.Fatalf("unexpected backtrace %+v", ve.Backtrace)
	}
	if text := ve.FormatWithFiles(fs); !strings.Contains(text, "panic VM1010") || !strings.Contains(text, "unit.yaml:") {
		t.Fatalf("unexpected formatted panic:\n%s", text)
	}
}

func TestRecursionLimit(t *testing.T) {
	m, _ := loadString(t, `
module: deep
funcs:
  - name: loop
    body:
      - return: {call: loop}
  - name: main
    body:
      - expr: {call: loop}
`)
	err := New(m, Config{Stdout: &bytes.Buffer{}, MaxCallDepth: 50}).Run(context.Background())
	var ve *VMError
	if !errors.As(err, &ve) || ve.Code != PanicRecursionLimit {
		t.Fatalf("expected recursion limit, got %v", err)
	}
}

func TestReprMatchesPython(t *testing.T) {
	d := NewDict()
	d.Set(StrValue("it's"), FloatValue(1))
	d.Set(IntValue(2), None)
	cases := []struct {
		v    Value
		want string
	}{
		{BoolValue(true), "True"},
		{FloatValue(2.5), "2.5"},
		{FloatValue(3), "3.0"},
		{ListValue(StrValue("a"), IntValue(1)), "['a', 1]"},
		{Value{Kind: VKDict, Dict: d}, `{"it's": 1.0, 2: None}`},
	}
	for _, tc := range cases {
		if got := Repr(tc.v); got != tc.want {
			t.Fatalf("want %s, got %s", tc.want, got)
		}
	}
}
