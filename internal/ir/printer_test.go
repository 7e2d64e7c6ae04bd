package ir

import (
	"path/filepath"
	"strings"
	"testing"

	"pyjs/internal/diag"
	"pyjs/internal/source"
	"pyjs/internal/types"
)

func TestFormatExprPrecedence(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	sum := Binary("+", Name("a", b.Int), Name("b", b.Int), b.Int)
	cases := []struct {
		e    *Expr
		want string
	}{
		{Binary("*", sum, Int(2, b.Int), b.Int), "(a + b) * 2"},
		{Binary("+", Int(1, b.Int), Binary("*", Name("x", b.Int), Int(3, b.Int), b.Int), b.Int), "1 + x * 3"},
		{Binary("-", Name("a", b.Int), Binary("-", Name("b", b.Int), Name("c", b.Int), b.Int), b.Int), "a - (b - c)"},
		{Call(Attr(Name("self", 0), "items", 0), 0, Str("it's", b.Str)), `self.items("it's")`},
		{&Expr{Kind: ExprUnary, Data: UnaryData{Op: "not", Operand: Binary("and", Name("a", 0), Name("b", 0), 0)}}, "not (a and b)"},
		{&Expr{Kind: ExprLiteral, Data: LiteralData{Kind: LiteralFloat, FloatValue: 2}}, "2.0"},
		{&Expr{Kind: ExprFormat, Data: FormatData{Parts: []FormatPart{{Text: "n: "}, {Expr: Name("n", 0)}}}}, "f'n: {n}'"},
	}
	for _, tc := range cases {
		if got := FormatExpr(in, tc.e); got != tc.want {
			t.Fatalf("want %q, got %q", tc.want, got)
		}
	}
}

func TestFormatModuleClasses(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(16)
	m, err := LoadUnitFile(fs, filepath.Join("..", "..", "testdata", "units", "classes.yaml"), diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("load: %v\n%s", err, diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	out := FormatModule(m)
	for _, want := range []string{
		"global_world = global_hello + ' world'\n",
		"class Pass:\n    pass\n",
		"class SubClass(Base):\n    FORTY = 'forty'\n",
		"    def __init__(base_number: int = 21):\n        local_number = 9\n",
		"    @classmethod\n    def class_action():\n",
		"        print(f'SubClass.action: {self.word}')\n",
		"def make_base() -> Base:\n    return Base()\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
