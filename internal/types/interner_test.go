package types

import (
	"errors"
	"testing"
)

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	l1 := in.List(b.Int)
	l2 := in.List(in.Primitive("int"))
	if l1 != l2 {
		t.Fatalf("list types should be deduplicated")
	}
	d1 := in.Dict(b.Str, in.Union(b.Str, b.Int))
	d2 := in.Dict(b.Str, in.Union(b.Str, b.Int))
	if d1 != d2 {
		t.Fatalf("dict types should be deduplicated")
	}
	if in.Generic("Counter", l1) != in.Generic("Counter", l2) {
		t.Fatalf("generic references should be deduplicated")
	}
	if in.Param("T") == in.Primitive("T") {
		t.Fatalf("parameters and primitives must differ")
	}
}

func TestUnionNormalization(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	if got := in.Union(b.Int); got != b.Int {
		t.Fatalf("single-member union should collapse, got %s", Label(in, got))
	}
	if got := in.Union(b.Int, b.Int); got != b.Int {
		t.Fatalf("duplicate members should collapse, got %s", Label(in, got))
	}
	nested := in.Union(b.Str, in.Union(b.Int, b.Str), b.Bool)
	if got := Label(in, nested); got != "str | int | bool" {
		t.Fatalf("unexpected flattened union %q", got)
	}
	if in.Union(b.Str, b.Int) == in.Union(b.Int, b.Str) {
		t.Fatalf("member order must be significant")
	}
	if in.Union() != NoTypeID {
		t.Fatalf("empty union must be NoTypeID")
	}
}

func TestParseAndLabel(t *testing.T) {
	in := NewInterner()
	cases := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"list[int]", "list[int]"},
		{"dict[str, str | int]", "dict[str, str | int]"},
		{"Dict[str,List[float]]", "dict[str, list[float]]"},
		{"Optional[str]", "str | None"},
		{"Counter[list[int]]", "Counter[list[int]]"},
		{"Pair[int, (str | bool)]", "Pair[int, str | bool]"},
	}
	for _, tc := range cases {
		id, err := Parse(in, tc.src, nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.src, err)
		}
		if got := Label(in, id); got != tc.want {
			t.Fatalf("%s: want %q, got %q", tc.src, tc.want, got)
		}
	}
}

func TestParseParams(t *testing.T) {
	in := NewInterner()
	id, err := Parse(in, "dict[K, list[V]]", []string{"K", "V"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !in.ContainsParam(id) {
		t.Fatalf("expected parameters inside %s", Label(in, id))
	}
	tt := in.MustLookup(id)
	if !in.IsParam(tt.Key) || in.Name(tt.Key) != "K" {
		t.Fatalf("expected K to parse as a parameter")
	}
	concrete, _ := Parse(in, "dict[K, int]", nil)
	if in.ContainsParam(concrete) {
		t.Fatalf("K without params list should be a primitive")
	}
}

func TestParseErrors(t *testing.T) {
	in := NewInterner()
	for _, src := range []string{"", "list[int", "dict[int]", "list[int, str]", "int]", "T[int]"} {
		_, err := Parse(in, src, []string{"T"})
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("%q: expected ParseError, got %v", src, err)
		}
	}
}
