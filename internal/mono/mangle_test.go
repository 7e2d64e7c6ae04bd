package mono

import (
	"testing"

	"pyjs/internal/types"
)

func mustParse(t *testing.T, in *types.Interner, text string) types.TypeID {
	t.Helper()
	id, err := types.Parse(in, text, nil)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return id
}

func TestMangle(t *testing.T) {
	cases := []struct {
		template string
		args     []string
		want     string
	}{
		{"Counter", []string{"list[int]"}, "Counter__list__int"},
		{"Counter", []string{"dict[str, str | int]"}, "Counter__dict__str_strUint"},
		{"Counter", []string{"int"}, "Counter__int"},
		{"Pair", []string{"int", "str"}, "Pair__int_str"},
		{"Counter", []string{"Box[list[int]]"}, "Counter__Box__list__int"},
		{"Counter", []string{"list[list[float]]"}, "Counter__list__list__float"},
		{"Counter", []string{"Optional[int]"}, "Counter__intUNone"},
	}
	for _, tc := range cases {
		in := types.NewInterner()
		args := make([]types.TypeID, len(tc.args))
		for i, a := range tc.args {
			args[i] = mustParse(t, in, a)
		}
		got, err := Mangle(in, tc.template, args)
		if err != nil {
			t.Fatalf("%s%v: %v", tc.template, tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("%s%v: want %s, got %s", tc.template, tc.args, tc.want, got)
		}
	}
}

func TestMangleRejectsTypeParams(t *testing.T) {
	in := types.NewInterner()
	if _, err := Mangle(in, "Counter", []types.TypeID{in.List(in.Param("T"))}); err == nil {
		t.Fatalf("expected an error for a type parameter argument")
	}
}

func TestIsIdentifier(t *testing.T) {
	cases := map[string]bool{
		"Counter__list__int": true,
		"_x1":                true,
		"Zähler__int":        true,
		"1abc":               false,
		"a-b":                false,
		"":                   false,
	}
	for in, want := range cases {
		if got := IsIdentifier(in); got != want {
			t.Fatalf("IsIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	in := types.NewInterner()
	cases := []struct {
		text string
		want CanonicalKey
	}{
		{"int", "int"},
		{"list[int]", "list[int]"},
		{"dict[str, str | int]", "dict[str,str|int]"},
		{"int | str | int", "int|str"},
		{"Box[list[int], str]", "Box[list[int],str]"},
	}
	for _, tc := range cases {
		if got := Canonicalize(in, mustParse(t, in, tc.text)); got != tc.want {
			t.Fatalf("%s: want %s, got %s", tc.text, tc.want, got)
		}
	}

	a := Canonicalize(in, mustParse(t, in, "str | int"))
	b := Canonicalize(in, mustParse(t, in, "int | str"))
	if a == b {
		t.Fatalf("union order must be significant, both gave %s", a)
	}
	if Canonicalize(in, mustParse(t, in, "list[list[int]]")) == Canonicalize(in, mustParse(t, in, "list[int]")) {
		t.Fatalf("nested lists must not collide")
	}

	args := CanonicalArgs(in, []types.TypeID{in.Builtins().Int, in.List(in.Builtins().Str)})
	if args != "int;list[str]" {
		t.Fatalf("unexpected args key %s", args)
	}
	key := InstKey{Template: "Pair", Args: args}
	if key.String() != "Pair[int, list[str]]" {
		t.Fatalf("unexpected key rendering %s", key)
	}
}

func TestNameRegistry(t *testing.T) {
	r := NewNameRegistry()
	r.Reserve("strUint")
	k1 := InstKey{Template: "Counter", Args: "int"}
	if err := r.Claim("Counter__int", k1); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := r.Claim("Counter__int", k1); err != nil {
		t.Fatalf("reclaim by the same key: %v", err)
	}
	err := r.Claim("Counter__int", InstKey{Template: "Counter", Args: "other"})
	coll, ok := err.(*MangledNameCollisionError)
	if !ok || coll.Existing != "Counter[int]" {
		t.Fatalf("expected collision with Counter[int], got %v", err)
	}
	if err := r.Claim("strUint", k1); err == nil {
		t.Fatalf("reserved names must not be claimable")
	}
	if owner, ok := r.Owner("Counter__int"); !ok || owner != k1 {
		t.Fatalf("unexpected owner %v", owner)
	}
}

func TestBindingIsPersistent(t *testing.T) {
	in := types.NewInterner()
	b := NewBinding([]string{"K", "V"}, []types.TypeID{in.Builtins().Str})
	if got := b.Missing(); len(got) != 1 || got[0] != "V" {
		t.Fatalf("expected V missing, got %v", got)
	}
	full := b.With("V", in.Builtins().Int)
	if _, ok := b.Lookup("V"); ok {
		t.Fatalf("original binding gained V")
	}
	if got := full.Missing(); got != nil {
		t.Fatalf("expected a complete binding, missing %v", got)
	}
	args := full.Args()
	if args[0] != in.Builtins().Str || args[1] != in.Builtins().Int {
		t.Fatalf("unexpected args %v", args)
	}
}
