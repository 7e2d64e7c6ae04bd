package fuzztests

import (
	"testing"

	"pyjs/internal/mono"
	"pyjs/internal/types"
)

// FuzzTypeKeys parses arbitrary type expressions and checks that the
// canonical key reparses to the same interned type and that mangling is
// deterministic and yields identifiers.
func FuzzTypeKeys(f *testing.F) {
	for _, seed := range []string{
		"int",
		"list[int]",
		"dict[str, str | int]",
		"dict[str, str|int|str]",
		"Counter[list[int]]",
		"Optional[list[float]]",
		"(int | str) | bool",
		"Pair[dict[str, int], list[Box[str]]]",
		"List[Dict[str, int]]",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, text string) {
		if len(text) > 4096 {
			text = text[:4096]
		}
		in := types.NewInterner()
		id, err := types.Parse(in, text, nil)
		if err != nil {
			return
		}
		key := mono.Canonicalize(in, id)
		again, err := types.Parse(in, string(key), nil)
		if err != nil {
			t.Fatalf("canonical key %q of %q does not parse: %v", key, text, err)
		}
		if again != id {
			t.Fatalf("canonical key %q of %q names a different type", key, text)
		}

		name, err := mono.Mangle(in, "Box", []types.TypeID{id})
		if err != nil {
			return
		}
		if !mono.IsIdentifier(name) {
			t.Fatalf("mangled name %q is not an identifier", name)
		}
		if second, _ := mono.Mangle(in, "Box", []types.TypeID{id}); second != name {
			t.Fatalf("mangling not deterministic: %q vs %q", name, second)
		}
	})
}
