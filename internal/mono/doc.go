// Package mono turns generic class templates into concrete classes.
//
// Every distinct (template, type arguments) pair used by a unit becomes one
// specialized class whose name spells its arguments:
//
//	Counter[list[int]]            -> Counter__list__int
//	Counter[dict[str, str | int]] -> Counter__dict__str_strUint
//
// The pipeline is two-phase. The Cache canonicalizes the arguments into an
// InstKey, and on a miss the instantiator clones the template with every type
// substituted through a Binding. The Rewriter then points construction sites
// at the mangled class. Entries are kept in discovery order, which is also
// the order they are emitted in.
package mono
