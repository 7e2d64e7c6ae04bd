package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every unit can use.
type Builtins struct {
	Invalid TypeID
	Int     TypeID
	Float   TypeID
	Str     TypeID
	Bool    TypeID
	None    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Structurally equal types always share one TypeID.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	names    []string
	nameIdx  map[string]uint32
	unions   [][]TypeID
	generics []GenericInfo
	// composite holds dedup keys for unions and generics, whose members live
	// outside Type.
	composite map[string]TypeID
	builtins  Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:     make(map[Type]TypeID, 64),
		nameIdx:   make(map[string]uint32, 16),
		composite: make(map[string]TypeID, 16),
	}
	in.names = append(in.names, "") // reserve 0
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Int = in.Primitive("int")
	in.builtins.Float = in.Primitive("float")
	in.builtins.Str = in.Primitive("str")
	in.builtins.Bool = in.Primitive("bool")
	in.builtins.None = in.Primitive("None")
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Len reports the number of interned types, including the invalid sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

// Intern ensures the provided descriptor has a stable TypeID. Unions and
// generic references must go through Union and Generic.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

func (in *Interner) nameSlot(name string) uint32 {
	if slot, ok := in.nameIdx[name]; ok {
		return slot
	}
	slot, err := safecast.Conv[uint32](len(in.names))
	if err != nil {
		panic(fmt.Errorf("name table overflow: %w", err))
	}
	in.names = append(in.names, name)
	in.nameIdx[name] = slot
	return slot
}

// Primitive interns a named non-generic type.
func (in *Interner) Primitive(name string) TypeID {
	return in.Intern(Type{Kind: KindPrimitive, Payload: in.nameSlot(name)})
}

// Param interns a formal type parameter.
func (in *Interner) Param(name string) TypeID {
	return in.Intern(Type{Kind: KindParam, Payload: in.nameSlot(name)})
}

func (in *Interner) List(elem TypeID) TypeID {
	return in.Intern(MakeList(elem))
}

func (in *Interner) Dict(key, value TypeID) TypeID {
	return in.Intern(MakeDict(key, value))
}

// Union interns the union of members. Nested unions are flattened,
// duplicates collapse keeping the first occurrence, and declaration order is
// preserved. A single remaining member is returned as is; no members yields
// NoTypeID.
func (in *Interner) Union(members ...TypeID) TypeID {
	flat := make([]TypeID, 0, len(members))
	seen := make(map[TypeID]struct{}, len(members))
	var add func(id TypeID)
	add = func(id TypeID) {
		if id == NoTypeID {
			return
		}
		if tt, ok := in.Lookup(id); ok && tt.Kind == KindUnion {
			for _, m := range in.unions[tt.Payload] {
				add(m)
			}
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		flat = append(flat, id)
	}
	for _, m := range members {
		add(m)
	}
	switch len(flat) {
	case 0:
		return NoTypeID
	case 1:
		return flat[0]
	}

	key := "U" + joinIDs(flat)
	if id, ok := in.composite[key]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.unions))
	if err != nil {
		panic(fmt.Errorf("union table overflow: %w", err))
	}
	in.unions = append(in.unions, flat)
	id := in.internRaw(Type{Kind: KindUnion, Payload: slot})
	in.composite[key] = id
	return id
}

// Generic interns a reference to template name applied to args.
func (in *Interner) Generic(name string, args ...TypeID) TypeID {
	key := "G" + name + "|" + joinIDs(args)
	if id, ok := in.composite[key]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.generics))
	if err != nil {
		panic(fmt.Errorf("generic table overflow: %w", err))
	}
	in.generics = append(in.generics, GenericInfo{Name: name, Args: cloneTypeArgs(args)})
	id := in.internRaw(Type{Kind: KindGeneric, Payload: slot})
	in.composite[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Name returns the name of a primitive or parameter, or the template name of
// a generic reference.
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return ""
	}
	switch tt.Kind {
	case KindPrimitive, KindParam:
		return in.names[tt.Payload]
	case KindGeneric:
		return in.generics[tt.Payload].Name
	}
	return ""
}

// UnionMembers returns the ordered members of a union, or nil.
func (in *Interner) UnionMembers(id TypeID) []TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindUnion {
		return nil
	}
	return cloneTypeArgs(in.unions[tt.Payload])
}

// GenericInfo returns the template name and arguments of a generic reference.
func (in *Interner) GenericInfo(id TypeID) (GenericInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindGeneric {
		return GenericInfo{}, false
	}
	info := in.generics[tt.Payload]
	return GenericInfo{Name: info.Name, Args: cloneTypeArgs(info.Args)}, true
}

// IsParam reports whether id is a formal type parameter.
func (in *Interner) IsParam(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindParam
}

// ContainsParam reports whether any formal parameter occurs inside id.
func (in *Interner) ContainsParam(id TypeID) bool {
	found := false
	Walk(in, id, func(t TypeID) bool {
		if in.IsParam(t) {
			found = true
		}
		return !found
	})
	return found
}

// Walk visits id and its components depth-first in declaration order until
// fn returns false.
func Walk(in *Interner, id TypeID, fn func(TypeID) bool) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return true
	}
	if !fn(id) {
		return false
	}
	switch tt.Kind {
	case KindList:
		return Walk(in, tt.Elem, fn)
	case KindDict:
		return Walk(in, tt.Key, fn) && Walk(in, tt.Elem, fn)
	case KindUnion:
		for _, m := range in.unions[tt.Payload] {
			if !Walk(in, m, fn) {
				return false
			}
		}
	case KindGeneric:
		for _, a := range in.generics[tt.Payload].Args {
			if !Walk(in, a, fn) {
				return false
			}
		}
	}
	return true
}

func joinIDs(ids []TypeID) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return b.String()
}

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	out := make([]TypeID, len(args))
	copy(out, args)
	return out
}
