package mono

import (
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// subst rewrites types inside one template through a Binding.
type subst struct {
	in       *types.Interner
	template string
	args     string
	binding  Binding
	site     source.Span
}

// apply replaces every Param in id. Types without parameters are returned
// unchanged so interned identity is kept.
func (s *subst) apply(id types.TypeID) (types.TypeID, error) {
	if id == types.NoTypeID || !s.in.ContainsParam(id) {
		return id, nil
	}
	tt := s.in.MustLookup(id)
	switch tt.Kind {
	case types.KindParam:
		name := s.in.Name(id)
		if t, ok := s.binding.Lookup(name); ok {
			return t, nil
		}
		return types.NoTypeID, &UnboundTypeParameterError{Template: s.template, Param: name, Args: s.args, Site: s.site}
	case types.KindList:
		elem, err := s.apply(tt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return s.in.List(elem), nil
	case types.KindDict:
		key, err := s.apply(tt.Key)
		if err != nil {
			return types.NoTypeID, err
		}
		val, err := s.apply(tt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		return s.in.Dict(key, val), nil
	case types.KindUnion:
		members, err := s.applyAll(s.in.UnionMembers(id))
		if err != nil {
			return types.NoTypeID, err
		}
		return s.in.Union(members...), nil
	case types.KindGeneric:
		info, _ := s.in.GenericInfo(id)
		args, err := s.applyAll(info.Args)
		if err != nil {
			return types.NoTypeID, err
		}
		return s.in.Generic(info.Name, args...), nil
	}
	return id, nil
}

func (s *subst) applyAll(ids []types.TypeID) ([]types.TypeID, error) {
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		t, err := s.apply(id)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
