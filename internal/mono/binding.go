package mono

import (
	"github.com/benbjohnson/immutable"

	"pyjs/internal/types"
)

var emptyBindings = immutable.NewSortedMap(nil)

// Binding maps a template's formal parameters to concrete types. It is
// persistent: With returns a new Binding and leaves the receiver intact.
type Binding struct {
	params []string
	m      *immutable.SortedMap
}

// NewBinding pairs params with args positionally. Extra params stay unbound.
func NewBinding(params []string, args []types.TypeID) Binding {
	b := immutable.NewSortedMapBuilder(emptyBindings)
	for i, p := range params {
		if i >= len(args) || args[i] == types.NoTypeID {
			break
		}
		b.Set(p, args[i])
	}
	return Binding{params: params, m: b.Map()}
}

// Lookup returns the type bound to param.
func (b Binding) Lookup(param string) (types.TypeID, bool) {
	if b.m == nil {
		return types.NoTypeID, false
	}
	v, ok := b.m.Get(param)
	if !ok {
		return types.NoTypeID, false
	}
	return v.(types.TypeID), true
}

// With returns a copy of b that also binds param.
func (b Binding) With(param string, t types.TypeID) Binding {
	m := b.m
	if m == nil {
		m = emptyBindings
	}
	params := b.params
	if _, declared := b.indexOf(param); !declared {
		params = append(append([]string(nil), params...), param)
	}
	return Binding{params: params, m: m.Set(param, t)}
}

func (b Binding) indexOf(param string) (int, bool) {
	for i, p := range b.params {
		if p == param {
			return i, true
		}
	}
	return -1, false
}

func (b Binding) size() int {
	if b.m == nil {
		return 0
	}
	return b.m.Len()
}

// Missing lists declared parameters without a binding, in declaration order.
func (b Binding) Missing() []string {
	if b.size() >= len(b.params) {
		return nil
	}
	var out []string
	for _, p := range b.params {
		if _, ok := b.Lookup(p); !ok {
			out = append(out, p)
		}
	}
	return out
}

// Args returns the bound types in parameter order, NoTypeID for gaps.
func (b Binding) Args() []types.TypeID {
	out := make([]types.TypeID, len(b.params))
	for i, p := range b.params {
		out[i], _ = b.Lookup(p)
	}
	return out
}
