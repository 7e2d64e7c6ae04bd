package vm

import "math"

// Dict is an insertion-ordered dictionary.
type Dict struct {
	keys  []Value
	vals  []Value
	index map[dictKey]int
}

type dictKey struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
}

func NewDict() *Dict {
	return &Dict{index: make(map[dictKey]int)}
}

// hashKey normalizes numeric keys so 1, 1.0 and True share a slot.
func hashKey(v Value) (dictKey, bool) {
	switch v.Kind {
	case VKNone:
		return dictKey{kind: VKNone}, true
	case VKBool:
		if v.Bool {
			return dictKey{kind: VKInt, i: 1}, true
		}
		return dictKey{kind: VKInt}, true
	case VKInt:
		return dictKey{kind: VKInt, i: v.Int}, true
	case VKFloat:
		if v.Float == math.Trunc(v.Float) && math.Abs(v.Float) < 1<<62 {
			return dictKey{kind: VKInt, i: int64(v.Float)}, true
		}
		return dictKey{kind: VKFloat, f: v.Float}, true
	case VKStr:
		return dictKey{kind: VKStr, s: v.Str}, true
	}
	return dictKey{}, false
}

func (d *Dict) Len() int {
	return len(d.keys)
}

func (d *Dict) Get(k Value) (Value, bool) {
	hk, ok := hashKey(k)
	if !ok {
		return Value{}, false
	}
	i, ok := d.index[hk]
	if !ok {
		return Value{}, false
	}
	return d.vals[i], true
}

// Set stores v under k; it fails for unhashable keys.
func (d *Dict) Set(k, v Value) bool {
	hk, ok := hashKey(k)
	if !ok {
		return false
	}
	if i, ok := d.index[hk]; ok {
		d.vals[i] = v
		return true
	}
	d.index[hk] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
	return true
}

// Delete removes k, keeping the order of the remaining entries.
func (d *Dict) Delete(k Value) (Value, bool) {
	hk, ok := hashKey(k)
	if !ok {
		return Value{}, false
	}
	i, ok := d.index[hk]
	if !ok {
		return Value{}, false
	}
	v := d.vals[i]
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.vals = append(d.vals[:i], d.vals[i+1:]...)
	delete(d.index, hk)
	for key, j := range d.index {
		if j > i {
			d.index[key] = j - 1
		}
	}
	return v, true
}

func (d *Dict) Keys() []Value {
	return append([]Value(nil), d.keys...)
}

func (d *Dict) Values() []Value {
	return append([]Value(nil), d.vals...)
}
