package ir

import "pyjs/internal/types"

// annotate fills Expr.Type where the unit left it implicit. It is a local,
// best-effort pass: literals, containers, locals, self fields and known
// method results. Inferred generic construction is left to the
// monomorphizer, which knows the template's constructor.
func annotate(m *Module) {
	t := &typer{m: m, in: m.Types, b: m.Types.Builtins()}
	globals := newScope(nil)
	for _, g := range m.Globals {
		t.expr(g.Value, globals)
		if g.Type == types.NoTypeID && g.Value != nil {
			g.Type = g.Value.Type
		}
		globals.set(g.Name, g.Type)
	}
	for _, c := range m.Classes {
		t.cls = c
		for _, f := range c.Statics {
			t.expr(f.Value, globals)
			if f.Type == types.NoTypeID && f.Value != nil {
				f.Type = f.Value.Type
			}
		}
		for _, fn := range c.Methods {
			t.fn(fn, globals)
		}
	}
	t.cls = nil
	for _, fn := range m.Funcs {
		t.fn(fn, globals)
	}
}

type scope struct {
	parent *scope
	vars   map[string]types.TypeID
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]types.TypeID)}
}

func (s *scope) set(name string, t types.TypeID) {
	s.vars[name] = t
}

func (s *scope) get(name string) (types.TypeID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return types.NoTypeID, false
}

type typer struct {
	m   *Module
	in  *types.Interner
	b   types.Builtins
	cls *Class
}

// selfType is the receiver type inside cls: the plain class, or the
// template applied to its own parameters.
func (t *typer) selfType(c *Class) types.TypeID {
	if !c.IsGeneric() {
		return t.in.Primitive(c.Name)
	}
	args := make([]types.TypeID, len(c.TypeParams))
	for i, p := range c.TypeParams {
		args[i] = t.in.Param(p)
	}
	return t.in.Generic(c.Name, args...)
}

func (t *typer) fn(fn *Func, globals *scope) {
	sc := newScope(globals)
	if t.cls != nil {
		switch fn.Kind {
		case FuncMethod:
			sc.set("self", t.selfType(t.cls))
		case FuncClassMethod:
			sc.set("cls", t.selfType(t.cls))
		}
	}
	for i := range fn.Params {
		p := &fn.Params[i]
		t.expr(p.Default, sc)
		if p.Type == types.NoTypeID && p.Default != nil {
			p.Type = p.Default.Type
		}
		sc.set(p.Name, p.Type)
	}
	t.stmts(fn.Body, sc)
}

func (t *typer) stmts(stmts []*Stmt, sc *scope) {
	for _, s := range stmts {
		t.stmt(s, sc)
	}
}

func (t *typer) stmt(s *Stmt, sc *scope) {
	switch d := s.Data.(type) {
	case LetData:
		t.expr(d.Value, sc)
		typ := d.Type
		if typ == types.NoTypeID && d.Value != nil {
			typ = d.Value.Type
		}
		sc.set(d.Name, typ)
	case ExprStmtData:
		t.expr(d.Expr, sc)
	case AssignData:
		t.expr(d.Value, sc)
		t.expr(d.Target, sc)
		if name := NameOf(d.Target); name != "" {
			if _, ok := sc.get(name); !ok {
				sc.set(name, d.Value.Type)
				d.Target.Type = d.Value.Type
			}
		}
	case ReturnData:
		t.expr(d.Value, sc)
	case IfData:
		t.expr(d.Cond, sc)
		t.stmts(d.Then, newScope(sc))
		t.stmts(d.Else, newScope(sc))
	case WhileData:
		t.expr(d.Cond, sc)
		t.stmts(d.Body, newScope(sc))
	case ForData:
		t.expr(d.Iter, sc)
		inner := newScope(sc)
		elem, key := t.iterTypes(d.Iter)
		if d.Var2 != "" {
			inner.set(d.Var, key)
			inner.set(d.Var2, elem)
		} else {
			inner.set(d.Var, elem)
		}
		t.stmts(d.Body, inner)
	}
}

// iterTypes returns the element type of iterating e and, for dict item
// pairs, the key type.
func (t *typer) iterTypes(e *Expr) (elem, key types.TypeID) {
	if e == nil {
		return types.NoTypeID, types.NoTypeID
	}
	if call, ok := e.Data.(CallData); ok {
		if f, ok := call.Callee.Data.(FieldData); ok && f.Name == "items" {
			if tt, ok := t.in.Lookup(f.Object.Type); ok && tt.Kind == types.KindDict {
				return tt.Elem, tt.Key
			}
		}
	}
	tt, ok := t.in.Lookup(e.Type)
	if !ok {
		return types.NoTypeID, types.NoTypeID
	}
	switch tt.Kind {
	case types.KindList:
		return tt.Elem, types.NoTypeID
	case types.KindDict:
		return tt.Key, types.NoTypeID
	}
	if e.Type == t.b.Str {
		return t.b.Str, types.NoTypeID
	}
	return types.NoTypeID, types.NoTypeID
}

// classOf returns the class named by a receiver type.
func (t *typer) classOf(id types.TypeID) *Class {
	tt, ok := t.in.Lookup(id)
	if !ok || (tt.Kind != types.KindPrimitive && tt.Kind != types.KindGeneric) {
		return nil
	}
	return t.m.Class(t.in.Name(id))
}

// member finds a field, static or method through the ancestor chain.
func (t *typer) member(c *Class, name string) (types.TypeID, *Func) {
	for _, cur := range append([]*Class{c}, t.m.Ancestors(c)...) {
		if f := cur.Field(name); f != nil {
			return f.Type, nil
		}
		if f := cur.Static(name); f != nil {
			return f.Type, nil
		}
		if fn := cur.Method(name); fn != nil {
			return types.NoTypeID, fn
		}
	}
	return types.NoTypeID, nil
}

func (t *typer) exprs(es []*Expr, sc *scope) []types.TypeID {
	out := make([]types.TypeID, 0, len(es))
	for _, e := range es {
		t.expr(e, sc)
		out = append(out, e.Type)
	}
	return out
}

func (t *typer) expr(e *Expr, sc *scope) {
	if e == nil || e.Type != types.NoTypeID {
		return
	}
	switch d := e.Data.(type) {
	case LiteralData:
		switch d.Kind {
		case LiteralInt:
			e.Type = t.b.Int
		case LiteralFloat:
			e.Type = t.b.Float
		case LiteralBool:
			e.Type = t.b.Bool
		case LiteralString:
			e.Type = t.b.Str
		default:
			e.Type = t.b.None
		}
	case NameData:
		if typ, ok := sc.get(d.Name); ok {
			e.Type = typ
		} else if fn := t.m.Func(d.Name); fn != nil {
			e.Type = fn.Result
		}
	case FieldData:
		t.expr(d.Object, sc)
		obj := d.Object
		c := t.classOf(obj.Type)
		if c == nil {
			c = t.m.Class(NameOf(obj))
		}
		if c == nil && obj.Kind == ExprSuper && t.cls != nil && t.cls.Base != "" {
			c = t.m.Class(t.cls.Base)
		}
		if c != nil {
			e.Type, _ = t.member(c, d.Name)
		}
	case IndexData:
		t.expr(d.Object, sc)
		t.expr(d.Index, sc)
		if tt, ok := t.in.Lookup(d.Object.Type); ok {
			switch tt.Kind {
			case types.KindList, types.KindDict:
				e.Type = tt.Elem
			}
		}
		if d.Object.Type == t.b.Str {
			e.Type = t.b.Str
		}
	case BinaryData:
		t.expr(d.Left, sc)
		t.expr(d.Right, sc)
		e.Type = t.binary(d.Op, d.Left.Type, d.Right.Type)
	case UnaryData:
		t.expr(d.Operand, sc)
		if d.Op == "not" {
			e.Type = t.b.Bool
		} else {
			e.Type = d.Operand.Type
		}
	case CallData:
		t.call(e, d, sc)
	case NewData:
		t.exprs(d.Args, sc)
		c := t.m.Class(d.Class)
		switch {
		case c == nil:
		case !c.IsGeneric():
			e.Type = t.in.Primitive(c.Name)
		case len(d.TypeArgs) > 0:
			e.Type = t.in.Generic(c.Name, d.TypeArgs...)
		}
	case ListData:
		elems := t.exprs(d.Elems, sc)
		if len(elems) > 0 {
			if u := t.in.Union(elems...); u != types.NoTypeID {
				e.Type = t.in.List(u)
			}
		}
	case DictData:
		var keys, vals []types.TypeID
		for _, en := range d.Entries {
			t.expr(en.Key, sc)
			t.expr(en.Value, sc)
			keys = append(keys, en.Key.Type)
			vals = append(vals, en.Value.Type)
		}
		k, v := t.in.Union(keys...), t.in.Union(vals...)
		if k != types.NoTypeID && v != types.NoTypeID {
			e.Type = t.in.Dict(k, v)
		}
	case FormatData:
		for _, p := range d.Parts {
			t.expr(p.Expr, sc)
		}
		e.Type = t.b.Str
	}
}

func (t *typer) binary(op string, l, r types.TypeID) types.TypeID {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "in":
		return t.b.Bool
	case "and", "or":
		if l == r {
			return l
		}
		return t.in.Union(l, r)
	case "/":
		return t.b.Float
	}
	switch {
	case l == t.b.Int && r == t.b.Int:
		return t.b.Int
	case (l == t.b.Int || l == t.b.Float) && (r == t.b.Int || r == t.b.Float):
		return t.b.Float
	case l == r:
		return l
	}
	if op == "+" {
		lt, lok := t.in.Lookup(l)
		rt, rok := t.in.Lookup(r)
		if lok && rok && lt.Kind == types.KindList && rt.Kind == types.KindList {
			return t.in.List(t.in.Union(lt.Elem, rt.Elem))
		}
	}
	return types.NoTypeID
}

func (t *typer) call(e *Expr, d CallData, sc *scope) {
	t.exprs(d.Args, sc)
	switch callee := d.Callee.Data.(type) {
	case NameData:
		if _, local := sc.get(callee.Name); local {
			return
		}
		switch callee.Name {
		case "len":
			e.Type = t.b.Int
		case "str":
			e.Type = t.b.Str
		case "int":
			e.Type = t.b.Int
		case "float":
			e.Type = t.b.Float
		case "print":
			e.Type = t.b.None
		case "range":
			e.Type = t.in.List(t.b.Int)
		default:
			if fn := t.m.Func(callee.Name); fn != nil {
				e.Type = fn.Result
			}
		}
	case FieldData:
		t.expr(d.Callee, sc)
		obj := callee.Object
		if tt, ok := t.in.Lookup(obj.Type); ok {
			switch tt.Kind {
			case types.KindList:
				switch callee.Name {
				case "pop":
					e.Type = tt.Elem
				case "append", "insert":
					e.Type = t.b.None
				}
				return
			case types.KindDict:
				switch callee.Name {
				case "get":
					e.Type = tt.Elem
				case "keys":
					e.Type = t.in.List(tt.Key)
				case "values":
					e.Type = t.in.List(tt.Elem)
				}
				return
			}
		}
		c := t.classOf(obj.Type)
		if c == nil {
			c = t.m.Class(NameOf(obj))
		}
		if c == nil && obj.Kind == ExprSuper && t.cls != nil {
			c = t.m.Class(t.cls.Base)
		}
		if c == nil {
			return
		}
		if _, fn := t.member(c, callee.Name); fn != nil {
			if fn.Result != types.NoTypeID {
				e.Type = fn.Result
			} else if returnsSelf(fn) {
				e.Type = obj.Type
			}
		}
	}
}

// returnsSelf reports whether fn ends with `return self`, the builder
// pattern used by chained calls.
func returnsSelf(fn *Func) bool {
	if len(fn.Body) == 0 {
		return false
	}
	last := fn.Body[len(fn.Body)-1]
	r, ok := last.Data.(ReturnData)
	return ok && NameOf(r.Value) == "self"
}
