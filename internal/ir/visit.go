package ir

// Visitor receives every statement and expression in pre-order. Returning
// false from either hook skips the node's children.
type Visitor struct {
	Stmt func(*Stmt) bool
	Expr func(*Expr) bool
}

func (v Visitor) Stmts(stmts []*Stmt) {
	for _, s := range stmts {
		v.VisitStmt(s)
	}
}

func (v Visitor) VisitStmt(s *Stmt) {
	if s == nil {
		return
	}
	if v.Stmt != nil && !v.Stmt(s) {
		return
	}
	switch d := s.Data.(type) {
	case LetData:
		v.VisitExpr(d.Value)
	case ExprStmtData:
		v.VisitExpr(d.Expr)
	case AssignData:
		v.VisitExpr(d.Target)
		v.VisitExpr(d.Value)
	case ReturnData:
		v.VisitExpr(d.Value)
	case IfData:
		v.VisitExpr(d.Cond)
		v.Stmts(d.Then)
		v.Stmts(d.Else)
	case WhileData:
		v.VisitExpr(d.Cond)
		v.Stmts(d.Body)
	case ForData:
		v.VisitExpr(d.Iter)
		v.Stmts(d.Body)
	}
}

func (v Visitor) VisitExpr(e *Expr) {
	if e == nil {
		return
	}
	if v.Expr != nil && !v.Expr(e) {
		return
	}
	switch d := e.Data.(type) {
	case FieldData:
		v.VisitExpr(d.Object)
	case IndexData:
		v.VisitExpr(d.Object)
		v.VisitExpr(d.Index)
	case BinaryData:
		v.VisitExpr(d.Left)
		v.VisitExpr(d.Right)
	case UnaryData:
		v.VisitExpr(d.Operand)
	case CallData:
		v.VisitExpr(d.Callee)
		for _, a := range d.Args {
			v.VisitExpr(a)
		}
	case NewData:
		for _, a := range d.Args {
			v.VisitExpr(a)
		}
	case ListData:
		for _, el := range d.Elems {
			v.VisitExpr(el)
		}
	case DictData:
		for _, en := range d.Entries {
			v.VisitExpr(en.Key)
			v.VisitExpr(en.Value)
		}
	case FormatData:
		for _, p := range d.Parts {
			v.VisitExpr(p.Expr)
		}
	}
}

// Module visits every function and method body of m, including static
// initializers and parameter defaults.
func (v Visitor) Module(m *Module) {
	for _, g := range m.Globals {
		v.VisitExpr(g.Value)
	}
	for _, c := range m.Classes {
		for _, f := range c.Statics {
			v.VisitExpr(f.Value)
		}
		for _, fn := range c.Methods {
			v.Func(fn)
		}
	}
	for _, fn := range m.Funcs {
		v.Func(fn)
	}
}

func (v Visitor) Func(fn *Func) {
	for _, p := range fn.Params {
		v.VisitExpr(p.Default)
	}
	v.Stmts(fn.Body)
}
