package ir

import (
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtExpr
	StmtAssign
	StmtReturn
	StmtIf
	StmtWhile
	StmtFor
	StmtBreak
	StmtContinue
)

func (k StmtKind) String() string {
	switch k {
	case StmtLet:
		return "Let"
	case StmtExpr:
		return "Expr"
	case StmtAssign:
		return "Assign"
	case StmtReturn:
		return "Return"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtFor:
		return "For"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	default:
		return "Unknown"
	}
}

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload.
type StmtData interface {
	stmtData()
}

// LetData introduces a local. Type is the declared annotation; it keeps the
// generic spelling (Counter[list[int]]) after monomorphization.
type LetData struct {
	Name  string
	Type  types.TypeID
	Value *Expr
}

func (LetData) stmtData() {}

type ExprStmtData struct {
	Expr *Expr
}

func (ExprStmtData) stmtData() {}

// AssignData stores to Target; Op is empty for plain assignment or the
// arithmetic operator of an augmented one (+ for +=).
type AssignData struct {
	Target *Expr
	Op     string
	Value  *Expr
}

func (AssignData) stmtData() {}

type ReturnData struct {
	Value *Expr // nil for bare return
}

func (ReturnData) stmtData() {}

type IfData struct {
	Cond *Expr
	Then []*Stmt
	Else []*Stmt
}

func (IfData) stmtData() {}

type WhileData struct {
	Cond *Expr
	Body []*Stmt
}

func (WhileData) stmtData() {}

// ForData is for Var in Iter. Var2 is set when unpacking pairs
// (for k, v in d.items()).
type ForData struct {
	Var  string
	Var2 string
	Iter *Expr
	Body []*Stmt
}

func (ForData) stmtData() {}

type BreakData struct{}

func (BreakData) stmtData() {}

type ContinueData struct{}

func (ContinueData) stmtData() {}
