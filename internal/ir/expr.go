package ir

import (
	"pyjs/internal/source"
	"pyjs/internal/types"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprName
	// ExprField is attribute access (obj.name).
	ExprField
	ExprIndex
	ExprBinary
	ExprUnary
	ExprCall
	// ExprNew constructs a class instance; generic templates carry type
	// arguments until monomorphization rewrites the class name.
	ExprNew
	ExprList
	ExprDict
	// ExprFormat is an f-string.
	ExprFormat
	// ExprSuper is the bare super() receiver.
	ExprSuper
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprName:
		return "Name"
	case ExprField:
		return "Field"
	case ExprIndex:
		return "Index"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	case ExprList:
		return "List"
	case ExprDict:
		return "Dict"
	case ExprFormat:
		return "Format"
	case ExprSuper:
		return "Super"
	default:
		return "Unknown"
	}
}

// Expr is a typed expression.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralString
	LiteralNone
)

type LiteralData struct {
	Kind        LiteralKind
	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

func (LiteralData) exprData() {}

type NameData struct {
	Name string
}

func (NameData) exprData() {}

type FieldData struct {
	Object *Expr
	Name   string
}

func (FieldData) exprData() {}

type IndexData struct {
	Object *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

// BinaryData holds a binary operator in source spelling: + - * / // % ==
// != < <= > >= and or in.
type BinaryData struct {
	Op    string
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

// UnaryData holds - + or not.
type UnaryData struct {
	Op      string
	Operand *Expr
}

func (UnaryData) exprData() {}

type CallData struct {
	Callee *Expr
	Args   []*Expr
}

func (CallData) exprData() {}

// NewData names the constructed class. TypeArgs is empty for non-generic
// classes and for generic construction whose arguments are inferred from
// the constructor arguments.
type NewData struct {
	Class    string
	TypeArgs []types.TypeID
	Args     []*Expr
}

func (NewData) exprData() {}

type ListData struct {
	Elems []*Expr
}

func (ListData) exprData() {}

type DictEntry struct {
	Key   *Expr
	Value *Expr
}

type DictData struct {
	Entries []DictEntry
}

func (DictData) exprData() {}

// FormatPart is either literal Text or an interpolated Expr.
type FormatPart struct {
	Text string
	Expr *Expr
}

type FormatData struct {
	Parts []FormatPart
}

func (FormatData) exprData() {}

type SuperData struct{}

func (SuperData) exprData() {}

// Convenience constructors used by tests and passes.

func Int(v int64, t types.TypeID) *Expr {
	return &Expr{Kind: ExprLiteral, Type: t, Data: LiteralData{Kind: LiteralInt, IntValue: v}}
}

func Str(v string, t types.TypeID) *Expr {
	return &Expr{Kind: ExprLiteral, Type: t, Data: LiteralData{Kind: LiteralString, StringValue: v}}
}

func Name(name string, t types.TypeID) *Expr {
	return &Expr{Kind: ExprName, Type: t, Data: NameData{Name: name}}
}

func Attr(obj *Expr, name string, t types.TypeID) *Expr {
	return &Expr{Kind: ExprField, Type: t, Data: FieldData{Object: obj, Name: name}}
}

func Call(callee *Expr, t types.TypeID, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Type: t, Data: CallData{Callee: callee, Args: args}}
}

func Binary(op string, left, right *Expr, t types.TypeID) *Expr {
	return &Expr{Kind: ExprBinary, Type: t, Data: BinaryData{Op: op, Left: left, Right: right}}
}

// NameOf returns the identifier of an ExprName, or "".
func NameOf(e *Expr) string {
	if e == nil || e.Kind != ExprName {
		return ""
	}
	if d, ok := e.Data.(NameData); ok {
		return d.Name
	}
	return ""
}
