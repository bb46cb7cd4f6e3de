// Package pyast declares the syntax tree produced by pyparser for Python
// source files.
//
// The tree keeps the structure the style checks need (function definitions
// and their parameters, default values, assignment targets with their
// expression context) and enough of everything else to walk every nested
// expression and statement. Every node carries the 1-based line and 0-based
// column of its first token.
package pyast

// Pos is the source position of a node.
type Pos struct {
	Line int // 1-based
	Col  int // 0-based, in bytes
}

// Position returns p itself; embedding Pos gives every node this method.
func (p Pos) Position() Pos { return p }

// Node is implemented by every tree node.
type Node interface {
	Position() Pos
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Context tells how a name or target expression is used.
type Context int

const (
	Load Context = iota
	Store
	Del
)

func (c Context) String() string {
	switch c {
	case Store:
		return "Store"
	case Del:
		return "Del"
	default:
		return "Load"
	}
}

// Module is the root of a parsed file.
type Module struct {
	Body []Stmt
}

// Position of a module is the start of the file.
func (m *Module) Position() Pos { return Pos{Line: 1} }

// ----------------------------------------------------------------------------
// Statements

type (
	// FunctionDef is a def or async def statement.
	FunctionDef struct {
		Pos
		Name       string
		Async      bool
		Decorators []Expr
		Args       *Arguments
		Returns    Expr // nil without annotation
		Body       []Stmt
	}

	// ClassDef is a class statement. Bases holds positional bases and
	// keyword values alike.
	ClassDef struct {
		Pos
		Name       string
		Decorators []Expr
		Bases      []Expr
		Body       []Stmt
	}

	// Assign is `t1 = t2 = value`.
	Assign struct {
		Pos
		Targets []Expr
		Value   Expr
	}

	// AugAssign is `target op= value`.
	AugAssign struct {
		Pos
		Target Expr
		Op     string
		Value  Expr
	}

	// AnnAssign is `target: annotation [= value]`.
	AnnAssign struct {
		Pos
		Target     Expr
		Annotation Expr
		Value      Expr // nil without value
	}

	// For is a for or async for loop.
	For struct {
		Pos
		Async  bool
		Target Expr
		Iter   Expr
		Body   []Stmt
		Orelse []Stmt
	}

	While struct {
		Pos
		Test   Expr
		Body   []Stmt
		Orelse []Stmt
	}

	// If holds elif chains as a nested If in Orelse.
	If struct {
		Pos
		Test   Expr
		Body   []Stmt
		Orelse []Stmt
	}

	With struct {
		Pos
		Async bool
		Items []*WithItem
		Body  []Stmt
	}

	// WithItem is `context [as vars]`.
	WithItem struct {
		Context Expr
		Vars    Expr // nil without "as"
	}

	Try struct {
		Pos
		Star      bool // except*
		Body      []Stmt
		Handlers  []*ExceptHandler
		Orelse    []Stmt
		Finalbody []Stmt
	}

	// ExceptHandler binds Name as a plain string, not a Name node.
	ExceptHandler struct {
		Pos
		Type Expr // nil for a bare except
		Name string
		Body []Stmt
	}

	// Match is a match statement. Case patterns are not kept.
	Match struct {
		Pos
		Subject Expr
		Cases   []*MatchCase
	}

	MatchCase struct {
		Pos
		Guard Expr // nil without guard
		Body  []Stmt
	}

	// TypeAlias is `type Name[params] = value`.
	TypeAlias struct {
		Pos
		Name  *Name
		Value Expr
	}

	Delete struct {
		Pos
		Targets []Expr
	}

	// ExprStmt is an expression used as a statement.
	ExprStmt struct {
		Pos
		Value Expr
	}

	// Simple covers the keyword statements that carry only expressions or
	// names: return, raise, assert, global, nonlocal, import, pass, break,
	// continue.
	Simple struct {
		Pos
		Keyword string
		Values  []Expr
		Names   []string
	}
)

// ----------------------------------------------------------------------------
// Function parameters

type (
	// Arguments lists the parameters of a def or lambda. Defaults apply to
	// the last len(Defaults) entries of PosOnly followed by Args.
	// KwDefaults is parallel to KwOnly with nil for missing defaults.
	Arguments struct {
		PosOnly    []*Arg
		Args       []*Arg
		Vararg     *Arg
		KwOnly     []*Arg
		KwDefaults []Expr
		Kwarg      *Arg
		Defaults   []Expr
	}

	Arg struct {
		Pos
		Name       string
		Annotation Expr // nil without annotation
	}
)

// Position of an argument list is that of its first parameter.
func (a *Arguments) Position() Pos {
	for _, group := range [][]*Arg{a.PosOnly, a.Args, {a.Vararg}, a.KwOnly, {a.Kwarg}} {
		for _, arg := range group {
			if arg != nil {
				return arg.Pos
			}
		}
	}
	return Pos{}
}

// ----------------------------------------------------------------------------
// Expressions

type (
	Name struct {
		Pos
		ID  string
		Ctx Context
	}

	// Constant is a number, string (including f-strings, kept opaque),
	// bytes, None, True, False or Ellipsis.
	Constant struct {
		Pos
		Value string
	}

	List struct {
		Pos
		Elts []Expr
		Ctx  Context
	}

	Tuple struct {
		Pos
		Elts []Expr
		Ctx  Context
	}

	Set struct {
		Pos
		Elts []Expr
	}

	// Dict has a nil key for each `**mapping` entry.
	Dict struct {
		Pos
		Keys   []Expr
		Values []Expr
	}

	// Comp is a list, set or dict comprehension or a generator expression.
	Comp struct {
		Pos
		Kind       CompKind
		Elt        Expr // key for dict comprehensions
		Value      Expr // nil unless Kind is DictComp
		Generators []*Comprehension
	}

	// Comprehension is one `for target in iter if cond...` clause.
	Comprehension struct {
		Async  bool
		Target Expr
		Iter   Expr
		Ifs    []Expr
	}

	Starred struct {
		Pos
		Value Expr
		Ctx   Context
	}

	Attribute struct {
		Pos
		Value Expr
		Attr  string
		Ctx   Context
	}

	Subscript struct {
		Pos
		Value Expr
		Slice Expr
		Ctx   Context
	}

	Slice struct {
		Pos
		Lower, Upper, Step Expr // each may be nil
	}

	Call struct {
		Pos
		Func     Expr
		Args     []Expr
		Keywords []*Keyword
	}

	// Keyword is `name=value` in a call, or `**value` when Arg is empty.
	Keyword struct {
		Pos
		Arg   string
		Value Expr
	}

	BinOp struct {
		Pos
		Left  Expr
		Op    string
		Right Expr
	}

	UnaryOp struct {
		Pos
		Op      string
		Operand Expr
	}

	BoolOp struct {
		Pos
		Op     string
		Values []Expr
	}

	Compare struct {
		Pos
		Left        Expr
		Ops         []string
		Comparators []Expr
	}

	IfExp struct {
		Pos
		Test, Body, Orelse Expr
	}

	Lambda struct {
		Pos
		Args *Arguments
		Body Expr
	}

	// NamedExpr is `target := value`.
	NamedExpr struct {
		Pos
		Target *Name
		Value  Expr
	}

	Await struct {
		Pos
		Value Expr
	}

	// Yield is `yield value` or, with From set, `yield from value`.
	Yield struct {
		Pos
		Value Expr // nil for a bare yield
		From  bool
	}
)

// CompKind distinguishes the comprehension forms.
type CompKind int

const (
	ListComp CompKind = iota
	SetComp
	DictComp
	GeneratorExp
)

func (*FunctionDef) stmtNode() {}
func (*ClassDef) stmtNode()    {}
func (*Assign) stmtNode()      {}
func (*AugAssign) stmtNode()   {}
func (*AnnAssign) stmtNode()   {}
func (*For) stmtNode()         {}
func (*While) stmtNode()       {}
func (*If) stmtNode()          {}
func (*With) stmtNode()        {}
func (*Try) stmtNode()         {}
func (*Match) stmtNode()       {}
func (*TypeAlias) stmtNode()   {}
func (*Delete) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}
func (*Simple) stmtNode()      {}

func (*Name) exprNode()      {}
func (*Constant) exprNode()  {}
func (*List) exprNode()      {}
func (*Tuple) exprNode()     {}
func (*Set) exprNode()       {}
func (*Dict) exprNode()      {}
func (*Comp) exprNode()      {}
func (*Starred) exprNode()   {}
func (*Attribute) exprNode() {}
func (*Subscript) exprNode() {}
func (*Slice) exprNode()     {}
func (*Call) exprNode()      {}
func (*BinOp) exprNode()     {}
func (*UnaryOp) exprNode()   {}
func (*BoolOp) exprNode()    {}
func (*Compare) exprNode()   {}
func (*IfExp) exprNode()     {}
func (*Lambda) exprNode()    {}
func (*NamedExpr) exprNode() {}
func (*Await) exprNode()     {}
func (*Yield) exprNode()     {}
