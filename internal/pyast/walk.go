package pyast

import "fmt"

// Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a tree in depth-first, source order: it starts by calling
// v.Visit(node); node must not be nil.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Module:
		walkStmts(v, n.Body)

	// Statements
	case *FunctionDef:
		walkExprs(v, n.Decorators)
		Walk(v, n.Args)
		walkExpr(v, n.Returns)
		walkStmts(v, n.Body)

	case *ClassDef:
		walkExprs(v, n.Decorators)
		walkExprs(v, n.Bases)
		walkStmts(v, n.Body)

	case *Assign:
		walkExprs(v, n.Targets)
		walkExpr(v, n.Value)

	case *AugAssign:
		walkExpr(v, n.Target)
		walkExpr(v, n.Value)

	case *AnnAssign:
		walkExpr(v, n.Target)
		walkExpr(v, n.Annotation)
		walkExpr(v, n.Value)

	case *For:
		walkExpr(v, n.Target)
		walkExpr(v, n.Iter)
		walkStmts(v, n.Body)
		walkStmts(v, n.Orelse)

	case *While:
		walkExpr(v, n.Test)
		walkStmts(v, n.Body)
		walkStmts(v, n.Orelse)

	case *If:
		walkExpr(v, n.Test)
		walkStmts(v, n.Body)
		walkStmts(v, n.Orelse)

	case *With:
		for _, item := range n.Items {
			walkExpr(v, item.Context)
			walkExpr(v, item.Vars)
		}
		walkStmts(v, n.Body)

	case *Try:
		walkStmts(v, n.Body)
		for _, h := range n.Handlers {
			Walk(v, h)
		}
		walkStmts(v, n.Orelse)
		walkStmts(v, n.Finalbody)

	case *ExceptHandler:
		walkExpr(v, n.Type)
		walkStmts(v, n.Body)

	case *Match:
		walkExpr(v, n.Subject)
		for _, c := range n.Cases {
			Walk(v, c)
		}

	case *MatchCase:
		walkExpr(v, n.Guard)
		walkStmts(v, n.Body)

	case *TypeAlias:
		Walk(v, n.Name)
		walkExpr(v, n.Value)

	case *Delete:
		walkExprs(v, n.Targets)

	case *ExprStmt:
		walkExpr(v, n.Value)

	case *Simple:
		walkExprs(v, n.Values)

	// Parameters
	case *Arguments:
		walkArgs(v, n.PosOnly)
		walkArgs(v, n.Args)
		if n.Vararg != nil {
			Walk(v, n.Vararg)
		}
		walkArgs(v, n.KwOnly)
		if n.Kwarg != nil {
			Walk(v, n.Kwarg)
		}
		walkExprs(v, n.Defaults)
		walkExprs(v, n.KwDefaults)

	case *Arg:
		walkExpr(v, n.Annotation)

	// Expressions
	case *Name, *Constant:
		// leaves

	case *List:
		walkExprs(v, n.Elts)

	case *Tuple:
		walkExprs(v, n.Elts)

	case *Set:
		walkExprs(v, n.Elts)

	case *Dict:
		for i := range n.Keys {
			walkExpr(v, n.Keys[i])
			walkExpr(v, n.Values[i])
		}

	case *Comp:
		walkExpr(v, n.Elt)
		walkExpr(v, n.Value)
		for _, g := range n.Generators {
			walkExpr(v, g.Target)
			walkExpr(v, g.Iter)
			walkExprs(v, g.Ifs)
		}

	case *Starred:
		walkExpr(v, n.Value)

	case *Attribute:
		walkExpr(v, n.Value)

	case *Subscript:
		walkExpr(v, n.Value)
		walkExpr(v, n.Slice)

	case *Slice:
		walkExpr(v, n.Lower)
		walkExpr(v, n.Upper)
		walkExpr(v, n.Step)

	case *Call:
		walkExpr(v, n.Func)
		walkExprs(v, n.Args)
		for _, k := range n.Keywords {
			Walk(v, k)
		}

	case *Keyword:
		walkExpr(v, n.Value)

	case *BinOp:
		walkExpr(v, n.Left)
		walkExpr(v, n.Right)

	case *UnaryOp:
		walkExpr(v, n.Operand)

	case *BoolOp:
		walkExprs(v, n.Values)

	case *Compare:
		walkExpr(v, n.Left)
		walkExprs(v, n.Comparators)

	case *IfExp:
		walkExpr(v, n.Test)
		walkExpr(v, n.Body)
		walkExpr(v, n.Orelse)

	case *Lambda:
		Walk(v, n.Args)
		walkExpr(v, n.Body)

	case *NamedExpr:
		Walk(v, n.Target)
		walkExpr(v, n.Value)

	case *Await:
		walkExpr(v, n.Value)

	case *Yield:
		walkExpr(v, n.Value)

	default:
		panic(fmt.Sprintf("pyast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkStmts(v Visitor, list []Stmt) {
	for _, s := range list {
		Walk(v, s)
	}
}

// walkExpr skips nil so optional fields can be passed directly.
func walkExpr(v Visitor, e Expr) {
	if e != nil {
		Walk(v, e)
	}
}

func walkExprs(v Visitor, list []Expr) {
	for _, e := range list {
		walkExpr(v, e)
	}
}

func walkArgs(v Visitor, list []*Arg) {
	for _, a := range list {
		Walk(v, a)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses a tree in depth-first order: it starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a
// call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
