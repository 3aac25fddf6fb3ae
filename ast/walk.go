package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range Children(node) {
		Walk(v, child)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Preorder returns an iterator over all nodes of the tree rooted at root,
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(n Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range Children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

// Children returns the direct, non-nil children of node in source order.
func Children(node Node) []Node {
	var out []Node
	add := func(n Node) {
		if n == nil {
			return
		}
		out = append(out, n)
	}
	addExpr := func(x Expr) {
		if x != nil {
			out = append(out, x)
		}
	}
	addStmt := func(s Stmt) {
		if s != nil {
			out = append(out, s)
		}
	}
	addDecls := func(decls []*Declarator) {
		for _, d := range decls {
			addExpr(d.Value)
		}
	}

	switch n := node.(type) {
	case *Script:
		for _, d := range n.Decls {
			addStmt(d)
		}

	// Statements
	case *FunctionDef:
		addStmt(n.Body)
	case *Block:
		for _, s := range n.Stmts {
			addStmt(s)
		}
	case *VarDecl:
		addDecls(n.Decls)
	case *LocalDecl:
		addDecls(n.Decls)
	case *StaticDecl:
		addDecls(n.Decls)
	case *ConstDecl:
		addDecls(n.Decls)
	case *If:
		addExpr(n.Cond)
		addStmt(n.Then)
		addStmt(n.Else)
	case *While:
		addExpr(n.Cond)
		addStmt(n.Body)
	case *For:
		addStmt(n.Init)
		addExpr(n.Cond)
		addExpr(n.Incr)
		addStmt(n.Body)
	case *ForEach:
		addExpr(n.Collection)
		addStmt(n.Body)
	case *Return:
		addExpr(n.Value)
		for _, e := range n.Extra {
			addExpr(e)
		}
	case *ExprStmt:
		addExpr(n.X)
	case *BadStmt:
		for _, c := range n.Children {
			add(c)
		}

	// Expressions
	case *ArrayLiteral:
		for _, e := range n.Elems {
			addExpr(e)
		}
	case *MapLiteral:
		for _, e := range n.Entries {
			addExpr(e.Key)
			addExpr(e.Value)
		}
	case *PropertyAccess:
		addExpr(n.X)
	case *ArrayAccess:
		addExpr(n.X)
		addExpr(n.Index)
	case *ArrayAppend:
		addExpr(n.X)
	case *UnaryOp:
		addExpr(n.X)
	case *BinaryOp:
		addExpr(n.X)
		addExpr(n.Y)
	case *Call:
		for _, a := range n.Args {
			addExpr(a)
		}
	case *ObjectCall:
		addExpr(n.X)
		for _, a := range n.Args {
			addExpr(a)
		}
	case *Inherited:
		for _, a := range n.Args {
			addExpr(a)
		}
	case *NilCheck:
		addExpr(n.X)
	case *SafeNav:
		addExpr(n.X)
	case *BadExpr:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}
