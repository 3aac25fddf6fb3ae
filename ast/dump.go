package ast

import (
	"strconv"
	"strings"
)

// Dump renders a node and its children in a compact constructor form, for
// example Return(BinaryOp(+, IntLiteral(1), IntLiteral(2))).
func Dump(node Node) string {
	var b strings.Builder
	dump(&b, node)
	return b.String()
}

func dump(b *strings.Builder, node Node) {
	name, attrs := describe(node)
	b.WriteString(name)
	children := Children(node)
	if len(attrs) == 0 && len(children) == 0 {
		switch node.(type) {
		case *NilLiteral, *Break, *Continue, *Empty, *Return, *Block, *BadExpr, *BadStmt:
			b.WriteString("()")
		}
		return
	}
	b.WriteString("(")
	for i, a := range attrs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a)
	}
	for i, c := range children {
		if i > 0 || len(attrs) > 0 {
			b.WriteString(", ")
		}
		dump(b, c)
	}
	b.WriteString(")")
}

func declNames(decls []*Declarator) []string {
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	return names
}

// describe returns the node kind and its non-node attributes.
// Describe returns the node's kind and its scalar attributes as Dump
// prints them.
func Describe(node Node) (string, []string) {
	return describe(node)
}

func describe(node Node) (string, []string) {
	switch n := node.(type) {
	case *Script:
		return "Script", nil
	case *Directive:
		return "Directive", []string{n.Name, strconv.Quote(n.Arg)}
	case *FunctionDef:
		return "FunctionDef", []string{n.Name}
	case *Block:
		return "Block", nil
	case *Empty:
		return "Empty", nil
	case *VarDecl:
		return "VarDecl", declNames(n.Decls)
	case *LocalDecl:
		return "LocalDecl", declNames(n.Decls)
	case *StaticDecl:
		return "StaticDecl", declNames(n.Decls)
	case *ConstDecl:
		return "ConstDecl", declNames(n.Decls)
	case *If:
		return "If", nil
	case *While:
		return "While", nil
	case *For:
		return "For", nil
	case *ForEach:
		if n.Key != nil {
			return "ForEach", []string{n.Key.Name, n.Value.Name}
		}
		return "ForEach", []string{n.Value.Name}
	case *Return:
		return "Return", nil
	case *Break:
		return "Break", nil
	case *Continue:
		return "Continue", nil
	case *ExprStmt:
		return "ExprStmt", nil
	case *BadStmt:
		return "Error", nil
	case *IntLiteral:
		return "IntLiteral", []string{n.String()}
	case *BoolLiteral:
		return "BoolLiteral", []string{n.String()}
	case *StringLiteral:
		return "StringLiteral", []string{n.String()}
	case *IDLiteral:
		return "IdLiteral", []string{n.String()}
	case *NilLiteral:
		return "NilLiteral", nil
	case *ArrayLiteral:
		return "ArrayLiteral", nil
	case *MapLiteral:
		return "MapLiteral", nil
	case *Ident:
		return "Ident", []string{n.Name}
	case *ParamRef:
		return "ParamRef", []string{n.Name}
	case *VarRef:
		return "VarRef", []string{n.Name}
	case *LocalRef:
		return "LocalRef", []string{n.Name}
	case *GlobalRef:
		return "GlobalRef", []string{n.Name}
	case *ConstRef:
		return "ConstRef", []string{n.Name}
	case *PropertyAccess:
		return "PropertyAccess", []string{n.Name}
	case *ArrayAccess:
		return "ArrayAccess", nil
	case *ArrayAppend:
		return "ArrayAppend", nil
	case *UnaryOp:
		if n.Op.Postfix {
			return "UnaryOp", []string{"post" + n.Op.Name}
		}
		return "UnaryOp", []string{n.Op.Name}
	case *BinaryOp:
		return "BinaryOp", []string{n.Op.Name}
	case *Call:
		return "FunctionCall", []string{n.Name}
	case *ObjectCall:
		return "IndirectCall", []string{n.QualifiedName()}
	case *Inherited:
		return "Inherited", nil
	case *NilCheck:
		return "NilCheck", nil
	case *SafeNav:
		return "SafeNav", nil
	case *BadExpr:
		return "Error", nil
	}
	return "Unknown", nil
}
