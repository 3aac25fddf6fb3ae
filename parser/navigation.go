package parser

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
)

// parseExpression3 parses the navigation chain following a primary
// expression: indexing, member access, object calls and "?" nil checks.
// It reports whether at least one navigation step was parsed. A chain
// containing a "?" is wrapped in a SafeNav.
func (p *Parser) parseExpression3(x ast.Expr) (ast.Expr, bool, error) {
	start := x.Pos()
	matched, safe := false, false
	wrap := func(x ast.Expr) ast.Expr {
		if safe {
			return &ast.SafeNav{Span: ast.Span{From: start, To: p.prevToken.EndPosition}, X: x}
		}
		return x
	}
	for {
		// nothing may follow x[], and a "?" chain cannot be assigned to
		if app, isAppend := x.(*ast.ArrayAppend); isAppend {
			if safe {
				return wrap(x), matched, p.syntaxError(errors.E1005, app.Pos(),
					"%s can only be assigned to", app)
			}
			break
		}
		var err error
		switch p.curToken.Type {
		case token.LBRACKET:
			x, err = p.parseIndex(x, start)
		case token.PERIOD:
			x, err = p.parseMember(x, start)
		case token.ARROW, token.ARROW_FAILSAFE:
			x, err = p.parseObjectCall(x, start)
		case token.QUESTION:
			x, err = p.parseNilCheck(x, start)
			safe = true
		default:
			return wrap(x), matched, nil
		}
		matched = true
		if err != nil {
			return wrap(x), matched, err
		}
	}
	return wrap(x), matched, nil
}

// parseIndex parses "[index]" or "[]". A string literal index is a
// property access.
func (p *Parser) parseIndex(x ast.Expr, start token.Position) (ast.Expr, error) {
	if err := p.feature(dialect.ArrayIndexing, p.curToken.StartPosition); err != nil {
		return x, err
	}
	p.nextToken()
	if p.curTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.ArrayAppend{Span: p.spanFrom(start), X: x}, nil
	}
	index, err := p.parseExpression(0)
	if err != nil {
		return &ast.BadExpr{Span: p.spanFrom(start), Children: exprNodes(x, index)}, err
	}
	if err := p.expect(token.RBRACKET, "']'"); err != nil {
		return &ast.BadExpr{Span: p.spanFrom(start), Children: exprNodes(x, index)}, err
	}
	if lit, ok := index.(*ast.StringLiteral); ok {
		return &ast.PropertyAccess{Span: p.spanFrom(start), X: x, Name: lit.Value, Str: lit.Str}, nil
	}
	return &ast.ArrayAccess{Span: p.spanFrom(start), X: x, Index: index}, nil
}

// parseMember parses ".name".
func (p *Parser) parseMember(x ast.Expr, start token.Position) (ast.Expr, error) {
	if err := p.feature(dialect.MemberAccess, p.curToken.StartPosition); err != nil {
		return x, err
	}
	p.nextToken()
	if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.ID) {
		return x, p.expectedName("property name")
	}
	name := p.curToken.Literal
	p.nextToken()
	return &ast.PropertyAccess{Span: p.spanFrom(start), X: x, Name: name, Str: -1}, nil
}

// parseObjectCall parses "->Name(args)", "->~Name(args)" and
// "->DEF::Name(args)".
func (p *Parser) parseObjectCall(x ast.Expr, start token.Position) (ast.Expr, error) {
	call := &ast.ObjectCall{X: x, Failsafe: p.curTokenIs(token.ARROW_FAILSAFE), Str: -1}
	p.nextToken()
	if p.curTokenIs(token.ID) && p.peekTokenIs(token.DOUBLE_COLON) {
		call.Namespace = p.curToken.Literal
		p.nextToken()
		p.nextToken()
	}
	if !p.curTokenIs(token.IDENT) {
		return &ast.BadExpr{Span: p.spanFrom(start), Children: exprNodes(x)}, p.expectedName("function name")
	}
	call.Name = p.curToken.Literal
	p.nextToken()
	args, err := p.parseArgs()
	call.Args = args
	call.Span = p.spanFrom(start)
	return call, err
}

// parseNilCheck parses "?", which must be followed by another navigation
// step.
func (p *Parser) parseNilCheck(x ast.Expr, start token.Position) (ast.Expr, error) {
	if err := p.feature(dialect.SafeNavigation, p.curToken.StartPosition); err != nil {
		return x, err
	}
	p.nextToken()
	check := &ast.NilCheck{Span: p.spanFrom(start), X: x}
	switch p.curToken.Type {
	case token.LBRACKET, token.PERIOD, token.ARROW, token.ARROW_FAILSAFE:
		return check, nil
	}
	return check, p.unexpected("'[', '.' or '->' after '?'")
}

func exprNodes(exprs ...ast.Expr) []ast.Node {
	var out []ast.Node
	for _, x := range exprs {
		if x != nil {
			out = append(out, x)
		}
	}
	return out
}
