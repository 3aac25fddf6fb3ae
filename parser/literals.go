package parser

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/internal/token"
)

// parseArrayLiteral parses "[a, b, c]". A trailing comma is allowed.
func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	arr := &ast.ArrayLiteral{}
	for !p.curTokenIs(token.RBRACKET) {
		x, err := p.parseExpression(0)
		if x != nil {
			arr.Elems = append(arr.Elems, x)
		}
		if err != nil {
			arr.Span = p.spanFrom(start)
			return arr, err
		}
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	err := p.expect(token.RBRACKET, "',' or ']'")
	arr.Span = p.spanFrom(start)
	return arr, err
}

// parseMapLiteral parses "{key = value, "key": value}". Identifier keys
// are stored as strings.
func (p *Parser) parseMapLiteral() (ast.Expr, error) {
	start := p.curToken.StartPosition
	m := &ast.MapLiteral{}
	fail := func(err error) (ast.Expr, error) {
		m.Span = p.spanFrom(start)
		return m, err
	}
	if err := p.feature(dialect.MapLiterals, start); err != nil {
		return nil, err
	}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		tok := p.curToken
		var key *ast.StringLiteral
		switch tok.Type {
		case token.IDENT, token.ID:
			key = &ast.StringLiteral{Span: p.tokenSpan(), Value: tok.Literal, Str: -1}
		case token.STRING:
			key = &ast.StringLiteral{Span: p.tokenSpan(), Value: tok.Literal, Str: tok.Str}
		default:
			return fail(p.unexpected("map key"))
		}
		p.nextToken()
		if !p.curOperatorIs("=") && !p.curTokenIs(token.COLON) {
			return fail(p.unexpected("'=' or ':' after map key"))
		}
		p.nextToken()
		x, err := p.parseExpression(0)
		if x != nil {
			m.Entries = append(m.Entries, ast.MapEntry{Key: key, Value: x})
		}
		if err != nil {
			return fail(err)
		}
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return fail(p.expect(token.RBRACE, "',' or '}'"))
}
