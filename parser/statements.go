package parser

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
)

// Statement parsers return the partially built node together with the
// first error, so that a broken function keeps what was parsed.

func (p *Parser) parseStatement() (ast.Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.SEMICOLON:
		s := &ast.Empty{Span: p.tokenSpan()}
		p.nextToken()
		return s, nil
	case token.VAR:
		return p.parseVar()
	case token.LOCAL:
		return p.parseLocal(false)
	case token.STATIC:
		return p.parseStatic(false)
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.FUNC, token.DIRECTIVE, token.ELSE, token.RBRACE, token.EOF:
		return nil, p.unexpected("statement")
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseBlock() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	if err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	block := &ast.Block{}
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			return badStmt(start, block.Stmts, nil), p.unexpected("'}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return badStmt(start, block.Stmts, stmt), err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.nextToken()
	block.Span = p.spanFrom(start)
	return block, nil
}

func (p *Parser) parseVar() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	decls, err := p.parseDeclarators("var", true, p.declareVar)
	return &ast.VarDecl{Span: p.spanFrom(start), Decls: decls}, err
}

func (p *Parser) declareVar(name string, pos token.Position) (int, error) {
	if p.fn == nil {
		return 0, p.syntaxError(errors.E1003, pos, "var outside of a function")
	}
	if _, ok := p.resolver.LookupParameter(p.fn, name); ok {
		return 0, p.semanticError(errors.E2005, pos, "variable %s is already declared as a parameter", name)
	}
	slot, err := p.resolver.RegisterLocal(p.fn, name, pos.Char)
	if slot, err = p.registered(slot, err, pos); err != nil {
		return slot, err
	}
	if p.mode == Parse && p.fnVars[name] {
		if err := p.feature(dialect.VarRedeclaration, pos); err != nil {
			return slot, err
		}
	}
	p.fnVars[name] = true
	return slot, nil
}

// parseCondition parses "(expr)".
func (p *Parser) parseCondition() (ast.Expr, error) {
	if err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(0)
	if err != nil {
		return cond, err
	}
	return cond, p.expect(token.RPAREN, "')'")
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	s := &ast.If{}
	var err error
	if s.Cond, err = p.parseCondition(); err != nil {
		return s, err
	}
	if s.Then, err = p.parseStatement(); err != nil {
		return s, err
	}
	if p.curTokenIs(token.ELSE) {
		p.nextToken()
		if s.Else, err = p.parseStatement(); err != nil {
			return s, err
		}
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

// parseLoopBody parses the body of a loop, where break and continue are
// allowed.
func (p *Parser) parseLoopBody() (ast.Stmt, error) {
	p.loops++
	defer func() { p.loops-- }()
	return p.parseStatement()
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	s := &ast.While{}
	var err error
	if s.Cond, err = p.parseCondition(); err != nil {
		return s, err
	}
	if s.Body, err = p.parseLoopBody(); err != nil {
		return s, err
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	if err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	if p.isForEach() {
		return p.parseForEach(start)
	}

	s := &ast.For{}
	var err error
	switch {
	case p.curTokenIs(token.SEMICOLON):
		p.nextToken()
	case p.curTokenIs(token.VAR):
		// consumes the ';'
		if s.Init, err = p.parseVar(); err != nil {
			return s, err
		}
	default:
		initStmt := &ast.ExprStmt{}
		s.Init = initStmt
		initStart := p.curToken.StartPosition
		if initStmt.X, err = p.parseExpression(0); err != nil {
			return s, err
		}
		initStmt.Span = p.spanFrom(initStart)
		if err := p.expect(token.SEMICOLON, "';'"); err != nil {
			return s, err
		}
	}
	if !p.curTokenIs(token.SEMICOLON) {
		if s.Cond, err = p.parseExpression(0); err != nil {
			return s, err
		}
	}
	if err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return s, err
	}
	if !p.curTokenIs(token.RPAREN) {
		if s.Incr, err = p.parseExpression(0); err != nil {
			return s, err
		}
	}
	if err := p.expect(token.RPAREN, "')'"); err != nil {
		return s, err
	}
	if s.Body, err = p.parseLoopBody(); err != nil {
		return s, err
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

// isForEach looks past "[var] a [, b]" for the contextual keyword "in".
func (p *Parser) isForEach() bool {
	s := p.save()
	defer p.restore(s)
	found := false
	p.quietly(func() {
		if p.curTokenIs(token.VAR) {
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			return
		}
		p.nextToken()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			if !p.curTokenIs(token.IDENT) {
				return
			}
			p.nextToken()
		}
		found = p.curTokenIs(token.IDENT) && p.curToken.Literal == "in"
	})
	return found
}

func (p *Parser) parseForEach(start token.Position) (ast.Stmt, error) {
	s := &ast.ForEach{}
	declare := p.curTokenIs(token.VAR)
	if declare {
		p.nextToken()
	}
	first, err := p.parseLoopVar(declare)
	s.Value = first
	if err != nil {
		return s, err
	}
	if p.curTokenIs(token.COMMA) {
		p.nextToken()
		second, err := p.parseLoopVar(declare)
		if err != nil {
			return s, err
		}
		s.Key, s.Value = first, second
	}
	p.nextToken() // in
	if s.Collection, err = p.parseExpression(0); err != nil {
		return s, err
	}
	if err := p.expect(token.RPAREN, "')'"); err != nil {
		return s, err
	}
	if s.Body, err = p.parseLoopBody(); err != nil {
		return s, err
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

func (p *Parser) parseLoopVar(declare bool) (*ast.LoopVar, error) {
	v := &ast.LoopVar{NamePos: p.curToken.StartPosition, Name: p.curToken.Literal}
	p.nextToken()
	if declare {
		slot, err := p.declareVar(v.Name, v.NamePos)
		v.Slot = slot
		return v, err
	}
	slot, ok := p.resolver.LookupLocal(p.fn, v.Name)
	if !ok && p.mode == Parse {
		return v, p.semanticError(errors.E2001, v.NamePos, "unknown variable %s", v.Name)
	}
	v.Slot = slot
	return v, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	s := &ast.Return{}
	if p.curTokenIs(token.SEMICOLON) {
		p.nextToken()
		s.Span = p.spanFrom(start)
		return s, nil
	}
	var err error
	if p.curTokenIs(token.LPAREN) {
		s.Value, s.Extra, err = p.parseReturnParens()
	} else {
		s.Value, err = p.parseExpression(0)
	}
	if err != nil {
		return s, err
	}
	if err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return s, err
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

// parseReturnParens handles "return (" which is either a parenthesized
// expression or the legacy "return(a, b)" form.
func (p *Parser) parseReturnParens() (ast.Expr, []ast.Expr, error) {
	paren := p.curToken.StartPosition
	p.nextToken()
	first, err := p.parseExpression(0)
	if err != nil {
		return first, nil, err
	}
	if !p.curTokenIs(token.COMMA) {
		if err := p.expect(token.RPAREN, "')'"); err != nil {
			return first, nil, err
		}
		x, _, err := p.parseExpression3(first)
		if err != nil {
			return x, nil, err
		}
		x, err = p.parseExpression2(x, 0)
		if err != nil {
			return x, nil, err
		}
		return x, nil, p.checkComplete(x)
	}
	if err := p.feature(dialect.ReturnCallSyntax, paren); err != nil {
		return first, nil, err
	}
	var extra []ast.Expr
	for p.curTokenIs(token.COMMA) {
		p.nextToken()
		x, err := p.parseExpression(0)
		if x != nil {
			extra = append(extra, x)
		}
		if err != nil {
			return first, extra, err
		}
	}
	return first, extra, p.expect(token.RPAREN, "')'")
}

func (p *Parser) parseBreak() (ast.Stmt, error) {
	s := &ast.Break{Span: p.tokenSpan()}
	if p.loops == 0 {
		return s, p.semanticError(errors.E2003, s.From, "break outside of a loop")
	}
	p.nextToken()
	return s, p.expect(token.SEMICOLON, "';'")
}

func (p *Parser) parseContinue() (ast.Stmt, error) {
	s := &ast.Continue{Span: p.tokenSpan()}
	if p.loops == 0 {
		return s, p.semanticError(errors.E2004, s.From, "continue outside of a loop")
	}
	p.nextToken()
	return s, p.expect(token.SEMICOLON, "';'")
}

func (p *Parser) parseExpressionStatement() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	s := &ast.ExprStmt{}
	var err error
	if s.X, err = p.parseExpression(0); err != nil {
		return s, err
	}
	if err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return s, err
	}
	s.Span = p.spanFrom(start)
	return s, nil
}
