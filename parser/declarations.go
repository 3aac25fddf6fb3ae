package parser

import (
	"strings"

	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
	"github.com/aulscript/aul/symbol"
	"github.com/aulscript/aul/value"
)

func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	switch p.curToken.Type {
	case token.DIRECTIVE:
		return p.parseDirective()
	case token.LOCAL:
		return p.parseLocal(true)
	case token.STATIC:
		return p.parseStatic(true)
	case token.FUNC:
		return p.parseFunction(p.curToken.StartPosition, symbol.Public)
	case token.IDENT:
		next := p.peekToken()
		if access, ok := symbol.LookupAccess(p.curToken.Literal); ok && next.Type == token.FUNC {
			start := p.curToken.StartPosition
			p.nextToken()
			return p.parseFunction(start, access)
		}
		if next.Type == token.COLON {
			return p.parseLabelFunction()
		}
	}
	return nil, p.unexpected("declaration")
}

func (p *Parser) parseDirective() (ast.Stmt, error) {
	tok := p.curToken
	d := &ast.Directive{
		Span: ast.Span{From: tok.StartPosition, To: tok.EndPosition},
		Name: tok.Literal,
		Arg:  tok.Directive,
	}
	switch d.Name {
	case "strict":
		level, err := dialect.Parse(d.Arg)
		if err != nil {
			p.nextToken()
			return d, p.syntaxError(errors.E1012, tok.StartPosition, "invalid #strict level %q", d.Arg)
		}
		// applies to the token after the directive
		p.l.SetDialect(level)
	case "include", "appendto":
		fields := strings.Fields(d.Arg)
		if len(fields) == 0 || !value.LooksLikeID(fields[0]) {
			p.nextToken()
			return d, p.syntaxError(errors.E1012, tok.StartPosition, "#%s expects a definition id", d.Name)
		}
		d.Arg = fields[0]
		p.includes = append(p.includes, d.Arg)
		if inc, ok := p.resolver.(includer); ok && p.mode == Preparse {
			inc.Include(d.Arg)
		}
	default:
		p.nextToken()
		return d, p.syntaxError(errors.E1012, tok.StartPosition, "unknown directive #%s", d.Name)
	}
	p.nextToken()
	return d, nil
}

// declareFunc registers one declared name and returns its slot.
type declareFunc func(name string, pos token.Position) (int, error)

// parseDeclarators parses "a, b = expr, c;" after a declaration keyword.
func (p *Parser) parseDeclarators(what string, allowInit bool, declare declareFunc) ([]*ast.Declarator, error) {
	var decls []*ast.Declarator
	for {
		if !p.curTokenIs(token.IDENT) {
			return decls, p.expectedName(what + " name")
		}
		d := &ast.Declarator{NamePos: p.curToken.StartPosition, Name: p.curToken.Literal}
		decls = append(decls, d)
		slot, err := declare(d.Name, d.NamePos)
		d.Slot = slot
		if err != nil {
			return decls, err
		}
		p.nextToken()
		if p.curOperatorIs("=") {
			if !allowInit {
				return decls, p.syntaxError(errors.E1003, p.curToken.StartPosition,
					"%s declarations cannot have an initializer here", what)
			}
			p.nextToken()
			x, err := p.parseExpression(0)
			d.Value = x
			if err != nil {
				return decls, err
			}
		}
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return decls, p.expect(token.SEMICOLON, "';'")
}

func (p *Parser) parseLocal(topLevel bool) (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	decls, err := p.parseDeclarators("local", !topLevel, p.declareField)
	return &ast.LocalDecl{Span: p.spanFrom(start), Decls: decls}, err
}

func (p *Parser) parseStatic(topLevel bool) (ast.Stmt, error) {
	start := p.curToken.StartPosition
	p.nextToken()
	if p.curTokenIs(token.CONST) {
		p.nextToken()
		return p.parseConst(start)
	}
	decls, err := p.parseDeclarators("static", !topLevel, p.declareGlobal)
	return &ast.StaticDecl{Span: p.spanFrom(start), Decls: decls}, err
}

func (p *Parser) declareField(name string, pos token.Position) (int, error) {
	slot, err := p.resolver.RegisterObjectField(name)
	if slot, err = p.registered(slot, err, pos); err != nil {
		return slot, err
	}
	if p.redeclared("local", name) {
		return slot, p.semanticError(errors.E2005, pos, "local %s is already declared", name)
	}
	return slot, nil
}

func (p *Parser) declareGlobal(name string, pos token.Position) (int, error) {
	slot, err := p.resolver.RegisterGlobal(name)
	if slot, err = p.registered(slot, err, pos); err != nil {
		return slot, err
	}
	if p.redeclared("static", name) {
		return slot, p.semanticError(errors.E2005, pos, "static %s is already declared", name)
	}
	return slot, nil
}

// parseConst parses the list after "static const". Every initializer must
// fold to a constant.
func (p *Parser) parseConst(start token.Position) (ast.Stmt, error) {
	decl := &ast.ConstDecl{}
	fail := func(err error) (ast.Stmt, error) {
		decl.Span = p.spanFrom(start)
		return decl, err
	}
	for {
		if !p.curTokenIs(token.IDENT) {
			return fail(p.expectedName("constant name"))
		}
		d := &ast.Declarator{NamePos: p.curToken.StartPosition, Name: p.curToken.Literal}
		decl.Decls = append(decl.Decls, d)
		p.nextToken()
		if !p.curOperatorIs("=") {
			return fail(p.unexpected("'=' after constant name"))
		}
		p.nextToken()
		valuePos := p.curToken.StartPosition
		x, err := p.parseExpression(0)
		d.Value = x
		if err != nil {
			return fail(err)
		}
		v, ok := p.fold(x)
		if !ok {
			return fail(p.semanticError(errors.E2010, valuePos,
				"value of constant %s is not a constant expression", d.Name))
		}
		decl.Values = append(decl.Values, v)
		if _, err := p.registered(0, p.resolver.RegisterConstant(d.Name, v), d.NamePos); err != nil {
			return fail(err)
		}
		if p.redeclared("const", d.Name) {
			return fail(p.semanticError(errors.E2005, d.NamePos, "constant %s is already declared", d.Name))
		}
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if err := p.expect(token.SEMICOLON, "';'"); err != nil {
		return fail(err)
	}
	decl.Span = p.spanFrom(start)
	return decl, nil
}

// parseFunction parses "func Name(params) { body }". The current token is
// "func"; start includes a preceding access modifier.
func (p *Parser) parseFunction(start token.Position, access symbol.Access) (ast.Stmt, error) {
	level := p.level()
	p.nextToken()
	if !p.curTokenIs(token.IDENT) {
		return nil, p.expectedName("function name")
	}
	def := &ast.FunctionDef{Name: p.curToken.Literal, Access: access, Dialect: level}
	p.beginFunction(def.Name)
	defer p.endFunction()
	p.nextToken()

	params, err := p.parseParams()
	def.Params = params
	fn, declErr := p.declareFunction(def, start)
	def.Func = fn
	if err == nil {
		err = declErr
	}
	if err == nil && !p.curTokenIs(token.LBRACE) {
		err = p.unexpected("'{'")
	}
	if err != nil {
		def.Span = p.spanFrom(start)
		def.Body = &ast.BadStmt{Span: def.Span}
		// the caller skips the rest of the declaration
		if !p.curTokenIs(token.LBRACE) {
			return def, err
		}
		p.addError(err)
		p.quietly(p.skipBraces)
		return def, nil
	}

	open := p.save()
	body, err := p.parseBlock()
	if err != nil {
		p.addError(err)
		def.Body = asBadStmt(body)
		p.restore(open)
		p.quietly(p.skipBraces)
	} else {
		def.Body = body
	}
	def.Span = p.spanFrom(start)
	return def, nil
}

// parseLabelFunction parses the old "Name:" form, whose body runs until
// the next declaration.
func (p *Parser) parseLabelFunction() (ast.Stmt, error) {
	start := p.curToken.StartPosition
	def := &ast.FunctionDef{
		Name:    p.curToken.Literal,
		Access:  symbol.Public,
		Legacy:  true,
		Dialect: p.level(),
	}
	p.beginFunction(def.Name)
	defer p.endFunction()
	if err := p.feature(dialect.LabelFunctions, start); err != nil {
		p.nextToken()
		p.nextToken()
		return nil, err
	}
	p.nextToken() // name
	p.nextToken() // ':'

	fn, err := p.declareFunction(def, start)
	def.Func = fn
	block := &ast.Block{Span: ast.Span{From: p.curToken.StartPosition}}
	for err == nil && !p.atDeclarationStart() {
		var stmt ast.Stmt
		stmt, err = p.parseStatement()
		if err != nil {
			def.Body = badStmt(block.Pos(), block.Stmts, stmt)
			break
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if err != nil {
		p.addError(err)
		if def.Body == nil {
			def.Body = &ast.BadStmt{Span: block.Span}
		}
		p.synchronize()
	} else {
		block.To = p.prevToken.EndPosition
		def.Body = block
	}
	def.Span = p.spanFrom(start)
	return def, nil
}

// parseParams parses "(type name, name, ...)".
func (p *Parser) parseParams() ([]ast.Param, error) {
	if err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	seen := map[string]bool{}
	for !p.curTokenIs(token.RPAREN) {
		if len(params) > 0 {
			if err := p.expect(token.COMMA, "',' or ')'"); err != nil {
				return params, err
			}
		}
		typ := value.Any
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.IDENT) {
			t, ok := value.LookupType(p.curToken.Literal)
			if !ok {
				return params, p.syntaxError(errors.E1003, p.curToken.StartPosition,
					"unknown parameter type %s", p.curToken.Literal)
			}
			typ = t
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			return params, p.expectedName("parameter name")
		}
		param := ast.Param{NamePos: p.curToken.StartPosition, Name: p.curToken.Literal, Type: typ}
		if seen[param.Name] {
			return params, p.semanticError(errors.E2006, param.NamePos, "duplicate parameter %s", param.Name)
		}
		if len(params) == symbol.MaxParams {
			return params, p.semanticError(errors.E2007, param.NamePos,
				"too many parameters (at most %d are allowed)", symbol.MaxParams)
		}
		seen[param.Name] = true
		params = append(params, param)
		p.nextToken()
	}
	p.nextToken()
	return params, nil
}

// declareFunction registers the function during preparse and finds that
// registration again during parse.
func (p *Parser) declareFunction(def *ast.FunctionDef, start token.Position) (*symbol.Function, error) {
	fn := &symbol.Function{
		Name:       def.Name,
		Access:     def.Access,
		DeclOffset: start.Char,
	}
	for _, param := range def.Params {
		fn.Params = append(fn.Params, symbol.Param{Name: param.Name, Type: param.Type})
	}
	p.fn = fn
	if p.redeclared("func", def.Name) {
		return fn, p.semanticError(errors.E2005, start, "function %s is already declared", def.Name)
	}
	if p.mode == Parse {
		if existing, ok := p.resolver.LookupFunction(def.Name); ok &&
			!existing.Engine() && existing.DeclOffset == start.Char {
			p.fn = existing
			return existing, nil
		}
	}
	if _, err := p.registered(0, p.resolver.RegisterFunction(fn), start); err != nil {
		return fn, err
	}
	return fn, nil
}

func asBadStmt(s ast.Stmt) *ast.BadStmt {
	if bad, ok := s.(*ast.BadStmt); ok {
		return bad
	}
	if s == nil {
		return &ast.BadStmt{}
	}
	return &ast.BadStmt{Span: ast.Span{From: s.Pos(), To: s.End()}, Children: []ast.Node{s}}
}

// badStmt wraps the statements parsed so far and a partial statement.
func badStmt(from token.Position, stmts []ast.Stmt, partial ast.Stmt) *ast.BadStmt {
	bad := &ast.BadStmt{Span: ast.Span{From: from, To: from}}
	for _, s := range stmts {
		bad.Children = append(bad.Children, s)
		bad.To = s.End()
	}
	if partial != nil {
		bad.Children = append(bad.Children, partial)
	}
	return bad
}
