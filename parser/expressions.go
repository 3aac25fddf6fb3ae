package parser

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/symbol"
	"github.com/aulscript/aul/value"
)

// parseExpression parses an expression whose operators bind tighter than
// floor. Pass 0 for a full expression.
func (p *Parser) parseExpression(floor int) (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseUnary()
	if err != nil {
		return left, err
	}
	x, err := p.parseExpression2(left, floor)
	if err != nil {
		return x, err
	}
	return x, p.checkComplete(x)
}

// checkComplete rejects x[] anywhere but on the left of "=".
func (p *Parser) checkComplete(x ast.Expr) error {
	if nav, ok := x.(*ast.SafeNav); ok {
		x = nav.X
	}
	if app, ok := x.(*ast.ArrayAppend); ok {
		return p.syntaxError(errors.E1005, app.Pos(), "%s can only be assigned to", app)
	}
	return nil
}

// parseExpression2 applies postfix and binary operators to left for as
// long as they bind tighter than floor. Right-associative operators also
// continue at equal priority.
func (p *Parser) parseExpression2(left ast.Expr, floor int) (ast.Expr, error) {
	for p.curTokenIs(token.OPERATOR) {
		tok := p.curToken
		o, ok := op.LookupPostfix(tok.Op)
		if !ok {
			break
		}
		if o.Priority < floor || (o.Priority == floor && !o.RightAssoc) {
			break
		}
		if _, isAppend := left.(*ast.ArrayAppend); isAppend && o.Name != "=" {
			return left, p.checkComplete(left)
		}
		if o.Changer() {
			if err := p.checkAssignable(left, o); err != nil {
				return left, err
			}
		}
		p.nextToken()
		if o.NoSecondOperand {
			left = &ast.UnaryOp{
				Span: ast.Span{From: left.Pos(), To: tok.EndPosition},
				Op:   o,
				X:    left,
			}
			continue
		}
		right, err := p.parseExpression(o.Priority)
		bin := &ast.BinaryOp{Op: o, X: left, Y: right}
		bin.Span = ast.Span{From: left.Pos(), To: p.prevToken.EndPosition}
		if err != nil {
			return bin, err
		}
		left = bin
	}
	return left, nil
}

// parseUnary parses prefix operators and a primary expression with its
// navigation chain.
func (p *Parser) parseUnary() (ast.Expr, error) {
	if !p.curTokenIs(token.OPERATOR) {
		x, err := p.parsePrimary()
		if err != nil {
			return x, err
		}
		x, _, err = p.parseExpression3(x)
		return x, err
	}
	tok := p.curToken
	o, ok := op.LookupPrefix(tok.Op)
	if !ok {
		return nil, p.missingExpression()
	}
	p.nextToken()
	x, err := p.parseExpression(o.Priority)
	u := &ast.UnaryOp{
		Span: ast.Span{From: tok.StartPosition, To: p.prevToken.EndPosition},
		Op:   o,
		X:    x,
	}
	if err != nil {
		return u, err
	}
	if o.Changer() {
		if err := p.checkAssignable(x, o); err != nil {
			return u, err
		}
	}
	return u, nil
}

// checkAssignable verifies that x can be the target of operator o.
func (p *Parser) checkAssignable(x ast.Expr, o *op.Operator) error {
	switch t := x.(type) {
	case *ast.ParamRef, *ast.VarRef, *ast.LocalRef, *ast.GlobalRef,
		*ast.ArrayAccess, *ast.PropertyAccess, *ast.Ident:
		return nil
	case *ast.ArrayAppend:
		if o.Name == "=" {
			return nil
		}
	case *ast.ConstRef:
		return p.syntaxError(errors.E1005, t.Pos(), "cannot assign to constant %s", t.Name)
	}
	return p.syntaxError(errors.E1005, x.Pos(), "invalid target for %s", o.Name)
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.curToken
	span := p.tokenSpan()
	switch tok.Type {
	case token.INT:
		p.nextToken()
		return &ast.IntLiteral{Span: span, Value: tok.Int}, nil
	case token.STRING:
		p.nextToken()
		return &ast.StringLiteral{Span: span, Value: tok.Literal, Str: tok.Str}, nil
	case token.ID:
		p.nextToken()
		return &ast.IDLiteral{Span: span, Value: uint32(tok.Int)}, nil
	case token.TRUE, token.FALSE:
		p.nextToken()
		return &ast.BoolLiteral{Span: span, Value: tok.Type == token.TRUE}, nil
	case token.NIL:
		p.nextToken()
		return &ast.NilLiteral{Span: span}, nil
	case token.LPAREN:
		p.nextToken()
		x, err := p.parseExpression(0)
		if err != nil {
			return x, err
		}
		return x, p.expect(token.RPAREN, "')'")
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseMapLiteral()
	case token.IDENT:
		if p.peekTokenIs(token.LPAREN) {
			return p.parseCall(false)
		}
		p.nextToken()
		return p.resolve(tok.Literal, span)
	case token.GLOBAL_ARROW:
		p.nextToken()
		if !p.curTokenIs(token.IDENT) {
			return nil, p.expectedName("function name after global->")
		}
		return p.parseCall(true)
	case token.INHERITED, token.SAFE_INHERITED:
		return p.parseInherited()
	}
	return nil, p.missingExpression()
}

// resolve turns a name into a reference. The lookup order is parameter,
// function variable, object field, global, constant.
func (p *Parser) resolve(name string, span ast.Span) (ast.Expr, error) {
	if p.mode == Preparse {
		return &ast.Ident{Span: span, Name: name}, nil
	}
	r := p.resolver
	if i, ok := r.LookupParameter(p.fn, name); ok {
		return &ast.ParamRef{Span: span, Name: name, Index: i}, nil
	}
	if i, ok := r.LookupLocal(p.fn, name); ok {
		return &ast.VarRef{Span: span, Name: name, Index: i}, nil
	}
	if i, ok := r.LookupObjectField(name); ok {
		return &ast.LocalRef{Span: span, Name: name, Index: i}, nil
	}
	if i, ok := r.LookupGlobal(name); ok {
		return &ast.GlobalRef{Span: span, Name: name, Index: i}, nil
	}
	if v, ok := r.LookupConstant(name); ok {
		return &ast.ConstRef{Span: span, Name: name, Value: v}, nil
	}
	return &ast.Ident{Span: span, Name: name},
		p.semanticError(errors.E2001, span.From, "unknown identifier %s", name)
}

// parseCall parses "Name(args)". global is set after "global->".
func (p *Parser) parseCall(global bool) (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()
	call := &ast.Call{Name: tok.Literal, Global: global}
	args, err := p.parseArgs()
	call.Args = args
	call.Span = ast.Span{From: tok.StartPosition, To: p.prevToken.EndPosition}
	if err != nil {
		return call, err
	}
	if global {
		if err := p.feature(dialect.GlobalArrow, tok.StartPosition); err != nil {
			return call, err
		}
	}
	if p.mode == Preparse {
		return call, nil
	}
	fn, ok := p.resolver.LookupFunction(call.Name)
	if !ok {
		return call, p.semanticError(errors.E2002, tok.StartPosition, "unknown function %s", call.Name)
	}
	if global && !fn.Engine() && fn.Access != symbol.Global {
		return call, p.semanticError(errors.E2002, tok.StartPosition, "no global function %s", call.Name)
	}
	if fn.Access == symbol.Private && (fn.Engine() || fn.Script != p.scriptOf()) {
		return call, p.semanticError(errors.E2008, tok.StartPosition,
			"function %s is private and cannot be called from here", call.Name)
	}
	if len(args) > fn.ParamCount() {
		return call, p.semanticError(errors.E2007, tok.StartPosition,
			"too many parameters for %s: got %d, at most %d", call.Name, len(args), fn.ParamCount())
	}
	call.Func = fn
	return call, nil
}

// scriptOf returns the script that owns the function being parsed.
func (p *Parser) scriptOf() string {
	if p.fn != nil && p.fn.Script != "" {
		return p.fn.Script
	}
	return p.script
}

func (p *Parser) parseInherited() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()
	x := &ast.Inherited{Safe: tok.Type == token.SAFE_INHERITED}
	args, err := p.parseArgs()
	x.Args = args
	x.Span = ast.Span{From: tok.StartPosition, To: p.prevToken.EndPosition}
	if err != nil {
		return x, err
	}
	if p.mode == Preparse {
		return x, nil
	}
	if p.fn == nil {
		return x, p.semanticError(errors.E2009, tok.StartPosition, "%s outside of a function", tok.Literal)
	}
	fn, ok := p.resolver.LookupInherited(p.fn)
	if !ok {
		if x.Safe {
			return x, nil
		}
		return x, p.semanticError(errors.E2009, tok.StartPosition,
			"no inherited function for %s", p.fn.Name)
	}
	if len(args) > fn.ParamCount() {
		return x, p.semanticError(errors.E2007, tok.StartPosition,
			"too many parameters for inherited %s: got %d, at most %d", fn.Name, len(args), fn.ParamCount())
	}
	x.Func = fn
	return x, nil
}

// parseArgs parses "(a, b, ...)". Empty arguments between commas are
// passed as nil.
func (p *Parser) parseArgs() ([]ast.Expr, error) {
	if err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.curTokenIs(token.RPAREN) {
		p.nextToken()
		return args, nil
	}
	for {
		if len(args) == symbol.MaxParams {
			return args, p.semanticError(errors.E2007, p.curToken.StartPosition,
				"too many arguments (at most %d are allowed)", symbol.MaxParams)
		}
		if p.curTokenIs(token.COMMA) || p.curTokenIs(token.RPAREN) {
			args = append(args, &ast.NilLiteral{Span: ast.Span{From: p.curToken.StartPosition, To: p.curToken.StartPosition}})
		} else {
			x, err := p.parseExpression(0)
			if x != nil {
				args = append(args, x)
			}
			if err != nil {
				return args, err
			}
		}
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return args, p.expect(token.RPAREN, "')'")
}

// fold evaluates a constant initializer.
func (p *Parser) fold(x ast.Expr) (value.Value, bool) {
	switch t := x.(type) {
	case *ast.IntLiteral:
		return value.NewInt(t.Value), true
	case *ast.BoolLiteral:
		return value.NewBool(t.Value), true
	case *ast.StringLiteral:
		return value.NewString(t.Value), true
	case *ast.IDLiteral:
		return value.NewID(t.Value), true
	case *ast.NilLiteral:
		return value.NilValue, true
	case *ast.ConstRef:
		return t.Value, true
	case *ast.Ident:
		return p.resolver.LookupConstant(t.Name)
	case *ast.UnaryOp:
		v, ok := p.fold(t.X)
		if !ok {
			return v, false
		}
		switch {
		case t.Op.Name == "-" && v.Type == value.Int:
			return value.NewInt(-v.Int), true
		case t.Op.Name == "+" && v.Type == value.Int:
			return v, true
		case t.Op.Name == "~" && v.Type == value.Int:
			return value.NewInt(^v.Int), true
		case t.Op.Name == "!" && v.Type == value.Bool:
			return value.NewBool(!v.Bool), true
		}
	case *ast.BinaryOp:
		if t.Op.Changer() {
			return value.Value{}, false
		}
		a, ok := p.fold(t.X)
		if !ok || a.Type != value.Int {
			return value.Value{}, false
		}
		b, ok := p.fold(t.Y)
		if !ok || b.Type != value.Int {
			return value.Value{}, false
		}
		return foldInt(t.Op.Code, a.Int, b.Int)
	}
	return value.Value{}, false
}

func foldInt(code op.Code, a, b int32) (value.Value, bool) {
	switch code {
	case op.SUM:
		return value.NewInt(a + b), true
	case op.SUB:
		return value.NewInt(a - b), true
	case op.MUL:
		return value.NewInt(a * b), true
	case op.DIV:
		if b == 0 {
			return value.Value{}, false
		}
		return value.NewInt(a / b), true
	case op.MOD:
		if b == 0 {
			return value.Value{}, false
		}
		return value.NewInt(a % b), true
	case op.LSHIFT:
		return value.NewInt(a << uint32(b&31)), true
	case op.RSHIFT:
		return value.NewInt(a >> uint32(b&31)), true
	case op.BITAND:
		return value.NewInt(a & b), true
	case op.BITOR:
		return value.NewInt(a | b), true
	case op.BITXOR:
		return value.NewInt(a ^ b), true
	}
	return value.Value{}, false
}
