package compiler

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/op"
)

func (c *Compiler) compileStmt(node ast.Stmt) error {
	if node == nil {
		return nil
	}
	c.e.SetOffset(node.Pos().Char)
	switch node := node.(type) {
	case *ast.Block:
		for _, stmt := range node.Stmts {
			if err := c.compileStmt(stmt); err != nil {
				return err
			}
		}
	case *ast.Empty, *ast.ConstDecl:
		// no code
	case *ast.ExprStmt:
		if err := c.compileExpr(node.X); err != nil {
			return err
		}
		c.e.Emit(op.STACK, -1)
	case *ast.VarDecl:
		return c.compileDecls(node.Decls, op.VARN_SET)
	case *ast.LocalDecl:
		return c.compileDecls(node.Decls, op.LOCALN_SET)
	case *ast.StaticDecl:
		return c.compileDecls(node.Decls, op.GLOBALN_SET)
	case *ast.If:
		return c.compileIf(node)
	case *ast.While:
		return c.compileWhile(node)
	case *ast.For:
		return c.compileFor(node)
	case *ast.ForEach:
		return c.compileForEach(node)
	case *ast.Return:
		return c.compileReturn(node)
	case *ast.Break:
		return c.e.Break()
	case *ast.Continue:
		return c.e.Continue()
	default:
		return errors.Internalf("cannot compile %T statement at offset %d", node, node.Pos().Char)
	}
	return nil
}

// compileDecls assigns initializers to their slots. Declarations without
// an initializer emit nothing.
func (c *Compiler) compileDecls(decls []*ast.Declarator, set op.Code) error {
	for _, d := range decls {
		if d.Value == nil {
			continue
		}
		if err := c.compileExpr(d.Value); err != nil {
			return err
		}
		c.e.Emit(set, int32(d.Slot))
		c.e.Emit(op.STACK, -1)
	}
	return nil
}

func (c *Compiler) compileIf(node *ast.If) error {
	e := c.e
	if err := c.compileExpr(node.Cond); err != nil {
		return err
	}
	skipThen := e.EmitJump(op.CONDN)
	if err := c.compileStmt(node.Then); err != nil {
		return err
	}
	if node.Else == nil {
		e.PatchHere(skipThen)
		return nil
	}
	skipElse := e.EmitJump(op.JUMP)
	e.PatchHere(skipThen)
	elseStart := e.Len()
	if err := c.compileStmt(node.Else); err != nil {
		return err
	}
	if e.Len() == elseStart && e.Retract(skipElse) {
		e.Repatch(skipThen, e.MarkHere())
		return nil
	}
	e.PatchHere(skipElse)
	return nil
}

func (c *Compiler) compileWhile(node *ast.While) error {
	e := c.e
	top := e.MarkHere()
	if err := c.compileExpr(node.Cond); err != nil {
		return err
	}
	exit := e.EmitJump(op.CONDN)
	e.PushLoop()
	if err := c.compileStmt(node.Body); err != nil {
		return err
	}
	e.EmitJumpTo(op.JUMP, top)
	e.PatchHere(exit)
	e.PopLoop(top)
	return nil
}

func (c *Compiler) compileFor(node *ast.For) error {
	e := c.e
	if err := c.compileStmt(node.Init); err != nil {
		return err
	}
	top := e.MarkHere()
	var exit JumpSite
	hasCond := node.Cond != nil
	if hasCond {
		if err := c.compileExpr(node.Cond); err != nil {
			return err
		}
		exit = e.EmitJump(op.CONDN)
	}
	e.PushLoop()
	if err := c.compileStmt(node.Body); err != nil {
		return err
	}
	next := e.MarkHere()
	if node.Incr != nil {
		e.SetOffset(node.Incr.Pos().Char)
		if err := c.compileExpr(node.Incr); err != nil {
			return err
		}
		e.Emit(op.STACK, -1)
	}
	e.EmitJumpTo(op.JUMP, top)
	if hasCond {
		e.PatchHere(exit)
	}
	e.PopLoop(next)
	return nil
}

// compileForEach keeps the collection and a counter on the stack while
// iterating, plus the key array for maps. The iteration opcode skips the
// exit jump while elements remain.
func (c *Compiler) compileForEach(node *ast.ForEach) error {
	e := c.e
	if err := c.compileExpr(node.Collection); err != nil {
		return err
	}
	// emitted directly: the counter is never subject to zero-as-nil
	e.Emit(op.INT, 0)
	slots := 2
	if node.Key != nil {
		e.Emit(op.NIL, 0)
		slots = 3
	}
	e.PushLoop()
	next := e.MarkHere()
	if node.Key != nil {
		e.Emit(op.FOREACH_MAP_NEXT, int32(node.Key.Slot))
	} else {
		e.Emit(op.FOREACH_NEXT, int32(node.Value.Slot))
	}
	exit := e.EmitJump(op.JUMP)
	if node.Key != nil {
		e.Emit(op.FOREACH_MAP_VALUE, int32(node.Value.Slot))
	}
	if err := c.compileStmt(node.Body); err != nil {
		return err
	}
	e.EmitJumpTo(op.JUMP, next)
	e.PatchHere(exit)
	e.PopLoop(next)
	e.Emit(op.STACK, int32(-slots))
	return nil
}

func (c *Compiler) compileReturn(node *ast.Return) error {
	e := c.e
	if node.Value == nil {
		e.Emit(op.NIL, 0)
	} else if err := c.compileExpr(node.Value); err != nil {
		return err
	}
	// legacy return(a, b): the extra values are evaluated and dropped
	for _, x := range node.Extra {
		if err := c.compileExpr(x); err != nil {
			return err
		}
	}
	if n := len(node.Extra); n > 0 {
		e.Emit(op.STACK, int32(-n))
	}
	e.SetOffset(node.Pos().Char)
	e.Emit(op.RETURN, 0)
	return nil
}
