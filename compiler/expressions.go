package compiler

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/value"
)

// compileExpr emits code that leaves the value of node on the stack.
func (c *Compiler) compileExpr(node ast.Expr) error {
	e := c.e
	e.SetOffset(node.Pos().Char)
	switch node := node.(type) {
	case *ast.IntLiteral:
		c.emitInt(node.Value)
	case *ast.BoolLiteral:
		c.emitBool(node.Value)
	case *ast.StringLiteral:
		e.Emit(op.STRING, c.intern(node.Str, node.Value))
	case *ast.IDLiteral:
		e.Emit(op.ID, int32(node.Value))
	case *ast.NilLiteral:
		e.Emit(op.NIL, 0)
	case *ast.ArrayLiteral:
		for _, elem := range node.Elems {
			if err := c.compileExpr(elem); err != nil {
				return err
			}
		}
		e.Emit(op.ARRAY, int32(len(node.Elems)))
	case *ast.MapLiteral:
		for _, entry := range node.Entries {
			if err := c.compileExpr(entry.Key); err != nil {
				return err
			}
			if err := c.compileExpr(entry.Value); err != nil {
				return err
			}
		}
		e.Emit(op.MAP, int32(len(node.Entries)))
	case *ast.ConstRef:
		return c.emitValue(node.Value)
	case *ast.ParamRef, *ast.VarRef, *ast.LocalRef, *ast.GlobalRef:
		return c.load(node)
	case *ast.PropertyAccess:
		if err := c.compileExpr(node.X); err != nil {
			return err
		}
		e.Emit(op.PROP, c.intern(node.Str, node.Name))
	case *ast.ArrayAccess:
		if err := c.compileExpr(node.X); err != nil {
			return err
		}
		if err := c.compileExpr(node.Index); err != nil {
			return err
		}
		e.Emit(op.ARRAYA, 0)
	case *ast.UnaryOp:
		return c.compileUnary(node)
	case *ast.BinaryOp:
		return c.compileBinary(node)
	case *ast.Call:
		return c.compileCall(node)
	case *ast.ObjectCall:
		return c.compileObjectCall(node)
	case *ast.Inherited:
		return c.compileInherited(node)
	case *ast.SafeNav:
		return c.compileSafeNav(node)
	case *ast.NilCheck:
		return c.compileNilCheck(node)
	case *ast.Ident:
		return errors.Internalf("unresolved identifier %s at offset %d", node.Name, node.Pos().Char)
	default:
		return errors.Internalf("cannot compile %T expression at offset %d", node, node.Pos().Char)
	}
	return nil
}

func (c *Compiler) emitInt(v int32) {
	if v == 0 && c.enabled(dialect.ZeroIsNil) {
		c.e.Emit(op.NIL, 0)
		return
	}
	c.e.Emit(op.INT, v)
}

func (c *Compiler) emitBool(v bool) {
	var operand int32
	if v {
		operand = 1
	}
	c.e.Emit(op.BOOL, operand)
}

// emitValue pushes a folded constant.
func (c *Compiler) emitValue(v value.Value) error {
	switch v.Type {
	case value.Int:
		c.emitInt(v.Int)
	case value.Bool:
		c.emitBool(v.Bool)
	case value.String:
		c.e.Emit(op.STRING, c.intern(-1, v.Str))
	case value.ID:
		c.e.Emit(op.ID, int32(v.ID))
	case value.Nil:
		c.e.Emit(op.NIL, 0)
	default:
		return errors.Internalf("cannot emit constant of type %s", v.Type)
	}
	return nil
}

func (c *Compiler) compileUnary(node *ast.UnaryOp) error {
	if node.Op.Changer() {
		return c.compileIncDec(node)
	}
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	// unary plus is a no-op
	if node.Op.Code != op.Invalid {
		c.e.Emit(node.Op.Code, 0)
	}
	return nil
}

// compileIncDec lowers ++ and --. The postfix forms update the target like
// the prefix forms, then undo the step on the value left on the stack.
func (c *Compiler) compileIncDec(node *ast.UnaryOp) error {
	e := c.e
	if err := c.prepare(node.X); err != nil {
		return err
	}
	if err := c.load(node.X); err != nil {
		return err
	}
	e.Emit(op.INT, 1)
	e.Emit(node.Op.Code, 0)
	if err := c.store(node.X); err != nil {
		return err
	}
	if node.Postfix() {
		e.Emit(op.INT, 1)
		e.Emit(reverse(node.Op.Code), 0)
	}
	return nil
}

func reverse(code op.Code) op.Code {
	if code == op.SUM {
		return op.SUB
	}
	return op.SUM
}

func (c *Compiler) compileBinary(node *ast.BinaryOp) error {
	if node.Op.Changer() {
		return c.compileAssign(node)
	}
	e := c.e
	switch node.Op.Code {
	case op.AND, op.OR:
		if c.enabled(dialect.ShortCircuit) {
			jump := op.JUMPAND
			if node.Op.Code == op.OR {
				jump = op.JUMPOR
			}
			return c.shortCircuit(node, jump)
		}
	case op.JUMPNOTNIL:
		return c.shortCircuit(node, op.JUMPNOTNIL)
	case op.SUM:
		if lit, ok := node.X.(*ast.IntLiteral); ok && lit.Value == 0 && c.enabled(dialect.ZeroPlusElision) {
			return c.compileExpr(node.Y)
		}
	}
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	if err := c.compileExpr(node.Y); err != nil {
		return err
	}
	e.SetOffset(node.Pos().Char)
	e.Emit(node.Op.Code, 0)
	return nil
}

// shortCircuit evaluates Y only if the jump on X falls through. The jump
// keeps X on the stack when taken and pops it otherwise.
func (c *Compiler) shortCircuit(node *ast.BinaryOp, jump op.Code) error {
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	site := c.e.EmitJump(jump)
	if err := c.compileExpr(node.Y); err != nil {
		return err
	}
	c.e.PatchHere(site)
	return nil
}

func (c *Compiler) compileAssign(node *ast.BinaryOp) error {
	e := c.e
	if err := c.prepare(node.X); err != nil {
		return err
	}
	switch node.Op.Code {
	case op.Invalid:
		// plain assignment
		if err := c.compileExpr(node.Y); err != nil {
			return err
		}
	case op.JUMPNOTNIL:
		if err := c.load(node.X); err != nil {
			return err
		}
		site := e.EmitJump(op.JUMPNOTNIL)
		if err := c.compileExpr(node.Y); err != nil {
			return err
		}
		e.PatchHere(site)
	default:
		if err := c.load(node.X); err != nil {
			return err
		}
		if err := c.compileExpr(node.Y); err != nil {
			return err
		}
		e.Emit(node.Op.Code, 0)
	}
	e.SetOffset(node.Pos().Char)
	return c.store(node.X)
}

// prepare pushes the container parts of an assignment target.
func (c *Compiler) prepare(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.ParamRef, *ast.VarRef, *ast.LocalRef, *ast.GlobalRef:
		return nil
	case *ast.ArrayAccess:
		if err := c.compileExpr(t.X); err != nil {
			return err
		}
		return c.compileExpr(t.Index)
	case *ast.PropertyAccess:
		return c.compileExpr(t.X)
	case *ast.ArrayAppend:
		return c.compileExpr(t.X)
	}
	return errors.Internalf("%s is not assignable", target)
}

// load pushes the current value of a prepared target.
func (c *Compiler) load(target ast.Expr) error {
	e := c.e
	switch t := target.(type) {
	case *ast.ParamRef:
		e.Emit(op.PARN, int32(t.Index))
	case *ast.VarRef:
		e.Emit(op.VARN, int32(t.Index))
	case *ast.LocalRef:
		e.Emit(op.LOCALN, int32(t.Index))
	case *ast.GlobalRef:
		e.Emit(op.GLOBALN, int32(t.Index))
	case *ast.ArrayAccess:
		// array, index -> array, index, array[index]
		e.Emit(op.DUP, 1)
		e.Emit(op.DUP, 1)
		e.Emit(op.ARRAYA, 0)
	case *ast.PropertyAccess:
		e.Emit(op.DUP, 0)
		e.Emit(op.PROP, c.intern(t.Str, t.Name))
	default:
		return errors.Internalf("cannot read %s", target)
	}
	return nil
}

// store assigns the value on top of the stack to a prepared target and
// leaves the value as the result.
func (c *Compiler) store(target ast.Expr) error {
	e := c.e
	switch t := target.(type) {
	case *ast.ParamRef:
		e.Emit(op.PARN_SET, int32(t.Index))
	case *ast.VarRef:
		e.Emit(op.VARN_SET, int32(t.Index))
	case *ast.LocalRef:
		e.Emit(op.LOCALN_SET, int32(t.Index))
	case *ast.GlobalRef:
		e.Emit(op.GLOBALN_SET, int32(t.Index))
	case *ast.ArrayAccess:
		e.Emit(op.ARRAYA_SET, 0)
	case *ast.PropertyAccess:
		e.Emit(op.PROP_SET, c.intern(t.Str, t.Name))
	case *ast.ArrayAppend:
		e.Emit(op.ARRAY_APPEND, 0)
	default:
		return errors.Internalf("%s is not assignable", target)
	}
	return nil
}

// compileArgs pushes args followed by nils up to count values.
func (c *Compiler) compileArgs(args []ast.Expr, count int, what string) error {
	if len(args) > count {
		return errors.Internalf("%s called with %d arguments, takes %d", what, len(args), count)
	}
	for _, arg := range args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	for i := len(args); i < count; i++ {
		c.e.Emit(op.NIL, 0)
	}
	return nil
}

func (c *Compiler) compileCall(node *ast.Call) error {
	fn := node.Func
	if fn == nil {
		return errors.Internalf("call of unresolved function %s", node.Name)
	}
	if err := c.compileArgs(node.Args, fn.ParamCount(), fn.Name); err != nil {
		return err
	}
	target := c.e.AddCall(bytecode.CallTarget{
		Kind:       bytecode.DirectCall,
		Script:     fn.Script,
		Name:       fn.Name,
		ParamCount: fn.ParamCount(),
	})
	c.e.SetOffset(node.Pos().Char)
	c.e.Emit(op.FUNC, target)
	return nil
}

func (c *Compiler) compileObjectCall(node *ast.ObjectCall) error {
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	if err := c.compileArgs(node.Args, op.MaxParams, node.QualifiedName()); err != nil {
		return err
	}
	target := c.e.AddCall(bytecode.CallTarget{
		Kind:       bytecode.ObjectCall,
		Namespace:  node.Namespace,
		Name:       node.Name,
		ParamCount: op.MaxParams,
		Str:        int(c.intern(node.Str, node.QualifiedName())),
	})
	code := op.CALL
	if node.Failsafe {
		code = op.CALLFS
	}
	c.e.SetOffset(node.Pos().Char)
	c.e.Emit(code, target)
	return nil
}

// compileInherited calls the overridden function. Without one, the safe
// form still evaluates its arguments and yields nil.
func (c *Compiler) compileInherited(node *ast.Inherited) error {
	e := c.e
	fn := node.Func
	if fn == nil {
		if !node.Safe {
			return errors.Internalf("inherited call without a parent function")
		}
		for _, arg := range node.Args {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
		}
		e.Emit(op.STACK, int32(-len(node.Args)))
		e.Emit(op.NIL, 0)
		return nil
	}
	if err := c.compileArgs(node.Args, fn.ParamCount(), "inherited "+fn.Name); err != nil {
		return err
	}
	target := e.AddCall(bytecode.CallTarget{
		Kind:       bytecode.InheritedCall,
		Script:     fn.Script,
		Name:       fn.Name,
		ParamCount: fn.ParamCount(),
	})
	code := op.INHERITED
	if node.Safe {
		code = op.INHERITED_FS
	}
	e.SetOffset(node.Pos().Char)
	e.Emit(code, target)
	return nil
}

// compileSafeNav compiles a navigation chain whose nil checks all jump to
// its end, leaving the nil on the stack as the chain's value.
func (c *Compiler) compileSafeNav(node *ast.SafeNav) error {
	c.nav = append(c.nav, nil)
	err := c.compileExpr(node.X)
	n := len(c.nav) - 1
	sites := c.nav[n]
	c.nav = c.nav[:n]
	if err != nil {
		return err
	}
	if len(sites) > 0 {
		end := c.e.MarkHere()
		for _, site := range sites {
			c.e.Patch(site, end)
		}
	}
	return nil
}

func (c *Compiler) compileNilCheck(node *ast.NilCheck) error {
	if len(c.nav) == 0 {
		return errors.Internalf("nil check outside of a navigation chain")
	}
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	n := len(c.nav) - 1
	c.nav[n] = append(c.nav[n], c.e.EmitJump(op.JUMPNIL))
	return nil
}
