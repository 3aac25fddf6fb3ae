package compiler

import (
	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/op"
)

// Label is an instruction index used as a jump destination.
type Label int

// JumpSite identifies an emitted jump whose operand is still to be patched.
type JumpSite struct {
	index int
}

// Index returns the instruction index of the jump.
func (s JumpSite) Index() int {
	return s.index
}

// Emitter appends instructions to a script's code segment while tracking
// the depth of the operand stack.
//
// Adjacent STACK instructions are merged, and a merge that cancels out
// removes the instruction. Merging never crosses a jump target: MarkHere
// sets a one-shot flag that keeps the next instruction separate.
type Emitter struct {
	instructions []bytecode.Instruction
	calls        []bytecode.CallTarget

	depth    int
	maxDepth int
	// jumpTarget is set when a label points at the end of the segment.
	jumpTarget bool
	// pending holds unpatched jump sites
	pending map[int]bool
	loops   []*loop
	offset  int

	// Set on an internal consistency failure
	failure error
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{pending: map[int]bool{}}
}

// SetOffset sets the source offset recorded on subsequent instructions.
func (e *Emitter) SetOffset(offset int) {
	e.offset = offset
}

// Depth returns the tracked stack depth.
func (e *Emitter) Depth() int {
	return e.depth
}

// MaxDepth returns the highest stack depth reached.
func (e *Emitter) MaxDepth() int {
	return e.maxDepth
}

// Len returns the number of instructions emitted so far.
func (e *Emitter) Len() int {
	return len(e.instructions)
}

// Instructions returns the emitted instructions. The slice is owned by the
// emitter.
func (e *Emitter) Instructions() []bytecode.Instruction {
	return e.instructions
}

// Calls returns the registered call targets.
func (e *Emitter) Calls() []bytecode.CallTarget {
	return e.calls
}

// Err returns the first internal consistency failure, if any.
func (e *Emitter) Err() error {
	return e.failure
}

func (e *Emitter) fail(format string, args ...any) {
	if e.failure == nil {
		e.failure = errors.Internalf(format, args...)
	}
}

// AddCall registers a call target and returns the operand referring to it.
func (e *Emitter) AddCall(target bytecode.CallTarget) int32 {
	e.calls = append(e.calls, target)
	return int32(len(e.calls) - 1)
}

// delta returns the stack effect of an instruction. For jumps it is the
// effect on the fall-through path.
func (e *Emitter) delta(code op.Code, operand int32) int {
	info := op.GetInfo(code)
	if info.Name == "" {
		e.fail("unknown opcode %d", code)
		return 0
	}
	if info.Kind != op.Variadic {
		return info.Delta
	}
	if d, ok := op.OperandDelta(code, operand); ok {
		return d
	}
	if operand < 0 || int(operand) >= len(e.calls) {
		e.fail("%s refers to unknown call target %d", code, operand)
		return 0
	}
	// arguments in, result out
	return 1 - e.calls[operand].ParamCount
}

func (e *Emitter) adjust(delta int) {
	e.depth += delta
	if e.depth < 0 {
		e.fail("stack underflow at instruction %d", len(e.instructions))
	}
	if e.depth > e.maxDepth {
		e.maxDepth = e.depth
	}
}

// Emit appends an instruction and returns its index. A STACK instruction
// that is merged into its predecessor returns the predecessor's index, or
// -1 if the merge cancelled both out.
func (e *Emitter) Emit(code op.Code, operand int32) int {
	e.adjust(e.delta(code, operand))
	if code == op.STACK {
		if operand == 0 {
			return -1
		}
		if n := len(e.instructions); n > 0 && !e.jumpTarget && e.instructions[n-1].Op == op.STACK {
			last := &e.instructions[n-1]
			last.Operand += operand
			if last.Operand == 0 {
				e.instructions = e.instructions[:n-1]
				return -1
			}
			return n - 1
		}
	}
	e.jumpTarget = false
	e.instructions = append(e.instructions, bytecode.Instruction{
		Op:      code,
		Operand: operand,
		Offset:  e.offset,
	})
	return len(e.instructions) - 1
}

// MarkHere returns the position of the next instruction as a jump
// destination.
func (e *Emitter) MarkHere() Label {
	e.jumpTarget = true
	return Label(len(e.instructions))
}

// EmitJump emits a jump with an unpatched operand.
func (e *Emitter) EmitJump(code op.Code) JumpSite {
	if !code.IsJump() {
		e.fail("%s is not a jump", code)
	}
	i := e.Emit(code, 0)
	e.pending[i] = true
	return JumpSite{index: i}
}

// EmitJumpTo emits a jump to an already known label, usually backwards.
func (e *Emitter) EmitJumpTo(code op.Code, target Label) {
	i := len(e.instructions)
	e.Emit(code, int32(int(target)-i))
}

// Patch resolves a jump site to the given label.
func (e *Emitter) Patch(site JumpSite, target Label) {
	if !e.pending[site.index] {
		e.fail("jump at %d patched twice or never emitted", site.index)
		return
	}
	delete(e.pending, site.index)
	e.instructions[site.index].Operand = int32(int(target) - site.index)
}

// PatchHere resolves a jump site to the next instruction.
func (e *Emitter) PatchHere(site JumpSite) {
	e.Patch(site, e.MarkHere())
}

// Retract removes a jump that is still the last instruction and has not
// been patched. It returns false if the jump cannot be removed.
func (e *Emitter) Retract(site JumpSite) bool {
	if !e.pending[site.index] || site.index != len(e.instructions)-1 {
		return false
	}
	delete(e.pending, site.index)
	code := e.instructions[site.index].Op
	e.instructions = e.instructions[:site.index]
	e.adjust(-e.delta(code, 0))
	return true
}

// Repatch points an already patched jump at a new label.
func (e *Emitter) Repatch(site JumpSite, target Label) {
	e.instructions[site.index].Operand = int32(int(target) - site.index)
}

// EndsWithReturn returns true if the last instruction is a RETURN that no
// jump lands after.
func (e *Emitter) EndsWithReturn() bool {
	n := len(e.instructions)
	return n > 0 && !e.jumpTarget && e.instructions[n-1].Op == op.RETURN
}

// Begin starts a function at stack depth zero.
func (e *Emitter) Begin() int {
	e.depth = 0
	e.maxDepth = 0
	e.loops = nil
	e.jumpTarget = false
	return len(e.instructions)
}

// Finish checks that the function left the stack balanced, closed all
// loops and patched all jumps.
func (e *Emitter) Finish() error {
	if e.failure != nil {
		return e.failure
	}
	if n := len(e.loops); n > 0 {
		e.loops = nil
		return errors.Internalf("%d loops left open", n)
	}
	if e.depth != 0 {
		return errors.Internalf("unbalanced stack: depth %d at end of function", e.depth)
	}
	if len(e.pending) > 0 {
		for i := range e.pending {
			return errors.Internalf("jump at %d was never patched", i)
		}
	}
	return nil
}

// Abandon discards open loops and pending jumps after a failed function.
func (e *Emitter) Abandon(start int) {
	e.instructions = e.instructions[:start]
	for i := range e.pending {
		if i >= start {
			delete(e.pending, i)
		}
	}
	e.loops = nil
	e.depth = 0
	e.jumpTarget = false
}
