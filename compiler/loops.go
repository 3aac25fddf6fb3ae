package compiler

import (
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/op"
)

type loop struct {
	// stack depth outside the loop body
	depth     int
	breaks    []JumpSite
	continues []JumpSite
}

// PushLoop opens a loop at the current stack depth. Values the loop keeps
// on the stack, like a for-each cursor, must be pushed before.
func (e *Emitter) PushLoop() {
	e.loops = append(e.loops, &loop{depth: e.depth})
}

// InLoop returns true if a loop is open.
func (e *Emitter) InLoop() bool {
	return len(e.loops) > 0
}

// Break emits a jump to the end of the innermost loop.
func (e *Emitter) Break() error {
	l, err := e.innermost("break")
	if err != nil {
		return err
	}
	l.breaks = append(l.breaks, e.leave(l))
	return nil
}

// Continue emits a jump to the next iteration of the innermost loop.
func (e *Emitter) Continue() error {
	l, err := e.innermost("continue")
	if err != nil {
		return err
	}
	l.continues = append(l.continues, e.leave(l))
	return nil
}

func (e *Emitter) innermost(keyword string) (*loop, error) {
	if len(e.loops) == 0 {
		return nil, errors.Internalf("%s outside of a loop", keyword)
	}
	return e.loops[len(e.loops)-1], nil
}

// leave drops whatever the body pushed and jumps. The code after the jump
// is unreachable but still compiled at the depth it had before.
func (e *Emitter) leave(l *loop) JumpSite {
	saved := e.depth
	if extra := e.depth - l.depth; extra != 0 {
		e.Emit(op.STACK, int32(-extra))
	}
	site := e.EmitJump(op.JUMP)
	e.depth = saved
	return site
}

// PopLoop closes the innermost loop. Continues go to continueTo and
// breaks to the next instruction.
func (e *Emitter) PopLoop(continueTo Label) {
	if len(e.loops) == 0 {
		e.fail("no loop to close")
		return
	}
	l := e.loops[len(e.loops)-1]
	e.loops = e.loops[:len(e.loops)-1]
	for _, site := range l.continues {
		e.Patch(site, continueTo)
	}
	if len(l.breaks) > 0 {
		end := e.MarkHere()
		for _, site := range l.breaks {
			e.Patch(site, end)
		}
	}
	if e.depth != l.depth {
		e.fail("loop body changed stack depth from %d to %d", l.depth, e.depth)
	}
}
