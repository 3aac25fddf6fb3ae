package compiler

import (
	"fmt"
	"sort"

	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/op"
)

// machine is a minimal stack interpreter used to check that generated
// code computes what the source says. Arrays are *[]any, maps map[any]any.
type machine struct {
	code    *bytecode.Code
	stack   []any
	fields  map[int32]any
	globals map[int32]any
	engine  map[string]func(args []any) any
	steps   int
}

func newMachine(code *bytecode.Code) *machine {
	return &machine{
		code:    code,
		fields:  map[int32]any{},
		globals: map[int32]any{},
		engine: map[string]func(args []any) any{
			"Double": func(args []any) any { return toInt(args[0]) * 2 },
		},
	}
}

func (m *machine) run(name string, args ...any) (any, error) {
	fn, ok := m.code.Function(name)
	if !ok {
		return nil, fmt.Errorf("no function %s", name)
	}
	return m.exec(fn, args)
}

func (m *machine) push(v any) {
	m.stack = append(m.stack, v)
}

func (m *machine) pop() any {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *machine) top() any {
	return m.stack[len(m.stack)-1]
}

func (m *machine) popN(n int) []any {
	args := make([]any, n)
	copy(args, m.stack[len(m.stack)-n:])
	m.stack = m.stack[:len(m.stack)-n]
	return args
}

func toInt(v any) int32 {
	switch v := v.(type) {
	case int32:
		return v
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case int32:
		return v != 0
	}
	return true
}

func sortedKeys(mp map[any]any) []any {
	keys := make([]any, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
	return keys
}

func (m *machine) exec(fn *bytecode.Function, args []any) (any, error) {
	params := make([]any, op.MaxParams)
	copy(params, args)
	vars := map[int32]any{}
	base := len(m.stack)
	ip := fn.Start()
	for {
		if m.steps++; m.steps > 100000 {
			return nil, fmt.Errorf("step limit exceeded")
		}
		ins := m.code.InstructionAt(ip)
		next := ip + 1
		switch ins.Op {
		case op.ERR:
			return nil, fmt.Errorf("%s", m.code.ErrorAt(int(ins.Operand)))
		case op.EOFN, op.EOF:
			return nil, fmt.Errorf("ran off the end of %s", fn.Name())
		case op.RETURN:
			v := m.pop()
			m.stack = m.stack[:base]
			return v, nil
		case op.INT:
			m.push(ins.Operand)
		case op.BOOL:
			m.push(ins.Operand != 0)
		case op.STRING:
			m.push(m.code.StringAt(int(ins.Operand)))
		case op.ID:
			m.push(uint32(ins.Operand))
		case op.NIL:
			m.push(nil)
		case op.ARRAY:
			elems := m.popN(int(ins.Operand))
			m.push(&elems)
		case op.MAP:
			pairs := m.popN(2 * int(ins.Operand))
			mp := map[any]any{}
			for i := 0; i < len(pairs); i += 2 {
				mp[pairs[i]] = pairs[i+1]
			}
			m.push(mp)
		case op.DUP:
			m.push(m.stack[len(m.stack)-1-int(ins.Operand)])
		case op.STACK:
			if ins.Operand > 0 {
				for i := int32(0); i < ins.Operand; i++ {
					m.push(nil)
				}
			} else {
				m.popN(int(-ins.Operand))
			}
		case op.PARN:
			m.push(params[ins.Operand])
		case op.PARN_SET:
			params[ins.Operand] = m.top()
		case op.VARN:
			m.push(vars[ins.Operand])
		case op.VARN_SET:
			vars[ins.Operand] = m.top()
		case op.LOCALN:
			m.push(m.fields[ins.Operand])
		case op.LOCALN_SET:
			m.fields[ins.Operand] = m.top()
		case op.GLOBALN:
			m.push(m.globals[ins.Operand])
		case op.GLOBALN_SET:
			m.globals[ins.Operand] = m.top()
		case op.ARRAYA:
			idx := toInt(m.pop())
			arr, ok := m.pop().(*[]any)
			if !ok || int(idx) >= len(*arr) {
				return nil, fmt.Errorf("bad array access at %d", ip)
			}
			m.push((*arr)[idx])
		case op.ARRAYA_SET:
			v := m.pop()
			idx := toInt(m.pop())
			arr := m.pop().(*[]any)
			(*arr)[idx] = v
			m.push(v)
		case op.ARRAY_APPEND:
			v := m.pop()
			arr := m.pop().(*[]any)
			*arr = append(*arr, v)
			m.push(v)
		case op.PROP:
			obj, ok := m.pop().(map[any]any)
			if !ok {
				return nil, fmt.Errorf("property access on non-map at %d", ip)
			}
			m.push(obj[m.code.StringAt(int(ins.Operand))])
		case op.PROP_SET:
			v := m.pop()
			obj := m.pop().(map[any]any)
			obj[m.code.StringAt(int(ins.Operand))] = v
			m.push(v)
		case op.NEG:
			m.push(-toInt(m.pop()))
		case op.NOT:
			m.push(!truthy(m.pop()))
		case op.BITNOT:
			m.push(^toInt(m.pop()))
		case op.EQ, op.NE, op.SEQ, op.SNE:
			b, a := m.pop(), m.pop()
			eq := a == b
			if ins.Op == op.NE || ins.Op == op.SNE {
				eq = !eq
			}
			m.push(eq)
		case op.CONCAT:
			b, a := m.pop(), m.pop()
			m.push(fmt.Sprint(a) + fmt.Sprint(b))
		case op.AND:
			b, a := m.pop(), m.pop()
			m.push(truthy(a) && truthy(b))
		case op.OR:
			b, a := m.pop(), m.pop()
			m.push(truthy(a) || truthy(b))
		case op.POW, op.DIV, op.MUL, op.MOD, op.SUB, op.SUM, op.LSHIFT, op.RSHIFT,
			op.LT, op.LE, op.GT, op.GE, op.BITAND, op.BITXOR, op.BITOR:
			b, a := toInt(m.pop()), toInt(m.pop())
			m.push(arith(ins.Op, a, b))
		case op.JUMP:
			next = ip + int(ins.Operand)
		case op.COND, op.CONDN:
			if truthy(m.pop()) == (ins.Op == op.COND) {
				next = ip + int(ins.Operand)
			}
		case op.JUMPAND:
			if !truthy(m.top()) {
				next = ip + int(ins.Operand)
			} else {
				m.pop()
			}
		case op.JUMPOR:
			if truthy(m.top()) {
				next = ip + int(ins.Operand)
			} else {
				m.pop()
			}
		case op.JUMPNOTNIL:
			if m.top() != nil {
				next = ip + int(ins.Operand)
			} else {
				m.pop()
			}
		case op.JUMPNIL:
			if m.top() == nil {
				next = ip + int(ins.Operand)
			}
		case op.FOREACH_NEXT:
			n := len(m.stack)
			arr := m.stack[n-2].(*[]any)
			i := toInt(m.stack[n-1])
			if int(i) < len(*arr) {
				vars[ins.Operand] = (*arr)[i]
				m.stack[n-1] = i + 1
				next = ip + 2
			}
		case op.FOREACH_MAP_NEXT:
			n := len(m.stack)
			mp := m.stack[n-3].(map[any]any)
			if m.stack[n-1] == nil {
				m.stack[n-1] = sortedKeys(mp)
			}
			keys := m.stack[n-1].([]any)
			i := toInt(m.stack[n-2])
			if int(i) < len(keys) {
				vars[ins.Operand] = keys[i]
				m.stack[n-2] = i + 1
				next = ip + 2
			}
		case op.FOREACH_MAP_VALUE:
			n := len(m.stack)
			mp := m.stack[n-3].(map[any]any)
			keys := m.stack[n-1].([]any)
			vars[ins.Operand] = mp[keys[toInt(m.stack[n-2])-1]]
		case op.FUNC, op.INHERITED, op.INHERITED_FS:
			target := m.code.CallAt(int(ins.Operand))
			args := m.popN(target.ParamCount)
			if target.Script == "" {
				impl, ok := m.engine[target.Name]
				if !ok {
					return nil, fmt.Errorf("no engine function %s", target.Name)
				}
				m.push(impl(args))
				break
			}
			callee, ok := m.code.Function(target.Name)
			if !ok {
				return nil, fmt.Errorf("no function %s", target.Name)
			}
			v, err := m.exec(callee, args)
			if err != nil {
				return nil, err
			}
			m.push(v)
		default:
			return nil, fmt.Errorf("unsupported instruction %s at %d", ins, ip)
		}
		ip = next
	}
}

func arith(code op.Code, a, b int32) any {
	switch code {
	case op.POW:
		r := int32(1)
		for i := int32(0); i < b; i++ {
			r *= a
		}
		return r
	case op.DIV:
		return a / b
	case op.MUL:
		return a * b
	case op.MOD:
		return a % b
	case op.SUB:
		return a - b
	case op.SUM:
		return a + b
	case op.LSHIFT:
		return a << b
	case op.RSHIFT:
		return a >> b
	case op.LT:
		return a < b
	case op.LE:
		return a <= b
	case op.GT:
		return a > b
	case op.GE:
		return a >= b
	case op.BITAND:
		return a & b
	case op.BITXOR:
		return a ^ b
	case op.BITOR:
		return a | b
	}
	panic("not arithmetic: " + code.String())
}
