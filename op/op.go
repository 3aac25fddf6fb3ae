// Package op defines the opcodes emitted by the Aul compiler and the static
// operator table that drives expression parsing.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

// MaxParams is the number of parameter slots every function call frame
// carries. Object calls always pass exactly this many arguments.
const MaxParams = 10

const (
	Invalid Code = 0

	// Control
	ERR    Code = 1 // always fails at runtime; operand indexes Code.Errors
	EOFN   Code = 2 // end of function
	EOF    Code = 3 // end of script
	RETURN Code = 4

	// Constants
	INT    Code = 10
	BOOL   Code = 11
	STRING Code = 12
	ID     Code = 13
	NIL    Code = 14
	ARRAY  Code = 15
	MAP    Code = 16

	// Stack
	DUP   Code = 20 // push a copy of the value operand slots below the top
	STACK Code = 21 // adjust stack by operand: push nils or drop values

	// Variables
	PARN        Code = 30
	PARN_SET    Code = 31
	VARN        Code = 32
	VARN_SET    Code = 33
	LOCALN      Code = 34
	LOCALN_SET  Code = 35
	GLOBALN     Code = 36
	GLOBALN_SET Code = 37

	// Containers
	ARRAYA       Code = 40
	ARRAYA_SET   Code = 41
	ARRAY_APPEND Code = 42
	PROP         Code = 43
	PROP_SET     Code = 44

	// Unary operators
	NEG    Code = 50
	NOT    Code = 51
	BITNOT Code = 52

	// Binary operators
	POW    Code = 60
	DIV    Code = 61
	MUL    Code = 62
	MOD    Code = 63
	SUB    Code = 64
	SUM    Code = 65
	LSHIFT Code = 66
	RSHIFT Code = 67
	LT     Code = 68
	LE     Code = 69
	GT     Code = 70
	GE     Code = 71
	CONCAT Code = 72
	EQ     Code = 73
	NE     Code = 74
	SEQ    Code = 75
	SNE    Code = 76
	BITAND Code = 77
	BITXOR Code = 78
	BITOR  Code = 79
	AND    Code = 80
	OR     Code = 81

	// Jumps. The operand is the displacement relative to the jump itself.
	JUMP       Code = 90 // unconditional
	JUMPAND    Code = 91 // jump keeping top if falsy, else pop
	JUMPOR     Code = 92 // jump keeping top if truthy, else pop
	JUMPNOTNIL Code = 93 // jump keeping top if not nil, else pop
	JUMPNIL    Code = 94 // jump keeping top if nil
	COND       Code = 95 // pop, jump if truthy
	CONDN      Code = 96 // pop, jump if falsy

	// Iteration. FOREACH_NEXT skips the following instruction while
	// elements remain.
	FOREACH_NEXT      Code = 100
	FOREACH_MAP_NEXT  Code = 101
	FOREACH_MAP_VALUE Code = 102

	// Calls
	FUNC         Code = 110 // direct call; operand indexes Code.Calls
	CALL         Code = 111 // object call; operand indexes Code.Calls
	CALLFS       Code = 112 // failsafe object call
	INHERITED    Code = 113
	INHERITED_FS Code = 114
)

// Kind classifies how an opcode's operand and stack effect are interpreted.
type Kind int

const (
	// Fixed opcodes have a constant stack delta.
	Fixed Kind = iota
	// Jump opcodes carry a relative displacement. Delta is the effect on
	// the fall-through path.
	Jump
	// Variadic opcodes have a delta that depends on the operand or on the
	// call target the operand refers to.
	Variadic
)

// Info contains information about an opcode.
type Info struct {
	Code  Code
	Name  string
	Delta int
	Kind  Kind
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op    Code
		name  string
		delta int
		kind  Kind
	}
	ops := []opInfo{
		{ERR, "ERR", 0, Fixed},
		{EOFN, "EOFN", 0, Fixed},
		{EOF, "EOF", 0, Fixed},
		{RETURN, "RETURN", -1, Fixed},
		{INT, "INT", 1, Fixed},
		{BOOL, "BOOL", 1, Fixed},
		{STRING, "STRING", 1, Fixed},
		{ID, "ID", 1, Fixed},
		{NIL, "NIL", 1, Fixed},
		{ARRAY, "ARRAY", 0, Variadic},
		{MAP, "MAP", 0, Variadic},
		{DUP, "DUP", 1, Fixed},
		{STACK, "STACK", 0, Variadic},
		{PARN, "PARN", 1, Fixed},
		{PARN_SET, "PARN_SET", 0, Fixed},
		{VARN, "VARN", 1, Fixed},
		{VARN_SET, "VARN_SET", 0, Fixed},
		{LOCALN, "LOCALN", 1, Fixed},
		{LOCALN_SET, "LOCALN_SET", 0, Fixed},
		{GLOBALN, "GLOBALN", 1, Fixed},
		{GLOBALN_SET, "GLOBALN_SET", 0, Fixed},
		{ARRAYA, "ARRAYA", -1, Fixed},
		{ARRAYA_SET, "ARRAYA_SET", -2, Fixed},
		{ARRAY_APPEND, "ARRAY_APPEND", -1, Fixed},
		{PROP, "PROP", 0, Fixed},
		{PROP_SET, "PROP_SET", -1, Fixed},
		{NEG, "NEG", 0, Fixed},
		{NOT, "NOT", 0, Fixed},
		{BITNOT, "BITNOT", 0, Fixed},
		{POW, "POW", -1, Fixed},
		{DIV, "DIV", -1, Fixed},
		{MUL, "MUL", -1, Fixed},
		{MOD, "MOD", -1, Fixed},
		{SUB, "SUB", -1, Fixed},
		{SUM, "SUM", -1, Fixed},
		{LSHIFT, "LSHIFT", -1, Fixed},
		{RSHIFT, "RSHIFT", -1, Fixed},
		{LT, "LT", -1, Fixed},
		{LE, "LE", -1, Fixed},
		{GT, "GT", -1, Fixed},
		{GE, "GE", -1, Fixed},
		{CONCAT, "CONCAT", -1, Fixed},
		{EQ, "EQ", -1, Fixed},
		{NE, "NE", -1, Fixed},
		{SEQ, "SEQ", -1, Fixed},
		{SNE, "SNE", -1, Fixed},
		{BITAND, "BITAND", -1, Fixed},
		{BITXOR, "BITXOR", -1, Fixed},
		{BITOR, "BITOR", -1, Fixed},
		{AND, "AND", -1, Fixed},
		{OR, "OR", -1, Fixed},
		{JUMP, "JUMP", 0, Jump},
		{JUMPAND, "JUMPAND", -1, Jump},
		{JUMPOR, "JUMPOR", -1, Jump},
		{JUMPNOTNIL, "JUMPNOTNIL", -1, Jump},
		{JUMPNIL, "JUMPNIL", 0, Jump},
		{COND, "COND", -1, Jump},
		{CONDN, "CONDN", -1, Jump},
		{FOREACH_NEXT, "FOREACH_NEXT", 0, Fixed},
		{FOREACH_MAP_NEXT, "FOREACH_MAP_NEXT", 0, Fixed},
		{FOREACH_MAP_VALUE, "FOREACH_MAP_VALUE", 0, Fixed},
		{FUNC, "FUNC", 0, Variadic},
		{CALL, "CALL", 0, Variadic},
		{CALLFS, "CALLFS", 0, Variadic},
		{INHERITED, "INHERITED", 0, Variadic},
		{INHERITED_FS, "INHERITED_FS", 0, Variadic},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:  o.op,
			Name:  o.name,
			Delta: o.delta,
			Kind:  o.kind,
		}
	}
}

// GetInfo returns information about the given opcode. Codes outside the
// table yield a zero Info.
func GetInfo(code Code) Info {
	if int(code) >= len(infos) {
		return Info{}
	}
	return infos[code]
}

func (c Code) String() string {
	if int(c) >= len(infos) {
		return "UNKNOWN"
	}
	if name := infos[c].Name; name != "" {
		return name
	}
	return "INVALID"
}

// IsJump returns true if the opcode's operand is a relative displacement.
func (c Code) IsJump() bool {
	return GetInfo(c).Kind == Jump
}

// OperandDelta returns the stack delta of variadic opcodes whose effect is
// determined by the operand alone. Calls are resolved by the emitter since
// their delta depends on the call target.
func OperandDelta(code Code, operand int32) (int, bool) {
	switch code {
	case ARRAY:
		return 1 - int(operand), true
	case MAP:
		return 1 - 2*int(operand), true
	case STACK:
		return int(operand), true
	case CALL, CALLFS:
		// target object and MaxParams arguments in, result out
		return -MaxParams, true
	}
	return 0, false
}
