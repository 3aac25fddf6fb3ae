package op

import "github.com/aulscript/aul/value"

// Operator describes one entry of the operator table.
type Operator struct {
	// Name is the operator's source text, e.g. "+=" or "eq".
	Name string
	// Priority controls binding; higher binds tighter.
	Priority int
	// RightAssoc makes chains of equal priority group to the right.
	RightAssoc bool
	// Postfix is set for every operator that follows its first operand,
	// which includes all binary operators.
	Postfix bool
	// NoSecondOperand marks unary operators.
	NoSecondOperand bool
	Result          value.Type
	Param1          value.Type
	Param2          value.Type
	// Code is the opcode the operator lowers to. Invalid means the operator
	// is lowered structurally (assignment, unary plus).
	Code Code
}

// Changer returns true if the operator assigns to its first operand.
func (o *Operator) Changer() bool {
	return o.Param1 == value.Ref
}

// Alpha returns true for operators spelled with letters, such as "eq".
func (o *Operator) Alpha() bool {
	c := o.Name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Operators is the operator table. For names with both a prefix and a
// postfix form, the prefix entry comes first.
var Operators = []Operator{
	// prefix
	{"++", 16, false, false, true, value.Int, value.Ref, value.Any, SUM},
	{"--", 16, false, false, true, value.Int, value.Ref, value.Any, SUB},
	{"~", 16, false, false, true, value.Int, value.Int, value.Any, BITNOT},
	{"!", 16, false, false, true, value.Bool, value.Bool, value.Any, NOT},
	{"+", 16, false, false, true, value.Int, value.Int, value.Any, Invalid},
	{"-", 16, false, false, true, value.Int, value.Int, value.Any, NEG},

	// postfix without second operand
	{"++", 17, false, true, true, value.Int, value.Ref, value.Any, SUM},
	{"--", 17, false, true, true, value.Int, value.Ref, value.Any, SUB},

	// binary
	{"**", 15, true, true, false, value.Int, value.Int, value.Int, POW},
	{"/", 14, false, true, false, value.Int, value.Int, value.Int, DIV},
	{"*", 14, false, true, false, value.Int, value.Int, value.Int, MUL},
	{"%", 14, false, true, false, value.Int, value.Int, value.Int, MOD},
	{"-", 13, false, true, false, value.Int, value.Int, value.Int, SUB},
	{"+", 13, false, true, false, value.Int, value.Int, value.Int, SUM},
	{"<<", 12, false, true, false, value.Int, value.Int, value.Int, LSHIFT},
	{">>", 12, false, true, false, value.Int, value.Int, value.Int, RSHIFT},
	{"<", 11, false, true, false, value.Bool, value.Int, value.Int, LT},
	{"<=", 11, false, true, false, value.Bool, value.Int, value.Int, LE},
	{">", 11, false, true, false, value.Bool, value.Int, value.Int, GT},
	{">=", 11, false, true, false, value.Bool, value.Int, value.Int, GE},
	{"..", 10, false, true, false, value.String, value.Any, value.Any, CONCAT},
	{"==", 9, false, true, false, value.Bool, value.Any, value.Any, EQ},
	{"!=", 9, false, true, false, value.Bool, value.Any, value.Any, NE},
	{"S=", 9, false, true, false, value.Bool, value.String, value.String, SEQ},
	{"eq", 9, false, true, false, value.Bool, value.String, value.String, SEQ},
	{"ne", 9, false, true, false, value.Bool, value.String, value.String, SNE},
	{"&", 8, false, true, false, value.Int, value.Int, value.Int, BITAND},
	{"^", 6, false, true, false, value.Int, value.Int, value.Int, BITXOR},
	{"|", 6, false, true, false, value.Int, value.Int, value.Int, BITOR},
	{"&&", 5, false, true, false, value.Bool, value.Bool, value.Bool, AND},
	{"||", 4, false, true, false, value.Bool, value.Bool, value.Bool, OR},
	{"??", 3, false, true, false, value.Any, value.Any, value.Any, JUMPNOTNIL},

	// assignment
	{"**=", 2, true, true, false, value.Int, value.Ref, value.Int, POW},
	{"*=", 2, true, true, false, value.Int, value.Ref, value.Int, MUL},
	{"/=", 2, true, true, false, value.Int, value.Ref, value.Int, DIV},
	{"%=", 2, true, true, false, value.Int, value.Ref, value.Int, MOD},
	{"+=", 2, true, true, false, value.Int, value.Ref, value.Int, SUM},
	{"-=", 2, true, true, false, value.Int, value.Ref, value.Int, SUB},
	{"<<=", 2, true, true, false, value.Int, value.Ref, value.Int, LSHIFT},
	{">>=", 2, true, true, false, value.Int, value.Ref, value.Int, RSHIFT},
	{"..=", 2, true, true, false, value.String, value.Ref, value.Any, CONCAT},
	{"&=", 2, true, true, false, value.Int, value.Ref, value.Int, BITAND},
	{"|=", 2, true, true, false, value.Int, value.Ref, value.Int, BITOR},
	{"^=", 2, true, true, false, value.Int, value.Ref, value.Int, BITXOR},
	{"??=", 2, true, true, false, value.Any, value.Ref, value.Any, JUMPNOTNIL},
	{"=", 2, true, true, false, value.Any, value.Ref, value.Any, Invalid},
}

// MaxOperatorLen is the length of the longest operator name.
const MaxOperatorLen = 3

// Index returns the first table index for the given operator name, or -1.
func Index(name string) int {
	for i := range Operators {
		if Operators[i].Name == name {
			return i
		}
	}
	return -1
}

// LookupPrefix returns the prefix form of the operator at index i, if any.
func LookupPrefix(i int) (*Operator, bool) {
	name := Operators[i].Name
	for j := range Operators {
		o := &Operators[j]
		if o.Name == name && !o.Postfix {
			return o, true
		}
	}
	return nil, false
}

// LookupPostfix returns the postfix or binary form of the operator at index
// i. Because postfix entries follow prefix ones, the last match wins.
func LookupPostfix(i int) (*Operator, bool) {
	name := Operators[i].Name
	var found *Operator
	for j := range Operators {
		o := &Operators[j]
		if o.Name == name && o.Postfix {
			found = o
		}
	}
	return found, found != nil
}
