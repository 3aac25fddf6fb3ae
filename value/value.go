// Package value describes the static types the compiler reasons about and
// the typed constants it can fold at compile time.
package value

import (
	"fmt"
	"strconv"
)

// Type is the semantic type of an operand, operator result or constant.
type Type int

const (
	Any Type = iota
	Nil
	Int
	Bool
	ID
	String
	Array
	Map
	Object
	// Ref marks an operand that must be assignable (an lvalue).
	Ref
)

var typeNames = map[Type]string{
	Any:    "any",
	Nil:    "nil",
	Int:    "int",
	Bool:   "bool",
	ID:     "id",
	String: "string",
	Array:  "array",
	Map:    "map",
	Object: "object",
	Ref:    "reference",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// LookupType maps a parameter type annotation to its Type.
func LookupType(name string) (Type, bool) {
	switch name {
	case "any":
		return Any, true
	case "int":
		return Int, true
	case "bool":
		return Bool, true
	case "id":
		return ID, true
	case "string":
		return String, true
	case "array":
		return Array, true
	case "map":
		return Map, true
	case "object":
		return Object, true
	}
	return Any, false
}

// Value is a compile-time constant.
type Value struct {
	Type Type
	Int  int32
	Bool bool
	Str  string
	ID   uint32
}

func NewInt(i int32) Value     { return Value{Type: Int, Int: i} }
func NewBool(b bool) Value     { return Value{Type: Bool, Bool: b} }
func NewString(s string) Value { return Value{Type: String, Str: s} }
func NewID(id uint32) Value    { return Value{Type: ID, ID: id} }

// NilValue is the nil constant.
var NilValue = Value{Type: Nil}

func (v Value) String() string {
	switch v.Type {
	case Nil:
		return "nil"
	case Int:
		return strconv.Itoa(int(v.Int))
	case Bool:
		return strconv.FormatBool(v.Bool)
	case String:
		return strconv.Quote(v.Str)
	case ID:
		return UnpackID(v.ID)
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}

// PackID packs a four character definition id into a big-endian uint32.
func PackID(s string) uint32 {
	var id uint32
	for i := 0; i < 4; i++ {
		id <<= 8
		if i < len(s) {
			id |= uint32(s[i])
		}
	}
	return id
}

// UnpackID reverses PackID.
func UnpackID(id uint32) string {
	b := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	return string(b)
}

// LooksLikeID returns true if s has the shape of a packed definition id:
// four characters from [A-Z0-9_], the first an uppercase letter.
func LooksLikeID(s string) bool {
	if len(s) != 4 {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < 4; i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}
