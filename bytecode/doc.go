// Package bytecode provides the immutable output of compiling an Aul script.
//
// A script compiles into a single code segment: one flat instruction array
// shared by all of the script's functions. Each function occupies a
// contiguous range of that array ending with an EOFN instruction, and the
// segment as a whole ends with EOF.
//
// # Key Types
//
//   - [Code]: the compiled segment of one script
//   - [Instruction]: an opcode, its integer operand and a source offset
//   - [Function]: the range of the segment belonging to one function
//   - [CallTarget]: the callee a FUNC, CALL or INHERITED instruction refers to
//   - [StringTable]: reference-counted storage for string literals and names
//
// # Immutability
//
// Code and Function are immutable after construction. Constructors copy
// their input slices, and access is index based:
//
//	code.InstructionAt(0)
//	code.CallAt(i)
//	code.FunctionAt(j)
//
// The StringTable is the exception: the lexer and the compiler intern into
// it while a script compiles. Code keeps a snapshot of its contents.
//
// # Usage
//
//	code, err := compiler.Compile(script)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Instructions: %d\n", code.InstructionCount())
//	if fn, ok := code.Function("Initialize"); ok {
//	    fmt.Printf("Initialize: %d..%d\n", fn.Start(), fn.End())
//	}
package bytecode
