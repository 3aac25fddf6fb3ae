package bytecode

// Stats contains statistics about a compiled code segment.
type Stats struct {
	// InstructionCount is the total number of instructions, end markers
	// included.
	InstructionCount int

	// StringCount is the number of interned strings.
	StringCount int

	// CallCount is the number of distinct call sites.
	CallCount int

	// FunctionCount is the number of compiled functions.
	FunctionCount int

	// ErroredCount is the number of functions that failed to compile.
	ErroredCount int

	// SourceBytes is the size of the original source code in bytes.
	SourceBytes int
}
