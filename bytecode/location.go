package bytecode

import "fmt"

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// locate converts a byte offset into a line and column.
func locate(source string, offset int) SourceLocation {
	if offset < 0 || offset > len(source) {
		return SourceLocation{}
	}
	loc := SourceLocation{Line: 1, Column: 1}
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			loc.Line++
			loc.Column = 1
		} else {
			loc.Column++
		}
	}
	return loc
}
