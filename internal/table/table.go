// Package table renders bordered text tables. Cell widths ignore ANSI
// color sequences so colored cells stay aligned.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment controls how a cell is padded to its column width.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table accumulates a header and rows and renders them to a writer.
type Table struct {
	w           io.Writer
	header      []string
	columnAlign []Alignment
	headerAlign []Alignment
	rows        [][]string
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets the alignment of body cells per column.
func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

// WithHeaderAlignment sets the alignment of header cells per column.
func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

// WithRows appends rows.
func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append appends one row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func width(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}

func (t *Table) columns() int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func alignment(aligns []Alignment, i int) Alignment {
	if i < len(aligns) {
		return aligns[i]
	}
	return AlignLeft
}

func pad(s string, w int, align Alignment) string {
	gap := w - width(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}

// Render writes the table.
func (t *Table) Render() {
	n := t.columns()
	if n == 0 {
		return
	}
	widths := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
			if w := width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}

	var b strings.Builder
	border := func() {
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteString("+")
		}
		b.WriteString("\n")
	}
	line := func(row []string, aligns []Alignment) {
		b.WriteString("|")
		for i, w := range widths {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(" ")
			b.WriteString(pad(cell, w, alignment(aligns, i)))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	border()
	if len(t.header) > 0 {
		line(t.header, t.headerAlign)
		border()
	}
	for _, row := range t.rows {
		line(row, t.columnAlign)
	}
	if len(t.rows) > 0 {
		border()
	}
	fmt.Fprint(t.w, b.String())
}
