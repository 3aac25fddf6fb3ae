package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors and warnings with optional colors.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError    = color.New(color.FgHiRed, color.Bold)
	colorWarning  = color.New(color.FgHiYellow, color.Bold)
	colorCode     = color.New(color.FgHiBlack)
	colorLocation = color.New(color.FgCyan)
	colorPipe     = color.New(color.FgHiBlack)
	colorCaret    = color.New(color.FgHiRed)
	colorNote     = color.New(color.FgHiBlue)
)

// FormattedError represents a diagnostic ready for display.
type FormattedError struct {
	Code     ErrorCode
	Kind     string // "syntax error", "warning", ...
	Message  string
	Location SourceLocation
	Context  string // enclosing function and script
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	c.EnableColor()
	return c.Sprint(s)
}

// Format formats a single diagnostic.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the diagnostic with an optional prefix like "1/5".
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	label := err.Kind
	if label == "" {
		label = "error"
	}
	headColor := colorError
	if label == "warning" {
		headColor = colorWarning
	}
	b.WriteString(f.paint(headColor, label))
	if err.Code != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", err.Code)))
	} else if prefix != "" {
		b.WriteString(f.paint(colorCode, fmt.Sprintf("[%s]", prefix)))
	}
	b.WriteString(": ")
	b.WriteString(err.Message)
	b.WriteString("\n")

	loc := err.Location
	if loc.IsZero() && loc.Filename == "" {
		return b.String()
	}
	width := len(fmt.Sprintf("%d", loc.Line))
	if width < 2 {
		width = 2
	}
	padding := strings.Repeat(" ", width)

	b.WriteString(padding)
	b.WriteString(f.paint(colorLocation, "--> "+loc.String()))
	if err.Context != "" {
		b.WriteString(" ")
		b.WriteString(f.paint(colorNote, err.Context))
	}
	b.WriteString("\n")

	if loc.Source == "" {
		return b.String()
	}
	b.WriteString(padding)
	b.WriteString(f.paint(colorPipe, " |\n"))
	b.WriteString(f.paint(colorPipe, fmt.Sprintf("%*d | ", width, loc.Line)))
	b.WriteString(loc.Source)
	b.WriteString("\n")
	if loc.Column > 0 {
		b.WriteString(padding)
		b.WriteString(f.paint(colorPipe, " | "))
		b.WriteString(caretPadding(loc.Source, loc.Column))
		b.WriteString(f.paint(colorCaret, "^"))
		b.WriteString("\n")
	}
	return b.String()
}

// caretPadding keeps tabs from the source line so the caret lines up.
func caretPadding(source string, column int) string {
	var b strings.Builder
	for i := 0; i < column-1; i++ {
		if i < len(source) && source[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// FormatMultiple formats multiple diagnostics with consistent styling.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}

	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, total)))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorError, fmt.Sprintf("found %d errors", total)))
	b.WriteString("\n")
	return b.String()
}
