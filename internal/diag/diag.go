// Package diag renders source-located error messages.
package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	red   = "\x1b[1;31m"
	reset = "\x1b[1;0m"
)

// Location is the line of source a span falls on.
type Location struct {
	Line   int    // 1-based line number
	Column int    // characters from the preceding newline (or 0) to span
	Text   string // the line's text, without the newline
}

// Locate finds the line containing span.
func Locate(source string, span int) Location {
	lineIdx := 0
	lastNewline := 0
	for i := 0; i < len(source) && i < span; i++ {
		if source[i] == '\n' {
			lineIdx++
			lastNewline = i
		}
	}

	lines := strings.Split(source, "\n")
	text := ""
	if lineIdx < len(lines) {
		text = lines[lineIdx]
	}
	// Count characters, not bytes, so the caret lines up on screen.
	column := span - lastNewline
	if span >= 0 && span <= len(source) {
		column = utf8.RuneCountInString(source[lastNewline:span])
	}
	return Location{
		Line:   lineIdx + 1,
		Column: column,
		Text:   text,
	}
}

// Render formats a diagnostic:
//
//	error: <message>
//	<line> | <source line>
//	<spaces>^
//
// When color is set the first line and the caret are wrapped in ANSI red.
func Render(source, message string, span int, color bool) string {
	loc := Locate(source, span)
	prefix := strconv.Itoa(loc.Line) + " | "
	indent := len(prefix) + loc.Column
	if indent < 0 {
		indent = 0
	}

	var sb strings.Builder
	if color {
		fmt.Fprintf(&sb, "%serror: %s%s\n", red, message, reset)
	} else {
		fmt.Fprintf(&sb, "error: %s\n", message)
	}
	fmt.Fprintf(&sb, "%s%s\n", prefix, loc.Text)
	sb.WriteString(strings.Repeat(" ", indent))
	if color {
		fmt.Fprintf(&sb, "%s^%s\n", red, reset)
	} else {
		sb.WriteString("^\n")
	}
	return sb.String()
}

// Write renders a diagnostic to w.
func Write(w io.Writer, source, message string, span int, color bool) error {
	_, err := io.WriteString(w, Render(source, message, span, color))
	return err
}
