package bfi

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"

	"nickandperla.net/bfi/internal/vm"
)

// FormatWindow renders width cells around the data pointer: an index row,
// a value row and a caret under the current cell. With ascii, printable
// values are shown as characters.
func FormatWindow(t *vm.Tape, width int, ascii bool) string {
	if width <= 0 {
		width = 10
	}
	if width > t.Len() {
		width = t.Len()
	}
	ptr := t.Pointer()
	start := 0
	switch {
	case ptr < width/2:
		start = 0
	case ptr > t.Len()-width:
		start = t.Len() - width
	default:
		start = ptr - width/2
	}

	var idx, val strings.Builder
	for i := start; i < start+width; i++ {
		fmt.Fprintf(&idx, "%6d", i)
		v := t.Cell(i)
		if r := charmap.ISO8859_1.DecodeByte(v); ascii && unicode.IsPrint(r) && r != ' ' {
			fmt.Fprintf(&val, "%6c", r)
		} else {
			fmt.Fprintf(&val, "%6d", v)
		}
	}
	caret := strings.Repeat(" ", (ptr-start)*6+5) + "^"
	return idx.String() + "\n" + val.String() + "\n" + caret + "\n"
}
