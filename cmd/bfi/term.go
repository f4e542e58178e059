package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Alt+key mappings: Alt+key sends ESC (0x1b) followed by the key byte
var altKeyMappings = map[byte]string{
	'b': "•", // Alt+b - breakpoint
	'8': "•", // Alt+8 - breakpoint (the • key on most layouts)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWriter translates \n to \r\n while the terminal is in raw mode.
type termWriter struct {
	w   io.Writer
	raw bool
}

func (t *termWriter) Write(p []byte) (int, error) {
	if !t.raw {
		return t.w.Write(p)
	}
	if _, err := t.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// enterRaw puts in into raw mode when it is a terminal and switches the
// writers to raw line endings. The returned function undoes both.
func enterRaw(in io.Reader, writers ...*termWriter) (restore func(), ok bool) {
	f, isFile := in.(*os.File)
	if !isFile || !term.IsTerminal(int(f.Fd())) {
		return func() {}, false
	}
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, false
	}
	for _, w := range writers {
		w.raw = true
	}
	return func() {
		for _, w := range writers {
			w.raw = false
		}
		term.Restore(fd, oldState)
	}, true
}

// readLineRaw reads a line in raw mode with Alt+key support
// Returns the line and whether EOF was encountered
func readLineRaw(in io.Reader, echo io.Writer) (string, bool) {
	var line []rune
	cursor := 0 // Position in line (for arrow key navigation)
	buf := make([]byte, 1)

	read := func() (byte, bool) {
		n, err := in.Read(buf)
		if err != nil || n == 0 {
			return 0, false
		}
		return buf[0], true
	}

	// Helper to redraw line from cursor position
	redrawFromCursor := func() {
		fmt.Fprint(echo, "\x1b[K")
		fmt.Fprint(echo, string(line[cursor:]))
		if cursor < len(line) {
			fmt.Fprintf(echo, "\x1b[%dD", len(line)-cursor)
		}
	}

	insert := func(runes []rune) {
		newLine := make([]rune, 0, len(line)+len(runes))
		newLine = append(newLine, line[:cursor]...)
		newLine = append(newLine, runes...)
		newLine = append(newLine, line[cursor:]...)
		line = newLine
		cursor += len(runes)
		fmt.Fprint(echo, string(runes))
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	for {
		b, ok := read()
		if !ok {
			return string(line), true
		}

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Fprint(echo, "^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter (CR or LF)
			fmt.Fprint(echo, "\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace (DEL or BS)
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Fprint(echo, "\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC - Alt+key or arrow key sequence
			next, ok := read()
			if !ok {
				continue
			}
			if next != '[' {
				if op, ok := altKeyMappings[next]; ok {
					insert([]rune(op))
				}
				continue
			}
			arrow, ok := read()
			if !ok {
				continue
			}
			switch arrow {
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					fmt.Fprint(echo, "\x1b[C")
				}
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					fmt.Fprint(echo, "\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				if tilde, ok := read(); ok && tilde == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Fprintf(echo, "\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Fprintf(echo, "\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Fprint(echo, "\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Fprintf(echo, "\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			if b >= 0x20 && b < 0x7f {
				insert([]rune{rune(b)})
			} else if b >= 0x80 {
				// UTF-8 multi-byte sequence - read remaining bytes
				utfBuf := []byte{b}
				numBytes := 0
				switch {
				case b&0xE0 == 0xC0:
					numBytes = 1
				case b&0xF0 == 0xE0:
					numBytes = 2
				case b&0xF8 == 0xF0:
					numBytes = 3
				}
				for i := 0; i < numBytes; i++ {
					c, ok := read()
					if !ok {
						break
					}
					utfBuf = append(utfBuf, c)
				}
				insert([]rune(string(utfBuf))[:1])
			}
		}
	}
}
