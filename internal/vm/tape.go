package vm

import "fmt"

// DefaultTapeSize is the number of cells allocated for a run.
const DefaultTapeSize = 32000

// Tape is the machine's byte memory and its data pointer.
type Tape struct {
	cells   []byte
	pointer int
}

// NewTape allocates a zeroed tape of size cells. A non-positive size uses
// DefaultTapeSize.
func NewTape(size int) *Tape {
	if size <= 0 {
		size = DefaultTapeSize
	}
	return &Tape{cells: make([]byte, size)}
}

// Len returns the number of cells.
func (t *Tape) Len() int { return len(t.cells) }

// Pointer returns the data pointer.
func (t *Tape) Pointer() int { return t.pointer }

// Current returns the value under the data pointer.
func (t *Tape) Current() byte { return t.cells[t.pointer] }

// Cell returns the value at index, or 0 outside the tape.
func (t *Tape) Cell(index int) byte {
	if index < 0 || index >= len(t.cells) {
		return 0
	}
	return t.cells[index]
}

// Cells returns a copy of the cells in [from, to), clipped to the tape.
func (t *Tape) Cells(from, to int) []byte {
	if from < 0 {
		from = 0
	}
	if to > len(t.cells) {
		to = len(t.cells)
	}
	if from >= to {
		return nil
	}
	out := make([]byte, to-from)
	copy(out, t.cells[from:to])
	return out
}

// Set writes value at index, clamping it into 0–255.
func (t *Tape) Set(index, value int) error {
	if index < 0 || index >= len(t.cells) {
		return fmt.Errorf("cell %d outside tape of %d cells", index, len(t.cells))
	}
	switch {
	case value < 0:
		value = 0
	case value > 255:
		value = 255
	}
	t.cells[index] = byte(value)
	return nil
}

// Reset zeroes every cell and rewinds the pointer.
func (t *Tape) Reset() {
	clear(t.cells)
	t.pointer = 0
}

func (t *Tape) inc()         { t.cells[t.pointer]++ }
func (t *Tape) dec()         { t.cells[t.pointer]-- }
func (t *Tape) store(b byte) { t.cells[t.pointer] = b }

// left moves the pointer down; it refuses to go below zero.
func (t *Tape) left() bool {
	if t.pointer == 0 {
		return false
	}
	t.pointer--
	return true
}

// right moves the pointer up; it refuses to leave the tape.
func (t *Tape) right() bool {
	if t.pointer >= len(t.cells)-1 {
		return false
	}
	t.pointer++
	return true
}
