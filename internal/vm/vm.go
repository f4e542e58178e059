// Package vm executes token programs against a byte tape, one instruction
// per Step.
package vm

import (
	"nickandperla.net/bfi/internal/token"
)

// OutputWriter receives each emitted byte.
type OutputWriter func(b byte)

// InputReader supplies one byte per call. Returning an error (usually
// ErrNoInput) makes the reading instruction retry on the next step.
type InputReader func() (byte, error)

// ErrorHandler receives faults raised by Step.
type ErrorHandler func(f *Fault)

// Machine owns the tape, the data pointer and the program counter of one run.
type Machine struct {
	program      []token.Token
	tape         *Tape
	pc           int
	steps        int
	halt         *Fault // set by the first fatal fault
	breakpoints  bool
	outputWriter OutputWriter
	inputReader  InputReader
	errorHandler ErrorHandler
	tapeSize     int
}

// Option configures a Machine.
type Option func(*Machine)

// WithOutput sets the output collaborator.
func WithOutput(w OutputWriter) Option {
	return func(m *Machine) { m.outputWriter = w }
}

// WithInput sets the input collaborator.
func WithInput(r InputReader) Option {
	return func(m *Machine) { m.inputReader = r }
}

// WithErrorHandler routes Step faults to h instead of returning them.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Machine) { m.errorHandler = h }
}

// WithTape runs the program on an existing tape, keeping its cells and
// pointer.
func WithTape(t *Tape) Option {
	return func(m *Machine) { m.tape = t }
}

// WithTapeSize sets the number of cells of a freshly allocated tape.
func WithTapeSize(n int) Option {
	return func(m *Machine) { m.tapeSize = n }
}

// WithBreakpoints makes the breakpoint instruction pause execution.
func WithBreakpoints(enabled bool) Option {
	return func(m *Machine) { m.breakpoints = enabled }
}

// New creates a Machine positioned at the first instruction of program.
func New(program []token.Token, opts ...Option) *Machine {
	m := &Machine{
		program: program,
		inputReader: func() (byte, error) {
			return 0, ErrNoInput
		},
		outputWriter: func(byte) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tape == nil {
		m.tape = NewTape(m.tapeSize)
	}
	return m
}

// Program returns the instructions being run.
func (m *Machine) Program() []token.Token { return m.program }

// Tape returns the machine's tape.
func (m *Machine) Tape() *Tape { return m.tape }

// PC returns the index of the next instruction.
func (m *Machine) PC() int { return m.pc }

// Pointer returns the data pointer.
func (m *Machine) Pointer() int { return m.tape.pointer }

// Cell returns the value of a tape cell.
func (m *Machine) Cell(index int) byte { return m.tape.Cell(index) }

// Steps returns how many instructions Step has dispatched.
func (m *Machine) Steps() int { return m.steps }

// Finished reports whether PC has run off the end of the program.
func (m *Machine) Finished() bool {
	return m.halt == nil && m.pc >= len(m.program)
}

// Halted reports whether a fatal fault stopped the machine.
func (m *Machine) Halted() bool { return m.halt != nil }

// Err returns the fatal fault that halted the machine, if any.
func (m *Machine) Err() error {
	if m.halt == nil {
		return nil
	}
	return m.halt
}

// Current returns the instruction at PC.
func (m *Machine) Current() (token.Token, bool) {
	if m.pc < 0 || m.pc >= len(m.program) {
		return token.Token{}, false
	}
	return m.program[m.pc], true
}

// SetCell overwrites a tape cell between steps. value is clamped to 0–255.
func (m *Machine) SetCell(index, value int) error {
	return m.tape.Set(index, value)
}

// Reset rewinds the program and zeroes the tape.
func (m *Machine) Reset() {
	m.tape.Reset()
	m.pc = 0
	m.steps = 0
	m.halt = nil
}

// Step executes the instruction at PC. At the end of the program it does
// nothing and returns nil.
func (m *Machine) Step() error {
	if m.halt != nil {
		return m.raise(m.halt)
	}
	if m.pc >= len(m.program) {
		return nil
	}

	pc := m.pc
	t := m.program[pc]
	m.steps++

	next, f := m.dispatch(t.Kind, pc)
	m.pc = next
	if f == nil {
		return nil
	}
	f.PC = pc
	f.Offset = t.Offset
	if f.Kind == Fatal {
		m.halt = f
	}
	return m.raise(f)
}

// Execute performs one instruction outside the program flow; PC and the
// step count are untouched. Loop instructions are refused.
func (m *Machine) Execute(kind token.Kind) error {
	if kind.IsBracket() {
		return &Fault{Kind: Reported, Message: MsgDirectLoop, PC: -1, Offset: -1}
	}
	_, f := m.dispatch(kind, -1)
	if f != nil {
		f.PC = -1
		f.Offset = -1
		return f
	}
	return nil
}

func (m *Machine) raise(f *Fault) error {
	if m.errorHandler != nil {
		m.errorHandler(f)
		return nil
	}
	return f
}

// dispatch applies kind as if it sat at pc and returns the next PC.
func (m *Machine) dispatch(kind token.Kind, pc int) (int, *Fault) {
	switch kind {
	case token.Inc:
		m.tape.inc()
	case token.Dec:
		m.tape.dec()
	case token.Right:
		if !m.tape.right() {
			return pc + 1, &Fault{Kind: Reported, Message: MsgWrapRight}
		}
	case token.Left:
		if !m.tape.left() {
			return pc + 1, &Fault{Kind: Reported, Message: MsgWrapLeft}
		}
	case token.Out:
		m.outputWriter(m.tape.Current())
	case token.In:
		b, err := m.inputReader()
		if err != nil {
			return pc, &Fault{Kind: Retry, Message: MsgNoInput, Err: err}
		}
		m.tape.store(b)
	case token.LoopStart:
		if m.tape.Current() == 0 {
			next, ok := m.matchForward(pc)
			if !ok {
				return pc, &Fault{Kind: Fatal, Message: MsgSearchClose}
			}
			return next, nil
		}
	case token.LoopEnd:
		if m.tape.Current() != 0 {
			next, ok := m.matchBackward(pc)
			if !ok {
				return pc, &Fault{Kind: Fatal, Message: MsgSearchOpen}
			}
			return next, nil
		}
	case token.Breakpoint:
		if m.breakpoints {
			return pc + 1, &Fault{Kind: Pause, Message: MsgBreakpoint}
		}
	}
	return pc + 1, nil
}

// matchForward finds the ] closing the [ at pc and returns the index after it.
func (m *Machine) matchForward(pc int) (int, bool) {
	level := 0
	for i := pc + 1; i < len(m.program); i++ {
		switch m.program[i].Kind {
		case token.LoopStart:
			level++
		case token.LoopEnd:
			if level == 0 {
				return i + 1, true
			}
			level--
		}
	}
	return 0, false
}

// matchBackward finds the [ opening the ] at pc and returns the index after it.
func (m *Machine) matchBackward(pc int) (int, bool) {
	level := 0
	for i := pc - 1; i >= 0; i-- {
		switch m.program[i].Kind {
		case token.LoopEnd:
			level++
		case token.LoopStart:
			if level == 0 {
				return i + 1, true
			}
			level--
		}
	}
	return 0, false
}
