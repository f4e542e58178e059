package bfi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"nickandperla.net/bfi/internal/ast"
	"nickandperla.net/bfi/internal/parser"
	"nickandperla.net/bfi/internal/runner"
	"nickandperla.net/bfi/internal/scanner"
	"nickandperla.net/bfi/internal/store"
	"nickandperla.net/bfi/internal/token"
	"nickandperla.net/bfi/internal/vm"
)

// ErrNotLoaded is returned when stepping before a program is loaded.
var ErrNotLoaded = errors.New("no program loaded")

// LoadError is returned by Load when a program does not validate. Source is
// the text the error offsets refer to.
type LoadError struct {
	Name   string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Runtime prepares programs and drives one run at a time.
type Runtime struct {
	minify       bool
	breakpoints  bool
	keepTape     bool
	tapeSize     int
	output       func(b byte)
	outErr       error
	input        vm.InputReader
	errorHandler func(f *vm.Fault)
	logger       *slog.Logger
	journal      store.Store
	journalPath  string

	// Current run.
	name      string
	source    string // text the offsets refer to (minified if enabled)
	tree      []ast.Node
	machine   *vm.Machine
	tape      *vm.Tape
	faults    []store.FaultEntry
	outBytes  int
	startedAt time.Time
}

// New creates a new runtime with the given options.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		tapeSize: vm.DefaultTapeSize,
		output:   func(byte) {},
		input: func() (byte, error) {
			return 0, vm.ErrNoInput
		},
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.journalPath != "" && r.journal == nil {
		s, err := store.NewSQLite(r.journalPath)
		if err != nil {
			r.logger.Warn("run journal unavailable", "path", r.journalPath, "error", err)
		} else {
			r.journal = s
		}
	}

	return r
}

// Prepare lexes and validates source without loading it. It returns the
// text the token offsets refer to, which differs from source when minify
// is on.
func (r *Runtime) Prepare(source string) (string, []token.Token, []ast.Node, error) {
	if r.minify {
		source = scanner.Minify(source, r.breakpoints)
	}
	tokens := scanner.Lex(source, r.breakpoints)
	tree, err := parser.Parse(tokens)
	if err != nil {
		return source, nil, nil, err
	}
	return source, tokens, tree, nil
}

// Load validates source and starts a new run. Bracket errors are returned
// as a *LoadError wrapping the *parser.Error and leave the previous run in
// place.
func (r *Runtime) Load(name, source string) error {
	text, tokens, tree, err := r.Prepare(source)
	if err != nil {
		return &LoadError{Name: name, Source: text, Err: err}
	}

	if !r.keepTape || r.tape == nil {
		r.tape = vm.NewTape(r.tapeSize)
	}
	r.name = name
	r.source = text
	r.tree = tree
	r.faults = nil
	r.outBytes = 0
	r.startedAt = time.Now()
	r.machine = vm.New(tokens,
		vm.WithTape(r.tape),
		vm.WithBreakpoints(r.breakpoints),
		vm.WithInput(r.input),
		vm.WithOutput(func(b byte) {
			r.outBytes++
			r.output(b)
		}),
	)
	r.logger.Debug("program loaded", "name", name, "instructions", len(tokens), "depth", ast.Depth(tree))
	return nil
}

// LoadFile loads a program from a file.
func (r *Runtime) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.Load(path, string(data))
}

// Source returns the text of the loaded program.
func (r *Runtime) Source() string { return r.source }

// Tree returns the validated program tree.
func (r *Runtime) Tree() []ast.Node { return r.tree }

// Machine returns the current machine, or nil before Load.
func (r *Runtime) Machine() *vm.Machine { return r.machine }

// Tape returns the current tape, or nil before Load.
func (r *Runtime) Tape() *vm.Tape { return r.tape }

// Faults returns the faults reported so far in this run.
func (r *Runtime) Faults() []store.FaultEntry { return r.faults }

// OutputErr returns the first error from the output writer, if any.
func (r *Runtime) OutputErr() error { return r.outErr }

// Finished reports whether the current program ran to completion.
func (r *Runtime) Finished() bool {
	return r.machine != nil && r.machine.Finished()
}

// Halted reports whether a fatal fault stopped the current program.
func (r *Runtime) Halted() bool {
	return r.machine != nil && r.machine.Halted()
}

// step runs one instruction and records any fault.
func (r *Runtime) step() error {
	if r.machine == nil {
		return ErrNotLoaded
	}
	halted := r.machine.Halted()
	err := r.machine.Step()
	var f *vm.Fault
	if errors.As(err, &f) && !halted {
		r.faults = append(r.faults, store.FaultEntry{
			Kind:    f.Kind.String(),
			Message: f.Message,
			PC:      f.PC,
			Offset:  f.Offset,
		})
	}
	return err
}

// route hands a fault to the error handler, if there is one.
func (r *Runtime) route(err error) error {
	var f *vm.Fault
	if r.errorHandler != nil && errors.As(err, &f) {
		r.errorHandler(f)
		return nil
	}
	return err
}

// Step executes one instruction of the current program.
func (r *Runtime) Step() error {
	return r.route(r.step())
}

type stepper struct{ r *Runtime }

func (s stepper) Step() error    { return s.r.step() }
func (s stepper) Finished() bool { return s.r.machine.Finished() }

// Run steps continuously, every interval or back-to-back when interval is
// zero, until the program finishes, faults or ctx is done. The outcome says
// which; a fault is also routed to the error handler.
func (r *Runtime) Run(ctx context.Context, interval time.Duration, opts ...runner.Option) (runner.Outcome, error) {
	if r.machine == nil {
		return runner.OutcomeHalted, ErrNotLoaded
	}
	opts = append([]runner.Option{runner.WithInterval(interval), runner.WithLogger(r.logger)}, opts...)
	outcome, err := runner.New(stepper{r}, opts...).Run(ctx)
	if outcome == runner.OutcomeCancelled {
		return outcome, err
	}
	return outcome, r.route(err)
}

// Nudge executes one instruction outside the program. Faults are dropped.
func (r *Runtime) Nudge(kind token.Kind) {
	if r.machine == nil {
		return
	}
	if err := r.machine.Execute(kind); err != nil {
		r.logger.Debug("nudge ignored", "instruction", kind, "error", err)
	}
}

// SetCell overwrites a tape cell between steps.
func (r *Runtime) SetCell(index, value int) error {
	if r.machine == nil {
		return ErrNotLoaded
	}
	return r.machine.SetCell(index, value)
}

// Restart rewinds the current program onto a fresh tape.
func (r *Runtime) Restart() {
	if r.machine == nil {
		return
	}
	r.machine.Reset()
	r.faults = nil
	r.outBytes = 0
	r.startedAt = time.Now()
}

// ResetTape zeroes the tape kept between loads and moves the data pointer
// home.
func (r *Runtime) ResetTape() {
	if r.tape != nil {
		r.tape.Reset()
	}
}

// Window renders the cells around the data pointer.
func (r *Runtime) Window(width int, ascii bool) string {
	if r.tape == nil {
		return ""
	}
	return FormatWindow(r.tape, width, ascii)
}

// Elapsed returns the time since the run started.
func (r *Runtime) Elapsed() time.Duration {
	return time.Since(r.startedAt)
}

// Digest returns the hex SHA-256 of the current program's instructions.
func (r *Runtime) Digest() string {
	if r.machine == nil {
		return ""
	}
	sum := sha256.Sum256([]byte(token.Symbols(r.machine.Program())))
	return hex.EncodeToString(sum[:])
}

// Commit records the current run in the journal with the given status and
// returns the record. Without a journal the record is only returned.
func (r *Runtime) Commit(status Status) (*Record, error) {
	if r.machine == nil {
		return nil, ErrNotLoaded
	}
	rec := &Record{
		Name:        r.name,
		Digest:      r.Digest(),
		Status:      status,
		Steps:       r.machine.Steps(),
		OutputBytes: r.outBytes,
		Faults:      r.faults,
		StartedAt:   r.startedAt,
		Duration:    r.Elapsed(),
	}
	if r.journal == nil {
		return rec, nil
	}
	if err := r.journal.Put(rec); err != nil {
		return rec, fmt.Errorf("journal: %w", err)
	}
	return rec, nil
}

// History returns up to limit journal records, newest first.
func (r *Runtime) History(limit int) ([]Record, error) {
	if r.journal == nil {
		return nil, nil
	}
	return r.journal.Recent(limit)
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.journal != nil {
		return r.journal.Close()
	}
	return nil
}
