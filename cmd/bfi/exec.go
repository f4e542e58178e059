package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"nickandperla.net/bfi/internal/diag"
	"nickandperla.net/bfi/internal/parser"
	"nickandperla.net/bfi/internal/runner"
	"nickandperla.net/bfi/internal/token"
	"nickandperla.net/bfi/internal/vm"
	"nickandperla.net/bfi/pkg/bfi"
)

// windowWidth is the number of cells shown around the data pointer.
const windowWidth = 10

// executor drives one loaded program to completion.
type executor struct {
	runtime *bfi.Runtime
	out     *bufio.Writer
	stdin   io.Reader
	tout    *termWriter
	terr    *termWriter
	logger  *slog.Logger
	ascii   bool
	input   *bfi.BufferedInput
	color   bool

	keys *bufio.Reader
}

type stepResult int

const (
	stepFinished stepResult = iota
	stepHalted
	stepContinue
	stepQuit
)

// execute runs the program at the start speed, or interactively when
// stepping (or when the speed is 0). It returns the exit status.
func (e *executor) execute(ctx context.Context, speed int, super, stepping bool) int {
	var interval time.Duration
	if !super {
		d, ok := runner.IntervalForSpeed(speed)
		if !ok {
			stepping = true
			d, _ = runner.IntervalForSpeed(runner.MaxSpeed)
		}
		interval = d
	}

	for {
		if stepping {
			switch e.stepLoop(ctx) {
			case stepQuit:
				return e.finish(bfi.StatusAborted, 1)
			case stepHalted:
				return e.finish(bfi.StatusHalted, 1)
			case stepFinished:
				e.summary()
				return e.finish(bfi.StatusFinished, 0)
			}
			stepping = false
		}

		outcome, err := e.runtime.Run(ctx, interval, runner.WithObserver(func() { e.out.Flush() }))
		e.out.Flush()

		switch outcome {
		case runner.OutcomeFinished:
			e.summary()
			return e.finish(bfi.StatusFinished, 0)
		case runner.OutcomeCancelled:
			fmt.Fprintln(e.terr, "Interrupted.")
			return e.finish(bfi.StatusCancelled, 130)
		case runner.OutcomeHalted:
			e.report(err)
			return e.finish(bfi.StatusHalted, 1)
		}

		e.report(err)
		kind, _ := vm.KindOf(err)
		switch {
		case kind == vm.Retry && e.input.Len() == 0:
			// Nothing will ever satisfy the read.
			return e.finish(bfi.StatusAborted, 1)
		case kind == vm.Pause && isTerminal(e.stdin):
			stepping = true
		}
	}
}

// stepLoop reads single keys: Enter or space steps, c continues, q quits,
// and + - < > . execute directly on the tape.
func (e *executor) stepLoop(ctx context.Context) stepResult {
	restore, _ := enterRaw(e.stdin, e.tout, e.terr)
	defer restore()
	if e.keys == nil {
		e.keys = bufio.NewReader(e.stdin)
	}

	fmt.Fprintln(e.terr, "Stepping: Enter/space = step, c = continue, + - < > . = execute, q = quit")
	e.showState()
	for {
		if e.runtime.Finished() {
			return stepFinished
		}
		if ctx.Err() != nil {
			return stepQuit
		}
		key, err := e.keys.ReadByte()
		if err != nil {
			return stepQuit
		}

		switch key {
		case '\r', '\n', ' ':
			err := e.runtime.Step()
			e.out.Flush()
			if err != nil {
				e.report(err)
				if vm.IsFatal(err) {
					return stepHalted
				}
			}
			e.showState()
		case 'c':
			return stepContinue
		case 'q', 0x03, 0x04:
			return stepQuit
		case '+', '-', '<', '>', '.':
			kind, _ := token.Lookup(rune(key), false)
			e.runtime.Nudge(kind)
			e.out.Flush()
			e.showState()
		}
	}
}

func (e *executor) showState() {
	m := e.runtime.Machine()
	if t, ok := m.Current(); ok {
		fmt.Fprintf(e.terr, "pc %d/%d  next %c @%d  steps %d\n", m.PC(), len(m.Program()), t.Kind.Rune(), t.Offset, m.Steps())
	} else {
		fmt.Fprintf(e.terr, "pc %d/%d  end  steps %d\n", m.PC(), len(m.Program()), m.Steps())
	}
	fmt.Fprint(e.terr, e.runtime.Window(windowWidth, e.ascii))
}

func (e *executor) summary() {
	fmt.Fprintf(e.terr, "Finished Execution. Took %gs\n", e.runtime.Elapsed().Round(time.Millisecond).Seconds())
}

func (e *executor) report(err error) {
	reportError(e.terr, e.runtime.Source(), err, e.color)
}

func (e *executor) finish(status bfi.Status, code int) int {
	e.out.Flush()
	if err := e.runtime.OutputErr(); err != nil {
		fmt.Fprintf(e.terr, "Error writing output: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	commit(e.runtime, e.logger, status)
	return code
}

// reportError prints a located diagnostic for parse errors and program
// faults, and a plain message for anything else.
func reportError(w io.Writer, source string, err error, color bool) {
	var (
		lerr  *bfi.LoadError
		perr  *parser.Error
		fault *vm.Fault
	)
	if errors.As(err, &lerr) {
		source = lerr.Source
	}
	switch {
	case errors.As(err, &perr):
		diag.Write(w, source, perr.Message, perr.Span, color)
	case errors.As(err, &fault) && fault.Offset >= 0:
		diag.Write(w, source, fault.Message, fault.Offset, color)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
