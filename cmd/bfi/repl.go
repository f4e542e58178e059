package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"nickandperla.net/bfi/internal/runner"
	"nickandperla.net/bfi/internal/vm"
	"nickandperla.net/bfi/pkg/bfi"
)

// repl runs each line as a program on a tape kept between lines.
type repl struct {
	runtime *bfi.Runtime
	input   *bfi.BufferedInput
	stdin   io.Reader
	out     *bufio.Writer
	tout    *termWriter
	terr    *termWriter
	ascii   bool
	color   bool

	// raw switches the terminal to raw mode for line editing.
	raw func() (restore func(), ok bool)
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "bfi REPL (Ctrl+D to exit)")
	fmt.Fprintln(w, "Enter programs and they will be executed immediately. State is kept.")
	fmt.Fprintln(w, "Alt+b inserts a • breakpoint. Type :? for help.")
	fmt.Fprintln(w)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "REPL help")
	fmt.Fprintln(w, "   :q        quit")
	fmt.Fprintln(w, "   :?        help")
	fmt.Fprintln(w, "   :r        reset the tape")
	fmt.Fprintln(w, "   :in TEXT  stage TEXT as program input")
}

func (r *repl) start(ctx context.Context) {
	printBanner(r.out)
	r.showState()
	r.out.Flush()

	if r.raw == nil {
		r.raw = func() (func(), bool) {
			return enterRaw(r.stdin, r.tout, r.terr)
		}
	}
	reader := bufio.NewReader(r.stdin)

	for {
		fmt.Fprint(r.out, ">> ")
		r.out.Flush()

		line, eof := r.readLine(reader)
		if eof {
			fmt.Fprintln(r.out)
			r.out.Flush()
			return
		}
		if !r.eval(ctx, line) {
			return
		}
		r.out.Flush()
	}
}

// readLine reads one line, in raw mode when stdin is a terminal. The
// terminal is restored before the line runs so Ctrl+C interrupts programs.
func (r *repl) readLine(reader *bufio.Reader) (string, bool) {
	restore, raw := r.raw()
	defer restore()
	if raw {
		return readLineRaw(r.stdin, r.tout)
	}
	s, err := reader.ReadString('\n')
	return strings.TrimRight(s, "\r\n"), err != nil && s == ""
}

// eval handles one line. It returns false when the session should end.
func (r *repl) eval(ctx context.Context, line string) bool {
	cmd := strings.TrimSpace(line)
	switch {
	case cmd == "":
		return true
	case cmd == ":q":
		return false
	case cmd == ":?" || cmd == "help" || cmd == "?":
		printHelp(r.out)
		return true
	case cmd == ":r":
		r.runtime.ResetTape()
		r.showState()
		return true
	case cmd == ":in" || strings.HasPrefix(cmd, ":in "):
		text := strings.TrimPrefix(strings.TrimPrefix(cmd, ":in"), " ")
		if err := r.input.PushText(text); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return true
		}
		fmt.Fprintf(r.out, "%d byte(s) of input staged.\n", r.input.Len())
		return true
	}

	if err := r.runtime.Load("repl", line); err != nil {
		r.out.Flush()
		reportError(r.terr, r.runtime.Source(), err, r.color)
		return true
	}

	fmt.Fprintln(r.out, "Output:")
	for {
		outcome, err := r.runtime.Run(ctx, 0)
		if outcome == runner.OutcomeFinished {
			break
		}
		r.out.Flush()
		if outcome == runner.OutcomeCancelled {
			fmt.Fprintln(r.terr, "Interrupted.")
			return false
		}
		reportError(r.terr, r.runtime.Source(), err, r.color)
		// Missing input and fatal faults end the line; reports and
		// breakpoints just get printed.
		if kind, _ := vm.KindOf(err); kind == vm.Retry || kind == vm.Fatal {
			break
		}
	}
	fmt.Fprintln(r.out)
	r.showState()
	return true
}

func (r *repl) showState() {
	fmt.Fprint(r.out, r.runtime.Window(windowWidth, r.ascii))
}
