package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"nickandperla.net/bfi/pkg/bfi"
)

// newTestREPL wires a repl to in-memory streams with a fake raw mode that
// only flips the writers, the way enterRaw does on a terminal.
func newTestREPL(stdin string, opts ...bfi.Option) (*repl, *bytes.Buffer, *bytes.Buffer, *int) {
	var stdout, stderr bytes.Buffer
	tout := &termWriter{w: &stdout}
	terr := &termWriter{w: &stderr}
	out := bufio.NewWriter(tout)
	entered := 0

	runtime := bfi.New(append([]bfi.Option{bfi.WithOutput(out), bfi.WithKeepTape()}, opts...)...)
	r := &repl{
		runtime: runtime,
		input:   bfi.NewBufferedInput(nil),
		stdin:   strings.NewReader(stdin),
		out:     out,
		tout:    tout,
		terr:    terr,
		raw: func() (func(), bool) {
			entered++
			tout.raw, terr.raw = true, true
			return func() { tout.raw, terr.raw = false, false }, true
		},
	}
	return r, &stdout, &stderr, &entered
}

func TestREPLRunsProgramsOutsideRawMode(t *testing.T) {
	var rawDuringRun []bool
	var r *repl
	r, stdout, _, entered := newTestREPL(",.\n,\n:q\n", bfi.WithInputReader(func() (byte, error) {
		rawDuringRun = append(rawDuringRun, r.tout.raw)
		return 'x', nil
	}))
	defer r.runtime.Close()

	r.start(context.Background())

	if *entered != 3 {
		t.Errorf("expected raw mode once per line read, got %d", *entered)
	}
	if len(rawDuringRun) != 2 {
		t.Fatalf("expected two reads, got %d", len(rawDuringRun))
	}
	for i, raw := range rawDuringRun {
		if raw {
			t.Errorf("program %d ran with the terminal in raw mode", i)
		}
	}
	if r.tout.raw || r.terr.raw {
		t.Error("expected terminal restored after the session")
	}
	if !strings.Contains(stdout.String(), "Output:\nx\n") {
		t.Errorf("expected program output, got %q", stdout.String())
	}
}

func TestREPLInterrupted(t *testing.T) {
	r, stdout, stderr, _ := newTestREPL("+[]\n+\n")
	defer r.runtime.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.start(ctx)

	if !strings.Contains(stderr.String(), "Interrupted.") {
		t.Errorf("expected interruption notice, got %q", stderr.String())
	}
	if n := strings.Count(stdout.String(), "Output:"); n != 1 {
		t.Errorf("expected session to end after the interrupted line, ran %d lines", n)
	}
}
