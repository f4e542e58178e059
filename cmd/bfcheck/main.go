// bfcheck: structural checker for tape machine programs.
//
// Lexes and parses a single file. On success the program tree is printed;
// on a bracket error a located diagnostic goes to stderr and the exit
// status is 1.
//
// Usage:
//
//	bfcheck FILE
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"nickandperla.net/bfi/internal/ast"
	"nickandperla.net/bfi/internal/diag"
	"nickandperla.net/bfi/internal/parser"
	"nickandperla.net/bfi/internal/scanner"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: [filename]")
		return 1
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer f.Close()

	// Keep the text the offsets point into for diagnostics.
	var source bytes.Buffer
	s := scanner.New(io.TeeReader(f, &source), false)
	tokens, err := s.All()
	if err != nil {
		fmt.Fprintf(stderr, "error: reading %s at byte %d: %v\n", path, s.Offset(), err)
		return 1
	}

	tree, err := parser.Parse(tokens)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			diag.Write(stderr, source.String(), perr.Message, perr.Span, isTerminal(stderr))
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}

	fmt.Fprint(stdout, ast.Format(tree))
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
