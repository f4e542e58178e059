package parser

import (
	"errors"
	"strings"
	"testing"

	"nickandperla.net/bfi/internal/ast"
	"nickandperla.net/bfi/internal/scanner"
)

func parseSource(t *testing.T, src string) ([]ast.Node, error) {
	t.Helper()
	return Parse(scanner.Lex(src, false))
}

func TestParseBalanced(t *testing.T) {
	tests := []string{
		"",
		"+-<>.,",
		"[]",
		"+[-[-[-]]+>>>]",
		">+<++[-].",
		"++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.",
	}
	for _, src := range tests {
		nodes, err := parseSource(t, src)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", src, err)
			continue
		}
		var sb strings.Builder
		for _, n := range nodes {
			sb.WriteString(n.String())
		}
		if sb.String() != src {
			t.Errorf("Parse(%q) round-tripped to %q", src, sb.String())
		}
		if got := ast.Count(nodes); got != len(src) {
			t.Errorf("Parse(%q): expected %d instructions, got %d", src, len(src), got)
		}
	}
}

func TestParseNesting(t *testing.T) {
	nodes, err := parseSource(t, "+[-[-[-]]+>>>]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(nodes))
	}
	loop, ok := nodes[1].(ast.Loop)
	if !ok {
		t.Fatalf("expected second node to be a loop, got %T", nodes[1])
	}
	if loop.Open.Offset != 1 || loop.Close.Offset != 13 {
		t.Errorf("expected loop @1..13, got @%d..%d", loop.Open.Offset, loop.Close.Offset)
	}
	if d := ast.Depth(nodes); d != 3 {
		t.Errorf("expected depth 3, got %d", d)
	}
}

func TestParseExtraClose(t *testing.T) {
	src := "++\n+]--"
	_, err := parseSource(t, src)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Message != MsgNoOpen {
		t.Errorf("expected %q, got %q", MsgNoOpen, perr.Message)
	}
	if perr.Span != 4 {
		t.Errorf("expected span 4, got %d", perr.Span)
	}
}

func TestParseExtraOpen(t *testing.T) {
	src := "+[[-]>+ comment"
	_, err := parseSource(t, src)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Message != MsgNoClose {
		t.Errorf("expected %q, got %q", MsgNoClose, perr.Message)
	}
	// Last token is the final '+'.
	if perr.Span != 6 {
		t.Errorf("expected span 6, got %d", perr.Span)
	}
}

func TestParseTooDeep(t *testing.T) {
	src := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	_, err := parseSource(t, src)
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Message != MsgTooDeep || perr.Span != MaxDepth {
		t.Errorf("expected %q @%d, got %q @%d", MsgTooDeep, MaxDepth, perr.Message, perr.Span)
	}

	ok := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	if _, err := parseSource(t, ok); err != nil {
		t.Errorf("depth %d should parse, got %v", MaxDepth, err)
	}
}
