// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package ast defines the nested program tree produced by the parser.
package ast

import (
	"fmt"
	"strings"

	"nickandperla.net/bfi/internal/token"
)

// Node is the interface all tree nodes implement.
type Node interface {
	// String returns the source symbols the node was built from.
	String() string
	// Offset returns the source offset of the node's first character.
	Offset() int
}

// Instr is a single non-bracket instruction.
type Instr struct {
	Token token.Token
}

func (i Instr) String() string { return string(i.Token.Kind.Rune()) }
func (i Instr) Offset() int    { return i.Token.Offset }

// Loop is a bracketed body.
type Loop struct {
	Open  token.Token
	Close token.Token
	Body  []Node
}

func (l Loop) String() string {
	var sb strings.Builder
	sb.WriteRune(token.RuneLoopStart)
	for _, n := range l.Body {
		sb.WriteString(n.String())
	}
	sb.WriteRune(token.RuneLoopEnd)
	return sb.String()
}
func (l Loop) Offset() int { return l.Open.Offset }

// Depth returns the deepest loop nesting in nodes.
func Depth(nodes []Node) int {
	max := 0
	for _, n := range nodes {
		if l, ok := n.(Loop); ok {
			if d := Depth(l.Body) + 1; d > max {
				max = d
			}
		}
	}
	return max
}

// Count returns the number of instructions in nodes, counting each loop's
// brackets as two.
func Count(nodes []Node) int {
	n := 0
	for _, node := range nodes {
		switch node := node.(type) {
		case Instr:
			n++
		case Loop:
			n += 2 + Count(node.Body)
		}
	}
	return n
}

// Format renders nodes one per line, indenting loop bodies.
func Format(nodes []Node) string {
	var sb strings.Builder
	format(&sb, nodes, 0)
	return sb.String()
}

func format(sb *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch n := n.(type) {
		case Instr:
			fmt.Fprintf(sb, "%s%s %c @%d\n", indent, n.Token.Kind, n.Token.Kind.Rune(), n.Token.Offset)
		case Loop:
			fmt.Fprintf(sb, "%sLOOP @%d..%d\n", indent, n.Open.Offset, n.Close.Offset)
			format(sb, n.Body, depth+1)
		}
	}
}
