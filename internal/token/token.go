// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the instruction kinds of the tape machine and the
// characters that spell them.
package token

// Kind is a tape machine instruction.
type Kind int

const (
	Inc        Kind = iota // + increment current cell
	Dec                    // - decrement current cell
	Right                  // > move data pointer right
	Left                   // < move data pointer left
	Out                    // . emit current cell
	In                     // , read into current cell
	LoopStart              // [ jump past matching ] if cell is zero
	LoopEnd                // ] jump back past matching [ if cell is non-zero
	Breakpoint             // • pause execution (only when enabled)
)

// Characters for each instruction.
const (
	RuneInc        = '+'
	RuneDec        = '-'
	RuneRight      = '>'
	RuneLeft       = '<'
	RuneOut        = '.'
	RuneIn         = ','
	RuneLoopStart  = '['
	RuneLoopEnd    = ']'
	RuneBreakpoint = '•' // U+2022
)

// Token is one instruction together with the byte offset of its character
// in the original, unfiltered source.
type Token struct {
	Kind   Kind
	Offset int
}

// Lookup returns the instruction spelled by r. The breakpoint marker is only
// recognized when breakpoints is true.
func Lookup(r rune, breakpoints bool) (Kind, bool) {
	switch r {
	case RuneInc:
		return Inc, true
	case RuneDec:
		return Dec, true
	case RuneRight:
		return Right, true
	case RuneLeft:
		return Left, true
	case RuneOut:
		return Out, true
	case RuneIn:
		return In, true
	case RuneLoopStart:
		return LoopStart, true
	case RuneLoopEnd:
		return LoopEnd, true
	case RuneBreakpoint:
		return Breakpoint, breakpoints
	}
	return 0, false
}

// Rune returns the character that spells k.
func (k Kind) Rune() rune {
	switch k {
	case Inc:
		return RuneInc
	case Dec:
		return RuneDec
	case Right:
		return RuneRight
	case Left:
		return RuneLeft
	case Out:
		return RuneOut
	case In:
		return RuneIn
	case LoopStart:
		return RuneLoopStart
	case LoopEnd:
		return RuneLoopEnd
	case Breakpoint:
		return RuneBreakpoint
	}
	return '?'
}

// String returns the name of the instruction.
func (k Kind) String() string {
	switch k {
	case Inc:
		return "INC"
	case Dec:
		return "DEC"
	case Right:
		return "RIGHT"
	case Left:
		return "LEFT"
	case Out:
		return "OUT"
	case In:
		return "IN"
	case LoopStart:
		return "LOOP_START"
	case LoopEnd:
		return "LOOP_END"
	case Breakpoint:
		return "BREAKPOINT"
	}
	return "UNKNOWN"
}

// IsBracket returns true for the two loop instructions.
func (k Kind) IsBracket() bool {
	return k == LoopStart || k == LoopEnd
}

// Symbols returns the characters of a token sequence as a string.
func Symbols(tokens []Token) string {
	runes := make([]rune, len(tokens))
	for i, t := range tokens {
		runes[i] = t.Kind.Rune()
	}
	return string(runes)
}
