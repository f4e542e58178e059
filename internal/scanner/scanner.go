// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner turns source text into a dense instruction token stream.
package scanner

import (
	"bufio"
	"io"
	"strings"

	"nickandperla.net/bfi/internal/token"
)

// Scanner reads instructions rune-by-rune, dropping everything else.
type Scanner struct {
	reader      *bufio.Reader
	offset      int // Byte offset of the next rune
	breakpoints bool
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader, breakpoints bool) *Scanner {
	return &Scanner{
		reader:      bufio.NewReader(r),
		breakpoints: breakpoints,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string, breakpoints bool) *Scanner {
	return New(strings.NewReader(s), breakpoints)
}

// Offset returns the byte offset of the next unread rune.
func (s *Scanner) Offset() int {
	return s.offset
}

// Next returns the next instruction token. ok is false at end of input.
func (s *Scanner) Next() (tok token.Token, ok bool, err error) {
	for {
		r, size, err := s.reader.ReadRune()
		if err == io.EOF {
			return token.Token{}, false, nil
		}
		if err != nil {
			return token.Token{}, false, err
		}
		offset := s.offset
		s.offset += size

		if kind, ok := token.Lookup(r, s.breakpoints); ok {
			return token.Token{Kind: kind, Offset: offset}, true, nil
		}
	}
}

// All drains the scanner.
func (s *Scanner) All() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, ok, err := s.Next()
		if err != nil {
			return tokens, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Lex returns every instruction in source with its offset into source.
// Any other character is dropped.
func Lex(source string, breakpoints bool) []token.Token {
	var tokens []token.Token
	for offset, r := range source {
		if kind, ok := token.Lookup(r, breakpoints); ok {
			tokens = append(tokens, token.Token{Kind: kind, Offset: offset})
		}
	}
	return tokens
}

// Minify strips every character that is not an instruction.
func Minify(source string, breakpoints bool) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for _, r := range source {
		if _, ok := token.Lookup(r, breakpoints); ok {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
