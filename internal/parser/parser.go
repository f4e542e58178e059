// Package parser resolves the flat token stream into a nested tree,
// rejecting programs whose brackets do not balance.
package parser

import (
	"fmt"

	"nickandperla.net/bfi/internal/ast"
	"nickandperla.net/bfi/internal/token"
)

// MaxDepth bounds loop nesting.
const MaxDepth = 1000

// Messages reported by Parse.
const (
	MsgNoOpen  = "No matching `[` found"
	MsgNoClose = "No matching `]` found"
	MsgTooDeep = "Loop nesting too deep"
)

// Error is a structural fault located at a source offset.
type Error struct {
	Message string
	Span    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Span)
}

// Parser walks a token slice once.
type Parser struct {
	tokens   []token.Token
	position int
}

// New creates a parser over tokens.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse validates bracket balance and returns the program tree.
func Parse(tokens []token.Token) ([]ast.Node, error) {
	return New(tokens).Parse()
}

// Parse consumes the whole token stream.
func (p *Parser) Parse() ([]ast.Node, error) {
	body, _, err := p.parse(false, 0)
	return body, err
}

func (p *Parser) next() (token.Token, bool) {
	if p.position >= len(p.tokens) {
		return token.Token{}, false
	}
	t := p.tokens[p.position]
	p.position++
	return t, true
}

// parse reads a body. Inside a loop it stops at the closing bracket and
// returns it; at the top level a closing bracket is an error.
func (p *Parser) parse(inLoop bool, depth int) ([]ast.Node, token.Token, error) {
	var body []ast.Node
	for {
		t, ok := p.next()
		if !ok {
			break
		}
		switch t.Kind {
		case token.LoopStart:
			if depth >= MaxDepth {
				return nil, token.Token{}, &Error{Message: MsgTooDeep, Span: t.Offset}
			}
			loopBody, closing, err := p.parse(true, depth+1)
			if err != nil {
				return nil, token.Token{}, err
			}
			body = append(body, ast.Loop{Open: t, Close: closing, Body: loopBody})
		case token.LoopEnd:
			if inLoop {
				return body, t, nil
			}
			return nil, token.Token{}, &Error{Message: MsgNoOpen, Span: t.Offset}
		default:
			body = append(body, ast.Instr{Token: t})
		}
	}

	if inLoop {
		// No closing bracket to point at; blame the last token.
		return nil, token.Token{}, &Error{Message: MsgNoClose, Span: p.tokens[len(p.tokens)-1].Offset}
	}
	return body, token.Token{}, nil
}
