package bfi

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"nickandperla.net/bfi/internal/vm"
)

// BufferedInput is a staged input buffer consumed one byte per read.
type BufferedInput struct {
	buf []byte
}

// NewBufferedInput stages raw bytes.
func NewBufferedInput(b []byte) *BufferedInput {
	return &BufferedInput{buf: append([]byte(nil), b...)}
}

// NewTextInput stages text, one byte per character. Characters outside
// Latin-1 cannot be represented in a cell and are rejected.
func NewTextInput(s string) (*BufferedInput, error) {
	b, err := encodeText(s)
	if err != nil {
		return nil, err
	}
	return &BufferedInput{buf: b}, nil
}

// Push appends raw bytes.
func (in *BufferedInput) Push(b []byte) {
	in.buf = append(in.buf, b...)
}

// PushText appends text, encoded as for NewTextInput.
func (in *BufferedInput) PushText(s string) error {
	b, err := encodeText(s)
	if err != nil {
		return err
	}
	in.buf = append(in.buf, b...)
	return nil
}

// Len returns the number of staged bytes.
func (in *BufferedInput) Len() int { return len(in.buf) }

// ReadByte consumes the next byte, or returns vm.ErrNoInput.
func (in *BufferedInput) ReadByte() (byte, error) {
	if len(in.buf) == 0 {
		return 0, vm.ErrNoInput
	}
	b := in.buf[0]
	in.buf = in.buf[1:]
	return b, nil
}

func encodeText(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("input is not representable as bytes: %w", err)
	}
	return b, nil
}
