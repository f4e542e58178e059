// Package bfi provides the public API for loading and running tape machine
// programs.
package bfi

import (
	"io"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"nickandperla.net/bfi/internal/config"
	"nickandperla.net/bfi/internal/store"
	"nickandperla.net/bfi/internal/vm"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithMinify strips non-instruction characters before a program is loaded.
func WithMinify(enabled bool) Option {
	return func(r *Runtime) {
		r.minify = enabled
	}
}

// WithBreakpoints recognizes the • marker and pauses on it.
func WithBreakpoints(enabled bool) Option {
	return func(r *Runtime) {
		r.breakpoints = enabled
	}
}

// WithTapeSize sets the number of tape cells per run.
func WithTapeSize(n int) Option {
	return func(r *Runtime) {
		r.tapeSize = n
	}
}

// WithKeepTape keeps the tape and data pointer across Load calls, the way
// an interactive session accumulates state.
func WithKeepTape() Option {
	return func(r *Runtime) {
		r.keepTape = true
	}
}

// WithOutputFunc sets the raw output collaborator.
func WithOutputFunc(fn func(b byte)) Option {
	return func(r *Runtime) {
		r.output = fn
	}
}

// WithOutput writes each output byte to w as the Latin-1 character with
// that code.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		var buf [utf8.UTFMax]byte
		r.output = func(b byte) {
			n := utf8.EncodeRune(buf[:], charmap.ISO8859_1.DecodeByte(b))
			if _, err := w.Write(buf[:n]); err != nil && r.outErr == nil {
				r.outErr = err
			}
		}
	}
}

// WithRawOutput writes output bytes to w unchanged.
func WithRawOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.output = func(b byte) {
			if _, err := w.Write([]byte{b}); err != nil && r.outErr == nil {
				r.outErr = err
			}
		}
	}
}

// WithInput reads program input from a staged buffer.
func WithInput(in *BufferedInput) Option {
	return func(r *Runtime) {
		r.input = in.ReadByte
	}
}

// WithInputReader sets the input collaborator.
func WithInputReader(fn vm.InputReader) Option {
	return func(r *Runtime) {
		r.input = fn
	}
}

// WithErrorHandler routes faults to fn instead of returning them.
func WithErrorHandler(fn func(f *vm.Fault)) Option {
	return func(r *Runtime) {
		r.errorHandler = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithJournal records finished runs in s. The Runtime closes it.
func WithJournal(s store.Store) Option {
	return func(r *Runtime) {
		r.journal = s
	}
}

// WithSQLiteJournal records finished runs in a SQLite database at path.
func WithSQLiteJournal(path string) Option {
	return func(r *Runtime) {
		r.journalPath = path
	}
}

// WithMemoryJournal records finished runs in memory (for testing).
func WithMemoryJournal() Option {
	return func(r *Runtime) {
		r.journal = store.NewMemory()
	}
}

// WithConfig applies the [run] section of a configuration file.
func WithConfig(c *config.Config) Option {
	return func(r *Runtime) {
		r.minify = c.Run.Minify
		r.breakpoints = c.Run.EnableBreakpoints
		r.tapeSize = c.Run.TapeSize
	}
}

// Journal types re-exported for hosts.
type (
	Record = store.Record
	Status = store.Status
)

// Run statuses.
const (
	StatusFinished  = store.StatusFinished
	StatusHalted    = store.StatusHalted
	StatusAborted   = store.StatusAborted
	StatusCancelled = store.StatusCancelled
)
