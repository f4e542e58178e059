// Package logs builds the process logger.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects where log records go.
type Options struct {
	Level  string    // debug, info, warn or error; empty means warn
	Stderr io.Writer // terminal destination; nil means os.Stderr
	File   string    // optional JSON log file, appended to
}

// ParseLevel converts a level name into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger fanning out to the terminal and, if configured, a
// JSON file. The returned close function releases the file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	l, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	level.Set(l)

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}
