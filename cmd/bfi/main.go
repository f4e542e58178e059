// Command bfi is the tape machine interpreter CLI.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"nickandperla.net/bfi/internal/config"
	"nickandperla.net/bfi/internal/logs"
	"nickandperla.net/bfi/internal/presets"
	"nickandperla.net/bfi/pkg/bfi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags holds the command line. Flags the user set override bfi.toml.
type flags struct {
	configPath  string
	minify      bool
	breakpoints bool
	direct      bool
	super       bool
	speed       int
	ascii       bool
	input       string
	eval        string
	step        bool
	journal     string
	history     int
	preset      string
	logLevel    string
	logFile     string
	tape        int
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f flags
	fs := flag.NewFlagSet("bfi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Configuration file (default: bfi.toml searched upward)")
	fs.BoolVar(&f.minify, "minify", false, "Strip non-instruction characters before running")
	fs.BoolVar(&f.breakpoints, "breakpoints", false, "Pause on the • breakpoint marker")
	fs.BoolVar(&f.direct, "direct", false, "Start at full timed speed")
	fs.BoolVar(&f.super, "super", false, "Run without delay between steps")
	fs.IntVar(&f.speed, "speed", 0, "Timed speed 1-100 (0 starts paused)")
	fs.BoolVar(&f.ascii, "ascii", false, "Show printable cells as characters")
	fs.StringVar(&f.input, "input", "", "Program input")
	fs.StringVar(&f.eval, "e", "", "Run program text")
	fs.BoolVar(&f.step, "step", false, "Step interactively")
	fs.StringVar(&f.journal, "journal", "", "SQLite run journal path")
	fs.IntVar(&f.history, "history", 0, "List the N most recent journal entries")
	fs.StringVar(&f.preset, "preset", "", "Run a built-in program")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&f.logFile, "log-file", "", "Append JSON logs to this file")
	fs.IntVar(&f.tape, "tape", 0, "Number of tape cells")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bfi [flags] [file]\n\nPresets: %v\n\n", presets.Names())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(fs, &f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	color := isTerminal(stderr)
	tout := &termWriter{w: stdout}
	terr := &termWriter{w: stderr}

	logger, closeLog, err := logs.New(logs.Options{
		Level:  cfg.Log.Level,
		Stderr: terr,
		File:   cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	out := bufio.NewWriter(tout)
	defer out.Flush()

	opts := []bfi.Option{
		bfi.WithConfig(cfg),
		bfi.WithLogger(logger),
		bfi.WithOutput(out),
	}
	if cfg.Journal.Path != "" {
		opts = append(opts, bfi.WithSQLiteJournal(cfg.Journal.Path))
	}

	if f.history > 0 {
		if cfg.Journal.Path == "" {
			fmt.Fprintln(stderr, "Error: no journal configured (use -journal or [journal] path)")
			return 1
		}
		runtime := bfi.New(opts...)
		defer runtime.Close()
		return printHistory(runtime, f.history, stdout, stderr)
	}

	name, source, err := selectProgram(fs, &f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	input, err := bfi.NewTextInput(f.input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	opts = append(opts, bfi.WithInput(input))

	if name == "" {
		// Interactive sessions accumulate tape state and are not journaled.
		runtime := bfi.New(append(opts, bfi.WithKeepTape())...)
		defer runtime.Close()
		r := &repl{
			runtime: runtime,
			input:   input,
			stdin:   stdin,
			out:     out,
			tout:    tout,
			terr:    terr,
			ascii:   cfg.Run.ASCIIView,
			color:   color,
		}
		r.start(ctx)
		return 0
	}

	runtime := bfi.New(opts...)
	defer runtime.Close()

	if err := runtime.Load(name, source); err != nil {
		reportError(stderr, runtime.Source(), err, color)
		return 1
	}

	speed, super := cfg.Run.StartSpeed()
	e := &executor{
		runtime: runtime,
		out:     out,
		stdin:   stdin,
		tout:    tout,
		terr:    terr,
		logger:  logger,
		ascii:   cfg.Run.ASCIIView,
		input:   input,
		color:   color,
	}
	return e.execute(ctx, speed, super, f.step)
}

// loadConfig reads bfi.toml and applies the flags the user set on top.
func loadConfig(fs *flag.FlagSet, f *flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		var wd string
		if wd, err = os.Getwd(); err == nil {
			cfg, err = config.FindAndLoad(wd)
		}
	}
	if err != nil {
		return nil, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "minify":
			cfg.Run.Minify = f.minify
		case "breakpoints":
			cfg.Run.EnableBreakpoints = f.breakpoints
		case "direct":
			cfg.Run.DirectStart = f.direct
		case "super":
			cfg.Run.StartSuperSpeed = f.super
		case "speed":
			cfg.Run.Speed = f.speed
			// An explicit speed wins over the start mode from the file.
			if !isSet(fs, "direct") {
				cfg.Run.DirectStart = false
			}
			if !isSet(fs, "super") {
				cfg.Run.StartSuperSpeed = false
			}
		case "ascii":
			cfg.Run.ASCIIView = f.ascii
		case "tape":
			cfg.Run.TapeSize = f.tape
		case "journal":
			cfg.Journal.Path = f.journal
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-file":
			cfg.Log.File = f.logFile
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// selectProgram returns the program to run. An empty name means no
// program was given and the REPL should start.
func selectProgram(fs *flag.FlagSet, f *flags) (name, source string, err error) {
	switch {
	case f.preset != "":
		source, err = presets.Get(f.preset)
		return "preset:" + f.preset, source, err
	case f.eval != "":
		return "-e", f.eval, nil
	case fs.NArg() > 0:
		path := fs.Arg(0)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		return path, string(data), nil
	}
	return "", "", nil
}

func printHistory(runtime *bfi.Runtime, limit int, stdout, stderr io.Writer) int {
	records, err := runtime.History(limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading journal: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return 0
	}
	for _, r := range records {
		fmt.Fprintf(stdout, "%s  %-9s %8d steps %6d bytes %3d faults  %-10s %s  %s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Status, r.Steps, r.OutputBytes,
			len(r.Faults), r.Duration.Round(time.Millisecond), r.Digest[:min(12, len(r.Digest))], r.Name)
	}
	return 0
}

// commit journals a run. Journal problems never change the exit status.
func commit(runtime *bfi.Runtime, logger *slog.Logger, status bfi.Status) {
	rec, err := runtime.Commit(status)
	if err != nil {
		logger.Warn("run not journaled", "error", err)
		return
	}
	logger.Debug("run journaled", "id", rec.ID, "status", rec.Status, "steps", rec.Steps)
}
