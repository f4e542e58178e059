// Package runner drives a machine continuously, either on a timer or as
// fast as possible, stopping on the first fault.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nickandperla.net/bfi/internal/vm"
)

// Stepper is the part of a machine the runner needs.
type Stepper interface {
	Step() error
	Finished() bool
}

// Outcome says why Run returned.
type Outcome int

const (
	// OutcomeFinished means the program ran off its end.
	OutcomeFinished Outcome = iota
	// OutcomePaused means a non-fatal fault stopped the run; stepping may
	// continue.
	OutcomePaused
	// OutcomeHalted means a fatal fault stopped the run for good.
	OutcomeHalted
	// OutcomeCancelled means the context was done.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomePaused:
		return "paused"
	case OutcomeHalted:
		return "halted"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// checkEvery is how many back-to-back steps run between context checks.
const checkEvery = 1024

// MaxSpeed is the fastest timed speed.
const MaxSpeed = 100

// IntervalForSpeed converts a speed setting into a step interval:
// 1s / (speed * 10). Speed 0 (or less) means paused and returns 0, false.
func IntervalForSpeed(speed int) (time.Duration, bool) {
	if speed <= 0 {
		return 0, false
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	return time.Second / time.Duration(speed*10), true
}

// Runner steps a machine until something stops it.
type Runner struct {
	machine  Stepper
	interval time.Duration
	logger   *slog.Logger
	observer func()
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval sets the delay between steps. Zero runs back-to-back.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) { r.interval = d }
}

// WithLogger sets the logger for pause and halt events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithObserver registers a callback run after every timed step, for
// redrawing state displays.
func WithObserver(f func()) Option {
	return func(r *Runner) { r.observer = f }
}

// New creates a Runner for m.
func New(m Stepper, opts ...Option) *Runner {
	r := &Runner{
		machine: m,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run steps until the program finishes, a fault occurs or ctx is done. The
// returned error is the fault, or ctx.Err() on cancellation.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if r.interval <= 0 {
		return r.runBlocking(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if r.machine.Finished() {
			return OutcomeFinished, nil
		}
		select {
		case <-ctx.Done():
			return OutcomeCancelled, ctx.Err()
		case <-ticker.C:
		}
		err := r.machine.Step()
		if r.observer != nil {
			r.observer()
		}
		if err != nil {
			return r.stop(ctx, err)
		}
	}
}

func (r *Runner) runBlocking(ctx context.Context) (Outcome, error) {
	for n := 0; ; n++ {
		if r.machine.Finished() {
			return OutcomeFinished, nil
		}
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return OutcomeCancelled, err
			}
		}
		if err := r.machine.Step(); err != nil {
			return r.stop(ctx, err)
		}
	}
}

func (r *Runner) stop(ctx context.Context, err error) (Outcome, error) {
	var f *vm.Fault
	if errors.As(err, &f) && f.Kind != vm.Fatal {
		r.logger.DebugContext(ctx, "run paused", "kind", f.Kind, "message", f.Message, "pc", f.PC)
		return OutcomePaused, err
	}
	r.logger.InfoContext(ctx, "run halted", "error", err)
	return OutcomeHalted, err
}
