package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"nickandperla.net/bfi/internal/scanner"
	"nickandperla.net/bfi/internal/vm"
)

func machine(src string, opts ...vm.Option) *vm.Machine {
	return vm.New(scanner.Lex(src, true), opts...)
}

func TestRunBlockingFinishes(t *testing.T) {
	var out []byte
	m := machine("++++++[>++++++++<-]>+.", vm.WithOutput(func(b byte) { out = append(out, b) }))
	outcome, err := New(m).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeFinished {
		t.Errorf("expected finished, got %s", outcome)
	}
	if string(out) != "1" {
		t.Errorf("expected '1', got %q", out)
	}
}

func TestRunTimedFinishes(t *testing.T) {
	m := machine("+++")
	steps := 0
	r := New(m, WithInterval(time.Millisecond), WithObserver(func() { steps++ }))
	outcome, err := r.Run(context.Background())
	if err != nil || outcome != OutcomeFinished {
		t.Fatalf("expected finished, got %s %v", outcome, err)
	}
	if steps != 3 {
		t.Errorf("expected observer to see 3 steps, got %d", steps)
	}
}

func TestRunPausesOnBreakpoint(t *testing.T) {
	m := machine("+•+", vm.WithBreakpoints(true))
	r := New(m)
	outcome, err := r.Run(context.Background())
	if outcome != OutcomePaused {
		t.Fatalf("expected paused, got %s", outcome)
	}
	if kind, _ := vm.KindOf(err); kind != vm.Pause {
		t.Errorf("expected pause fault, got %v", err)
	}

	outcome, err = r.Run(context.Background())
	if err != nil || outcome != OutcomeFinished {
		t.Fatalf("expected resumed run to finish, got %s %v", outcome, err)
	}
	if m.Cell(0) != 2 {
		t.Errorf("expected 2, got %d", m.Cell(0))
	}
}

func TestRunHaltsOnFatal(t *testing.T) {
	m := machine("+]")
	outcome, err := New(m).Run(context.Background())
	if outcome != OutcomeHalted {
		t.Fatalf("expected halted, got %s", outcome)
	}
	if !vm.IsFatal(err) {
		t.Errorf("expected fatal fault, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	m := machine("+[]")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	outcome, err := New(m).Run(ctx)
	if outcome != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %s", outcome)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRunTimedCancelled(t *testing.T) {
	m := machine("+[]")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, _ := New(m, WithInterval(time.Hour)).Run(ctx)
	if outcome != OutcomeCancelled {
		t.Errorf("expected cancelled, got %s", outcome)
	}
}

func TestIntervalForSpeed(t *testing.T) {
	tests := []struct {
		speed int
		want  time.Duration
		ok    bool
	}{
		{0, 0, false},
		{-1, 0, false},
		{1, 100 * time.Millisecond, true},
		{10, 10 * time.Millisecond, true},
		{100, time.Millisecond, true},
		{500, time.Millisecond, true},
	}
	for _, tt := range tests {
		got, ok := IntervalForSpeed(tt.speed)
		if got != tt.want || ok != tt.ok {
			t.Errorf("IntervalForSpeed(%d) = %v, %v; want %v, %v", tt.speed, got, ok, tt.want, tt.ok)
		}
	}
}
