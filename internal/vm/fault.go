package vm

import (
	"errors"
	"fmt"
)

// FaultKind tells the host how to react to a Fault.
type FaultKind int

const (
	// Fatal faults halt the machine. Further steps repeat the fault.
	Fatal FaultKind = iota
	// Retry faults leave PC on the failing instruction so the next step
	// executes it again.
	Retry
	// Reported faults are informational; the instruction was consumed.
	Reported
	// Pause faults ask the host to stop stepping until told to resume.
	Pause
)

// String returns the name of the kind.
func (k FaultKind) String() string {
	switch k {
	case Fatal:
		return "FATAL"
	case Retry:
		return "RETRY"
	case Reported:
		return "REPORTED"
	case Pause:
		return "PAUSE"
	}
	return "UNKNOWN"
}

// Fault messages.
const (
	MsgWrapLeft    = "Cannot wrap left"
	MsgWrapRight   = "Cannot wrap right"
	MsgNoInput     = "No input found"
	MsgSearchClose = "Reached end of code while searching ']'"
	MsgSearchOpen  = "Reached start of code while searching '['"
	MsgBreakpoint  = "Breakpoint reached"
	MsgDirectLoop  = "Loop instructions cannot be executed directly"
)

// ErrNoInput is returned by input collaborators that have nothing to give.
var ErrNoInput = errors.New("no input available")

// Fault is an execution error raised by Step or Execute.
type Fault struct {
	Kind    FaultKind
	Message string
	PC      int   // index of the faulting instruction, -1 for Execute
	Offset  int   // source offset of the faulting instruction, -1 if unknown
	Err     error // underlying collaborator error, if any
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Fault) Unwrap() error { return f.Err }

// IsFatal reports whether err is a fatal Fault.
func IsFatal(err error) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == Fatal
}

// KindOf returns the kind of the Fault in err's chain.
func KindOf(err error) (FaultKind, bool) {
	var f *Fault
	if !errors.As(err, &f) {
		return 0, false
	}
	return f.Kind, true
}
