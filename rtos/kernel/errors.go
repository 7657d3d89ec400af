package kernel

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig  = errors.New("kernel: invalid configuration")
	ErrUnschedulable  = errors.New("kernel: task set is not schedulable")
	ErrHalted         = errors.New("kernel: halted")
	ErrAlreadyStarted = errors.New("kernel: already started")
	ErrTicksClosed    = errors.New("kernel: tick source closed")
)

// ConfigError describes a task table that cannot be built.
type ConfigError struct {
	// Task is the offending descriptor index, or -1 for table-wide problems.
	Task   int
	Name   string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Task < 0 {
		return fmt.Sprintf("kernel: invalid configuration: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("kernel: invalid configuration: task %d (%s): %s: %s", e.Task, e.Name, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// SchedulabilityError is returned by Boot and Start when the task set fails
// the boot-time check. No task has been dispatched when it is returned.
type SchedulabilityError struct {
	Analysis Analysis
	// Name of the offending task when a WCET exceeds its period.
	Name string
}

func (e *SchedulabilityError) Error() string {
	a := e.Analysis
	if a.Offender != Idle {
		return fmt.Sprintf("kernel: task %d (%s) is not schedulable: wcet exceeds period", a.Offender, e.Name)
	}
	return fmt.Sprintf("kernel: task set is not schedulable: U=%.4f exceeds %s limit %.4f (n=%d)",
		a.Utilization, a.Policy, a.Limit, a.Tasks)
}

func (e *SchedulabilityError) Unwrap() error { return ErrUnschedulable }

// HaltReason describes why the kernel stopped dispatching.
type HaltReason uint8

const (
	HaltPanic HaltReason = iota + 1
	HaltOverrunLimit
	HaltStackGuard
	HaltContext
)

func (r HaltReason) String() string {
	switch r {
	case HaltPanic:
		return "task panic"
	case HaltOverrunLimit:
		return "overrun limit reached"
	case HaltStackGuard:
		return "stack guard corrupted"
	case HaltContext:
		return "context restore failed"
	default:
		return "unknown"
	}
}

// HaltError is the fatal stop of a running kernel.
type HaltError struct {
	Reason HaltReason
	Task   TaskID
	Name   string
	Tick   uint64
	// Value is the recovered panic value or the underlying error.
	Value any
	Stack []byte
}

func (e *HaltError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("kernel: halted at tick %d: task %d (%s): %s: %v", e.Tick, e.Task, e.Name, e.Reason, e.Value)
	}
	return fmt.Sprintf("kernel: halted at tick %d: task %d (%s): %s", e.Tick, e.Task, e.Name, e.Reason)
}

func (e *HaltError) Unwrap() error { return ErrHalted }
