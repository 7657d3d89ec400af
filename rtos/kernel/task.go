package kernel

import (
	"time"
	"unicode/utf8"
)

// MaxTasks bounds the static task table.
const MaxTasks = 16

// TaskID is a task's index in the table.
type TaskID uint8

// Idle is the current-task sentinel when no task holds the CPU.
const Idle TaskID = 0xFF

// TaskState is the per-task scheduling state.
type TaskState uint8

const (
	// Waiting means the task's current activation is done and its next
	// release lies in the future.
	Waiting TaskState = iota
	Ready
	Running
)

func (s TaskState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Descriptor declares one periodic task. It is immutable once the table is
// built.
type Descriptor struct {
	// Name is shown in diagnostics; only the first eight bytes are kept.
	Name string
	// Entry runs one activation to completion.
	Entry func(*Context)
	// Period is both the release interval and the relative deadline.
	Period time.Duration
	// WCET is the declared worst-case execution time. It feeds the
	// schedulability check and budget reporting, nothing more.
	WCET time.Duration
	// StackSize is the size of the task's stack region in bytes.
	StackSize uint32
	// FPU marks tasks whose context includes the floating-point bank.
	FPU bool
}

// Utilization returns WCET/Period.
func (d Descriptor) Utilization() float64 {
	if d.Period <= 0 {
		return 0
	}
	return float64(d.WCET) / float64(d.Period)
}

// FrequencyHz returns the activation rate.
func (d Descriptor) FrequencyHz() float64 {
	if d.Period <= 0 {
		return 0
	}
	return float64(time.Second) / float64(d.Period)
}

const maxNameBytes = 8

// shortName truncates s to maxNameBytes without splitting a rune.
func shortName(s string) string {
	if len(s) <= maxNameBytes {
		return s
	}
	n := maxNameBytes
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
