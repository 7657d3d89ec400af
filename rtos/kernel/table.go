package kernel

import (
	"fmt"
	"time"
)

const (
	// MinStackBytes fits the guard word and the initial exception frame with
	// room to spare.
	MinStackBytes = 256
	MaxStackBytes = 8 << 10
	// StackArenaBytes is the memory reserved for all task stacks.
	StackArenaBytes = 16 << 10

	stackAlign = 8
)

// StackRegion is a task's slice of the stack arena.
type StackRegion struct {
	Offset uint32
	Size   uint32
}

// Table is the validated, immutable task set.
type Table struct {
	tick time.Duration
	n    int

	descs  [MaxTasks]Descriptor
	period [MaxTasks]uint64
	order  [MaxTasks]TaskID
	stacks [MaxTasks]StackRegion
}

// NewTable validates descs against a tick interval and lays out their stack
// regions. Descriptor i gets TaskID i.
func NewTable(tick time.Duration, descs ...Descriptor) (*Table, error) {
	if tick <= 0 {
		return nil, &ConfigError{Task: -1, Field: "tick", Reason: "must be positive"}
	}
	if len(descs) == 0 {
		return nil, &ConfigError{Task: -1, Field: "tasks", Reason: "table is empty"}
	}
	if len(descs) > MaxTasks {
		return nil, &ConfigError{Task: -1, Field: "tasks", Reason: fmt.Sprintf("%d tasks exceed the limit of %d", len(descs), MaxTasks)}
	}

	t := &Table{tick: tick, n: len(descs)}
	var off uint32
	for i, d := range descs {
		fail := func(field, reason string) error {
			return &ConfigError{Task: i, Name: d.Name, Field: field, Reason: reason}
		}
		switch {
		case d.Entry == nil:
			return nil, fail("entry", "missing")
		case d.Period <= 0:
			return nil, fail("period", "must be positive")
		case d.Period%tick != 0:
			return nil, fail("period", fmt.Sprintf("%v is not a multiple of the %v tick", d.Period, tick))
		case d.WCET <= 0:
			return nil, fail("wcet", "must be positive")
		case d.StackSize < MinStackBytes || d.StackSize > MaxStackBytes:
			return nil, fail("stack", fmt.Sprintf("%d bytes outside [%d, %d]", d.StackSize, MinStackBytes, MaxStackBytes))
		}

		size := (d.StackSize + stackAlign - 1) &^ (stackAlign - 1)
		if uint64(off)+uint64(size) > StackArenaBytes {
			return nil, fail("stack", fmt.Sprintf("stack arena of %d bytes exhausted", StackArenaBytes))
		}

		d.Name = shortName(d.Name)
		t.descs[i] = d
		t.period[i] = uint64(d.Period / tick)
		t.stacks[i] = StackRegion{Offset: off, Size: size}
		off += size
	}

	// Rate-monotonic order: ascending period, ties by lower index. The
	// insertion sort is stable, which gives the tie rule for free.
	for i := 0; i < t.n; i++ {
		id := TaskID(i)
		j := i
		for j > 0 && t.period[t.order[j-1]] > t.period[id] {
			t.order[j] = t.order[j-1]
			j--
		}
		t.order[j] = id
	}
	return t, nil
}

// Len returns the number of tasks.
func (t *Table) Len() int { return t.n }

// Tick returns the tick interval the table was validated against.
func (t *Table) Tick() time.Duration { return t.tick }

// Descriptor returns the descriptor of id.
func (t *Table) Descriptor(id TaskID) Descriptor { return t.descs[id] }

// PeriodTicks returns the period of id in ticks.
func (t *Table) PeriodTicks(id TaskID) uint64 { return t.period[id] }

// StackRegion returns the arena region reserved for id.
func (t *Table) StackRegion(id TaskID) StackRegion { return t.stacks[id] }

// Order returns task IDs from highest to lowest priority.
func (t *Table) Order() []TaskID {
	return append([]TaskID(nil), t.order[:t.n]...)
}

// StackBytes returns the arena bytes used by all regions.
func (t *Table) StackBytes() uint32 {
	if t.n == 0 {
		return 0
	}
	last := t.stacks[t.n-1]
	return last.Offset + last.Size
}
