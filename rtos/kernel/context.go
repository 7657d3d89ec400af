package kernel

import (
	"time"

	"cadence/rtos/timer"
)

// Context is handed to a task entry for the duration of one activation.
type Context struct {
	k       *Kernel
	task    TaskID
	yielded bool
}

// Now returns the tick at which the body runs.
func (c *Context) Now() uint64 { return c.k.timer.Now() }

// Time returns the time since boot.
func (c *Context) Time() time.Duration { return c.k.timer.Elapsed() }

// Task returns the running task's ID.
func (c *Context) Task() TaskID { return c.task }

// Name returns the running task's name.
func (c *Context) Name() string { return c.k.table.descs[c.task].Name }

// Release returns the release tick of this activation.
func (c *Context) Release() uint64 { return c.k.tcbs[c.task].deadline.Start }

// Deadline returns this activation's window.
func (c *Context) Deadline() timer.Deadline { return c.k.tcbs[c.task].deadline }

// Shared returns Config.Shared.
func (c *Context) Shared() any { return c.k.cfg.Shared }

// Spend declares d of CPU time for this activation. Every whole tick
// declared keeps the activation on the CPU for one more tick boundary, where
// higher-priority releases may preempt it.
func (c *Context) Spend(d time.Duration) {
	if c.yielded || d <= 0 {
		return
	}
	c.k.tcbs[c.task].used += d
}

// Yield completes the activation as soon as the body returns. Time already
// declared still counts against the budget but no longer holds the CPU, and
// later Spend calls are ignored.
func (c *Context) Yield() { c.yielded = true }
