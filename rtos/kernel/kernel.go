// Package kernel is a preemptive rate-monotonic scheduler for a fixed set of
// periodic tasks.
//
// Task bodies are ordinary function calls made from the tick handler. A body
// declares the CPU time it consumes with Context.Spend; an activation that
// declared whole ticks stays on the CPU across those tick boundaries, where a
// higher-priority release preempts it through the context switch.
package kernel

import (
	"context"
	"encoding/binary"
	"time"
	"unsafe"

	"cadence/rtos/ctxsw"
	"cadence/rtos/timer"
)

// Hardware is what the kernel needs from the platform.
type Hardware interface {
	// Ticks delivers the free-running counter value of each timer interrupt.
	Ticks() <-chan uint64
	DisableInterrupts() uintptr
	RestoreInterrupts(state uintptr)
}

// Config tunes kernel policy. The zero value is the conservative default.
type Config struct {
	Policy Policy
	// OverrunLimit halts the kernel once any task accumulates this many
	// overruns. Zero keeps running and only counts them.
	OverrunLimit uint32
	// Shared is handed to every task body through Context.Shared.
	Shared  any
	OnEvent func(Event)
	OnHalt  func(*HaltError)
}

// Lifecycle is the kernel-wide state.
type Lifecycle uint8

const (
	LifecycleUninitialized Lifecycle = iota
	LifecycleAnalyzing
	LifecycleRunning
	LifecycleHalted
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleUninitialized:
		return "uninitialized"
	case LifecycleAnalyzing:
		return "analyzing"
	case LifecycleRunning:
		return "running"
	case LifecycleHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Simulated memory map for the context frames built on hosted targets.
const (
	stackBase   uint32 = 0x20000000
	entryBase   uint32 = 0x08000000
	entryStride uint32 = 0x100

	stackGuard uint32 = 0xDEADC0DE
)

// TaskCounters are per-task totals since boot.
type TaskCounters struct {
	Activations     uint32
	Completions     uint32
	Preemptions     uint32
	Overruns        uint32
	BudgetOverruns  uint32
	LateCompletions uint32
}

type tcb struct {
	state       TaskState
	nextRelease uint64
	deadline    timer.Deadline

	started   bool
	remaining uint64
	used      time.Duration

	saved ctxsw.Blob

	TaskCounters
}

// Kernel owns the task control blocks, the time base and the stack arena.
type Kernel struct {
	hw    Hardware
	table *Table
	cfg   Config

	lifecycle Lifecycle
	analysis  Analysis
	halt      *HaltError

	timer   timer.Source
	sw      ctxsw.Switcher
	current TaskID
	idle    bool
	tcbs    [MaxTasks]tcb
	ctx     Context

	ticks     uint64
	switches  uint64
	idleTicks uint64

	arena [StackArenaBytes]byte
}

type noHardware struct{}

func (noHardware) Ticks() <-chan uint64       { return nil }
func (noHardware) DisableInterrupts() uintptr { return 0 }
func (noHardware) RestoreInterrupts(uintptr)  {}

// Initialize binds hw and the task table. Nothing runs until Boot or Start.
// A nil hw is allowed for simulation through RunFor.
func Initialize(hw Hardware, t *Table, cfg Config) *Kernel {
	if hw == nil {
		hw = noHardware{}
	}
	k := &Kernel{
		hw:      hw,
		table:   t,
		cfg:     cfg,
		timer:   timer.New(t.tick),
		current: Idle,
	}
	k.ctx.k = k
	return k
}

// Utilization returns U for the task table.
func (k *Kernel) Utilization() float64 { return Analyze(k.table, k.cfg.Policy).Utilization }

// RMSBound returns B(n) for the task table.
func (k *Kernel) RMSBound() float64 { return RMSBound(k.table.n) }

// Analysis runs the schedulability check without starting anything.
func (k *Kernel) Analysis() Analysis { return Analyze(k.table, k.cfg.Policy) }

// Table returns the task table.
func (k *Kernel) Table() *Table { return k.table }

// Boot runs the schedulability check and, when it passes, releases every
// task at tick 0 and dispatches the first slot. An unschedulable set returns
// a *SchedulabilityError with no task body invoked.
func (k *Kernel) Boot() error {
	switch k.lifecycle {
	case LifecycleHalted:
		return k.halt
	case LifecycleAnalyzing, LifecycleRunning:
		return ErrAlreadyStarted
	}

	k.lifecycle = LifecycleAnalyzing
	k.analysis = Analyze(k.table, k.cfg.Policy)
	if err := k.analysis.Err(k.table); err != nil {
		k.lifecycle = LifecycleUninitialized
		return err
	}

	for i := 0; i < k.table.n; i++ {
		r := k.table.stacks[i]
		binary.LittleEndian.PutUint32(k.arena[r.Offset:], stackGuard)
		k.tcbs[i] = tcb{state: Waiting}
	}
	k.lifecycle = LifecycleRunning
	k.schedule()
	if k.halt != nil {
		return k.halt
	}
	return nil
}

// Start boots the kernel and then runs the tick handler for every hardware
// tick until ctx is done or the kernel halts. It returns a
// *SchedulabilityError when the boot check fails, a *HaltError on a fatal
// halt and ctx.Err() on cancellation.
func (k *Kernel) Start(ctx context.Context) error {
	if err := k.Boot(); err != nil {
		return err
	}
	// Hardware counters start at zero with the kernel.
	k.timer.Sync(0)

	ticks := k.hw.Ticks()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case count, ok := <-ticks:
			if !ok {
				return ErrTicksClosed
			}
			k.advance(k.timer.Observe(count))
			if k.halt != nil {
				return k.halt
			}
		}
	}
}

// RunFor drives n tick slots without hardware. When the kernel has not been
// booted yet, the boot slot at tick 0 counts as the first of the n.
func (k *Kernel) RunFor(n uint64) (Stats, error) {
	if n > 0 && k.lifecycle == LifecycleUninitialized {
		if err := k.Boot(); err != nil {
			return k.Stats(), err
		}
		n--
	}
	for ; n > 0 && k.lifecycle == LifecycleRunning; n-- {
		k.Tick()
	}
	if k.halt != nil {
		return k.Stats(), k.halt
	}
	return k.Stats(), nil
}

// Tick is the timer interrupt body: advance time, account the slot that just
// ended, detect releases and dispatch.
func (k *Kernel) Tick() { k.advance(1) }

// advance runs the tick handler once for n elapsed ticks. Coalesced
// interrupts move time forward in one step followed by a single release
// pass, so a task that fell behind is released once and the lag is counted
// as an overrun instead of replaying every missed activation.
func (k *Kernel) advance(n uint64) {
	if n == 0 || k.lifecycle != LifecycleRunning {
		return
	}
	from := k.timer.Now()
	k.timer.AdvanceBy(n)
	k.ticks += n

	var used uint64
	if id := k.current; id != Idle {
		t := &k.tcbs[id]
		used = min(t.remaining, n)
		t.remaining -= used
		if t.remaining == 0 {
			k.complete(id, from+max(used, 1))
		}
	}
	k.idleTicks += n - used
	if k.lifecycle != LifecycleRunning {
		return
	}
	k.schedule()
}

// Yield completes the running activation early and reschedules without
// advancing time.
func (k *Kernel) Yield() {
	if k.lifecycle != LifecycleRunning || k.current == Idle {
		return
	}
	now := k.timer.Now()
	k.complete(k.current, now)
	if k.lifecycle != LifecycleRunning {
		return
	}
	k.dispatch(now)
}

func (k *Kernel) schedule() {
	now := k.timer.Now()
	k.release(now)
	if k.lifecycle != LifecycleRunning {
		return
	}
	k.dispatch(now)
}

// release advances every due task by exactly one period. A task whose
// previous activation is still in flight keeps running and the release is
// counted as an overrun. A task that is still due after the advance has
// lagged more than a period behind and is counted as an overrun too. Other
// tasks' arithmetic is untouched.
func (k *Kernel) release(now uint64) {
	mask := k.hw.DisableInterrupts()
	defer k.hw.RestoreInterrupts(mask)

	for i := 0; i < k.table.n; i++ {
		t := &k.tcbs[i]
		if t.nextRelease > now {
			continue
		}
		id := TaskID(i)
		period := k.table.period[i]

		if t.state != Waiting {
			t.nextRelease += period
			if !k.overrun(id, now) {
				return
			}
			continue
		}

		t.state = Ready
		t.started = false
		t.deadline = timer.NewDeadline(t.nextRelease, period)
		t.nextRelease += period
		k.emit(Event{Kind: EventRelease, Task: id, Tick: now})
		if t.nextRelease <= now && !k.overrun(id, now) {
			return
		}
	}
}

// overrun counts one overrun against id and reports false when that trips
// the configured limit.
func (k *Kernel) overrun(id TaskID, now uint64) bool {
	t := &k.tcbs[id]
	t.Overruns++
	k.emit(Event{Kind: EventOverrun, Task: id, Tick: now, Count: t.Overruns})
	if lim := k.cfg.OverrunLimit; lim > 0 && t.Overruns >= lim {
		k.haltWith(&HaltError{Reason: HaltOverrunLimit, Task: id, Tick: now})
		return false
	}
	return true
}

// dispatch hands the CPU to the highest-priority ready task. Activations
// that finish within the current slot complete immediately and the next
// candidate gets the rest of the slot.
func (k *Kernel) dispatch(now uint64) {
	for k.lifecycle == LifecycleRunning {
		next := k.pick()
		if next == Idle {
			if !k.idle {
				k.idle = true
				k.emit(Event{Kind: EventIdle, Task: Idle, Tick: now})
			}
			return
		}
		k.idle = false
		if next == k.current {
			return
		}
		if !k.switchTo(next, now) {
			return
		}
		if k.tcbs[next].remaining > 0 {
			return
		}
		k.complete(next, now)
	}
}

func (k *Kernel) pick() TaskID {
	for _, id := range k.table.order[:k.table.n] {
		if s := k.tcbs[id].state; s == Ready || s == Running {
			return id
		}
	}
	return Idle
}

// switchTo saves the running task, if any, and loads next. A fresh
// activation gets an initial frame and its body is run to completion.
func (k *Kernel) switchTo(next TaskID, now uint64) bool {
	t := &k.tcbs[next]
	d := &k.table.descs[next]
	prev := k.current
	fresh := !t.started

	mask := k.hw.DisableInterrupts()
	if prev != Idle {
		p := &k.tcbs[prev]
		k.sw.Save(&p.saved, k.table.descs[prev].FPU)
		p.state = Ready
		p.Preemptions++
		k.current = Idle
	}
	var err error
	if fresh {
		r := k.table.stacks[next]
		stack := k.arena[r.Offset : r.Offset+r.Size]
		err = k.sw.Init(&t.saved, stack, stackBase+r.Offset, entryBase+uint32(next)*entryStride, d.FPU)
	}
	if err == nil {
		err = k.sw.Restore(&t.saved)
	}
	if err == nil {
		t.state = Running
		k.current = next
		k.switches++
	}
	k.hw.RestoreInterrupts(mask)

	if prev != Idle {
		k.emit(Event{Kind: EventPreempt, Task: prev, Tick: now, Count: k.tcbs[prev].Preemptions})
		if !k.guardIntact(prev) {
			k.haltWith(&HaltError{Reason: HaltStackGuard, Task: prev, Tick: now})
			return false
		}
	}
	if err != nil {
		k.haltWith(&HaltError{Reason: HaltContext, Task: next, Tick: now, Value: err})
		return false
	}

	if !fresh {
		k.emit(Event{Kind: EventResume, Task: next, Tick: now})
		return true
	}

	t.started = true
	t.used = 0
	t.Activations++
	k.emit(Event{Kind: EventStart, Task: next, Tick: now, Count: t.Activations})

	k.ctx.task = next
	k.ctx.yielded = false
	if !k.call(next, d.Entry) {
		return false
	}
	if t.used > d.WCET {
		t.BudgetOverruns++
		k.emit(Event{Kind: EventBudgetOverrun, Task: next, Tick: now, Count: t.BudgetOverruns})
	}
	if k.ctx.yielded {
		t.remaining = 0
	} else {
		// A fraction of a tick finishes inside the slot it started in.
		t.remaining = uint64(t.used / k.table.tick)
	}
	return true
}

func (k *Kernel) call(id TaskID, entry func(*Context)) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			k.haltWith(&HaltError{
				Reason: HaltPanic,
				Task:   id,
				Tick:   k.timer.Now(),
				Value:  r,
				Stack:  captureStack(),
			})
			ok = false
		}
	}()
	entry(&k.ctx)
	return true
}

func (k *Kernel) complete(id TaskID, now uint64) {
	t := &k.tcbs[id]
	late := !t.deadline.Met(now)
	t.state = Waiting
	t.remaining = 0
	t.saved.Invalidate()
	t.Completions++
	if late {
		t.LateCompletions++
	}
	if k.current == id {
		k.current = Idle
	}
	k.emit(Event{Kind: EventComplete, Task: id, Tick: now, Late: late, Count: t.Completions})
	if !k.guardIntact(id) {
		k.haltWith(&HaltError{Reason: HaltStackGuard, Task: id, Tick: now})
	}
}

func (k *Kernel) guardIntact(id TaskID) bool {
	r := k.table.stacks[id]
	return binary.LittleEndian.Uint32(k.arena[r.Offset:]) == stackGuard
}

func (k *Kernel) haltWith(e *HaltError) {
	if k.lifecycle == LifecycleHalted {
		return
	}
	if e.Task != Idle {
		e.Name = k.table.descs[e.Task].Name
	}
	k.lifecycle = LifecycleHalted
	k.halt = e
	k.current = Idle
	if k.cfg.OnHalt != nil {
		k.cfg.OnHalt(e)
	}
}

func (k *Kernel) emit(e Event) {
	if k.cfg.OnEvent != nil {
		k.cfg.OnEvent(e)
	}
}

// Now returns ticks since boot.
func (k *Kernel) Now() uint64 { return k.timer.Now() }

// Current returns the task holding the CPU, or Idle.
func (k *Kernel) Current() TaskID { return k.current }

// State returns the kernel lifecycle state.
func (k *Kernel) State() Lifecycle { return k.lifecycle }

// Halt returns the fatal error that stopped the kernel, if any.
func (k *Kernel) Halt() *HaltError { return k.halt }

// Stats is a snapshot of kernel-wide counters.
type Stats struct {
	Lifecycle       Lifecycle
	Now             uint64
	Ticks           uint64
	IdleTicks       uint64
	ContextSwitches uint64
	MissedTicks     uint64
	StaleTicks      uint64
	Totals          TaskCounters
}

// Stats returns kernel-wide counters with the per-task totals summed.
func (k *Kernel) Stats() Stats {
	s := Stats{
		Lifecycle:       k.lifecycle,
		Now:             k.timer.Now(),
		Ticks:           k.ticks,
		IdleTicks:       k.idleTicks,
		ContextSwitches: k.switches,
		MissedTicks:     k.timer.Missed(),
		StaleTicks:      k.timer.Stale(),
	}
	for i := 0; i < k.table.n; i++ {
		c := k.tcbs[i].TaskCounters
		s.Totals.Activations += c.Activations
		s.Totals.Completions += c.Completions
		s.Totals.Preemptions += c.Preemptions
		s.Totals.Overruns += c.Overruns
		s.Totals.BudgetOverruns += c.BudgetOverruns
		s.Totals.LateCompletions += c.LateCompletions
	}
	return s
}

// TaskStats is a snapshot of one task control block.
type TaskStats struct {
	ID          TaskID
	Name        string
	State       TaskState
	NextRelease uint64
	Deadline    timer.Deadline
	TaskCounters
}

// TaskStats returns the control block snapshot of id.
func (k *Kernel) TaskStats(id TaskID) TaskStats {
	t := &k.tcbs[id]
	return TaskStats{
		ID:           id,
		Name:         k.table.descs[id].Name,
		State:        t.state,
		NextRelease:  t.nextRelease,
		Deadline:     t.deadline,
		TaskCounters: t.TaskCounters,
	}
}

// Footprint is the static memory held by the kernel.
type Footprint struct {
	// Kernel is the whole Kernel value, stack arena included.
	Kernel uintptr
	TCB    uintptr
	// Stacks is the arena space the task table reserves.
	Stacks uint32
	Arena  uint32
}

// Footprint reports static memory use.
func (k *Kernel) Footprint() Footprint {
	return Footprint{
		Kernel: unsafe.Sizeof(*k),
		TCB:    unsafe.Sizeof(k.tcbs[0]),
		Stacks: k.table.StackBytes(),
		Arena:  StackArenaBytes,
	}
}
