// Package timer turns a hardware tick counter into the kernel's time base.
package timer

import "time"

// Source is a monotonic tick counter fed by a periodic hardware interrupt.
//
// The hardware side is a free-running counter: each interrupt carries the
// counter value it observed. Comparing it with the last value seen lets the
// source notice interrupts the hardware coalesced, so the kernel can deliver
// the ticks it missed instead of drifting from wall-clock time.
type Source struct {
	interval time.Duration

	now    uint64
	last   uint64
	primed bool

	missed uint64
	stale  uint64
}

// New returns a source whose ticks are interval apart.
func New(interval time.Duration) Source {
	return Source{interval: interval}
}

// Sync records the hardware counter value at boot.
func (s *Source) Sync(count uint64) {
	s.last = count
	s.primed = true
}

// Observe reports how many ticks elapsed since the last observed counter
// value. Stale or out-of-order values yield 0 and are counted; a jump larger
// than one means interrupts were coalesced and the surplus is counted as
// missed.
func (s *Source) Observe(count uint64) uint64 {
	if !s.primed {
		// First interrupt without a Sync: the counter started one tick ago.
		s.primed = true
		if count == 0 {
			s.stale++
			return 0
		}
		s.last = count - 1
	}
	if count <= s.last {
		s.stale++
		return 0
	}
	delta := count - s.last
	s.last = count
	s.missed += delta - 1
	return delta
}

// Advance moves the time base forward by exactly one tick. Only the kernel
// tick handler calls it.
func (s *Source) Advance() uint64 {
	s.now++
	return s.now
}

// AdvanceBy moves the time base forward by n ticks at once, for interrupts
// that were coalesced by the hardware.
func (s *Source) AdvanceBy(n uint64) uint64 {
	s.now += n
	return s.now
}

// Now returns ticks since boot.
func (s *Source) Now() uint64 { return s.now }

// Interval returns the configured tick interval.
func (s *Source) Interval() time.Duration { return s.interval }

// Elapsed returns the time since boot.
func (s *Source) Elapsed() time.Duration {
	return time.Duration(s.now) * s.interval
}

// ElapsedSince returns the ticks elapsed since ref.
func (s *Source) ElapsedSince(ref uint64) uint64 {
	return s.now - ref
}

// Missed returns the number of ticks recovered from coalesced interrupts.
func (s *Source) Missed() uint64 { return s.missed }

// Stale returns the number of counter values ignored as out of order.
func (s *Source) Stale() uint64 { return s.stale }

// Ticks converts d to whole ticks, rounding down.
func (s *Source) Ticks(d time.Duration) uint64 {
	if d <= 0 || s.interval <= 0 {
		return 0
	}
	return uint64(d / s.interval)
}
