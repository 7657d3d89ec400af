//go:build !tinygo

package hal

import "time"

// hostTime converts wall-clock progress, sampled by the runner, into counter
// ticks. A full channel drops ticks; the counter keeps counting.
type hostTime struct {
	ch       chan uint64
	seq      uint64
	interval time.Duration
	limit    uint64

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), interval: time.Millisecond}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) Interval() time.Duration { return t.interval }

// step emits the ticks that elapsed since the previous call. The first call
// emits n. It reports true once the configured tick limit is reached.
func (t *hostTime) step(n uint64) bool {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		return t.stepN(n)
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / t.interval)
	if ticks == 0 {
		return t.done()
	}
	t.acc = t.acc % t.interval
	return t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) bool {
	for i := uint64(0); i < n && !t.done(); i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
	return t.done()
}

func (t *hostTime) done() bool {
	return t.limit > 0 && t.seq >= t.limit
}
