// Package spsc provides the fixed-capacity ring used to hand data between
// exactly one producer task and one consumer task.
package spsc

import (
	"errors"
	"sync/atomic"
)

// ErrCapacity is returned for backing storage whose length is not a non-zero
// power of two.
var ErrCapacity = errors.New("spsc: capacity must be a non-zero power of two")

// ChannelID names a statically declared ring.
type ChannelID uint8

// Mode selects what Push does on a full ring.
type Mode uint8

const (
	// Reject makes Push fail on a full ring; nothing is overwritten.
	Reject Mode = iota
	// Overwrite makes Push always succeed, discarding the oldest unread element.
	Overwrite
)

func (m Mode) String() string {
	switch m {
	case Reject:
		return "reject"
	case Overwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// Ring is a single-producer/single-consumer queue over caller-owned storage.
//
// Indices are free-running uint32 counters. The slot is index&(cap-1) and the
// occupancy is write-read in modulo-2^32 arithmetic, which stays in [0, cap]
// because 2^32 is a multiple of 2*cap. write is stored only by the producer,
// read only by the consumer. In Overwrite mode the producer additionally owns
// floor, the index of the oldest element still valid; the consumer catches up
// to it instead of the producer ever touching read.
//
// Overwrite mode reads a slot that the producer may recycle concurrently and
// discards the value when floor moved past it, so it relies on producer and
// consumer not running truly in parallel (true for tasks of one kernel).
type Ring[T any] struct {
	_ [0]func() // prevent accidental copying.

	id   ChannelID
	mode Mode
	buf  []T
	mask uint32
	size uint32

	write atomic.Uint32
	floor atomic.Uint32
	read  atomic.Uint32

	dropped atomic.Uint32
}

// New declares a ring over buf.
func New[T any](id ChannelID, buf []T, mode Mode) (*Ring[T], error) {
	r := &Ring[T]{}
	if err := r.Init(id, buf, mode); err != nil {
		return nil, err
	}
	return r, nil
}

// Init declares a zero Ring over buf, typically a package-level array:
//
//	var samples [256]int16
//	var audio spsc.Ring[int16]
//	_ = audio.Init(1, samples[:], spsc.Reject)
func (r *Ring[T]) Init(id ChannelID, buf []T, mode Mode) error {
	n := uint64(len(buf))
	if n == 0 || n&(n-1) != 0 || n > 1<<31 {
		return ErrCapacity
	}
	r.id = id
	r.mode = mode
	r.buf = buf
	r.size = uint32(n)
	r.mask = uint32(n - 1)
	r.write.Store(0)
	r.floor.Store(0)
	r.read.Store(0)
	r.dropped.Store(0)
	return nil
}

// Push appends v. Producer only.
//
// It reports false when the ring is full in Reject mode; the contents are
// left untouched.
func (r *Ring[T]) Push(v T) bool {
	w := r.write.Load()
	rd := r.read.Load()
	if r.mode == Overwrite {
		if f := r.floor.Load(); int32(f-rd) > 0 {
			rd = f
		}
		if w-rd >= r.size {
			// Retire the oldest element before its slot is reused.
			r.floor.Store(rd + 1)
		}
	} else if w-rd >= r.size {
		return false
	}
	r.buf[w&r.mask] = v
	r.write.Store(w + 1)
	return true
}

// Pop removes the oldest unread element. Consumer only.
//
// It reports false on an empty ring without moving any index.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	rd := r.read.Load()
	for {
		if r.mode == Overwrite {
			if f := r.floor.Load(); int32(f-rd) > 0 {
				r.dropped.Add(f - rd)
				rd = f
				r.read.Store(rd)
			}
		}
		if r.write.Load() == rd {
			return zero, false
		}
		v := r.buf[rd&r.mask]
		if r.mode == Overwrite {
			if f := r.floor.Load(); int32(f-rd) > 0 {
				continue
			}
		}
		r.read.Store(rd + 1)
		return v, true
	}
}

// Len returns the number of unread elements. It is a snapshot when called
// from a side other than the consumer.
func (r *Ring[T]) Len() int {
	return int(r.used())
}

func (r *Ring[T]) used() uint32 {
	rd := r.read.Load()
	if r.mode == Overwrite {
		if f := r.floor.Load(); int32(f-rd) > 0 {
			rd = f
		}
	}
	return r.write.Load() - rd
}

// Cap returns the number of slots.
func (r *Ring[T]) Cap() int { return int(r.size) }

// Empty reports whether there is nothing to pop.
func (r *Ring[T]) Empty() bool { return r.used() == 0 }

// Full reports whether a Reject-mode Push would fail.
func (r *Ring[T]) Full() bool { return r.used() >= r.size }

// ID returns the channel identifier given at declaration.
func (r *Ring[T]) ID() ChannelID { return r.id }

// Mode returns the full-ring behaviour.
func (r *Ring[T]) Mode() Mode { return r.mode }

// Dropped returns the number of elements discarded by Overwrite pushes that
// the consumer has skipped so far.
func (r *Ring[T]) Dropped() uint32 { return r.dropped.Load() }

// State is a snapshot of the ring indices for diagnostics.
type State struct {
	Capacity uint32
	Write    uint32
	Read     uint32
	Floor    uint32
	Used     uint32
	Dropped  uint32
}

// State returns a snapshot of the ring indices.
func (r *Ring[T]) State() State {
	return State{
		Capacity: r.size,
		Write:    r.write.Load(),
		Read:     r.read.Load(),
		Floor:    r.floor.Load(),
		Used:     r.used(),
		Dropped:  r.dropped.Load(),
	}
}
