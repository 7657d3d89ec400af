package spsc

import (
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"testing"
)

func newRing(t *testing.T, n int, mode Mode) *Ring[uint32] {
	t.Helper()
	r, err := New(1, make([]uint32, n), mode)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestRingCapacityMustBePowerOfTwo(t *testing.T) {
	for _, n := range []int{0, 3, 6, 12, 100} {
		if _, err := New(0, make([]int, n), Reject); !errors.Is(err, ErrCapacity) {
			t.Fatalf("New(len=%d) error = %v, want ErrCapacity", n, err)
		}
	}
	for _, n := range []int{1, 2, 4, 1024} {
		if _, err := New(0, make([]int, n), Reject); err != nil {
			t.Fatalf("New(len=%d) error = %v, want nil", n, err)
		}
	}
}

func TestRingInitStatic(t *testing.T) {
	var storage [8]int16
	var r Ring[int16]
	if err := r.Init(7, storage[:], Reject); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if r.ID() != 7 || r.Cap() != 8 || r.Mode() != Reject {
		t.Fatalf("Init() id=%d cap=%d mode=%s, want 7/8/reject", r.ID(), r.Cap(), r.Mode())
	}
	if !r.Push(-3) {
		t.Fatal("Push() = false, want true")
	}
	if storage[0] != -3 {
		t.Fatalf("storage[0] = %d, want -3", storage[0])
	}
}

func TestRingFIFO(t *testing.T) {
	r := newRing(t, 8, Reject)
	for i := uint32(0); i < 5; i++ {
		if !r.Push(i) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}
	if got := r.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	for i := uint32(0); i < 5; i++ {
		v, ok := r.Pop()
		if !ok || v != i {
			t.Fatalf("Pop() = %d, %v, want %d, true", v, ok, i)
		}
	}
	if !r.Empty() {
		t.Fatal("Empty() = false after draining")
	}
}

func TestRingUsesEverySlot(t *testing.T) {
	r := newRing(t, 4, Reject)
	for i := uint32(0); i < 4; i++ {
		if !r.Push(i) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}
	if !r.Full() {
		t.Fatal("Full() = false with 4 of 4 slots used")
	}
}

func TestRingPushFullLeavesContents(t *testing.T) {
	r := newRing(t, 4, Reject)
	for i := uint32(10); i < 14; i++ {
		r.Push(i)
	}
	before := r.State()
	if r.Push(99) {
		t.Fatal("Push() on full ring = true, want false")
	}
	if after := r.State(); after != before {
		t.Fatalf("State() after rejected Push = %+v, want %+v", after, before)
	}
	for i := uint32(10); i < 14; i++ {
		if v, _ := r.Pop(); v != i {
			t.Fatalf("Pop() = %d, want %d", v, i)
		}
	}
}

func TestRingPopEmptyLeavesIndices(t *testing.T) {
	r := newRing(t, 4, Reject)
	r.Push(1)
	r.Pop()
	before := r.State()
	if v, ok := r.Pop(); ok {
		t.Fatalf("Pop() on empty ring = %d, true, want false", v)
	}
	if after := r.State(); after != before {
		t.Fatalf("State() after empty Pop = %+v, want %+v", after, before)
	}
}

func TestRingWraparound(t *testing.T) {
	r := newRing(t, 4, Reject)
	for round := uint32(0); round < 10; round++ {
		for i := uint32(0); i < 3; i++ {
			if !r.Push(round*10 + i) {
				t.Fatalf("round %d: Push(%d) = false", round, i)
			}
		}
		for i := uint32(0); i < 3; i++ {
			if v, ok := r.Pop(); !ok || v != round*10+i {
				t.Fatalf("round %d: Pop() = %d, %v, want %d", round, v, ok, round*10+i)
			}
		}
	}
}

func TestRingIndexCounterWrap(t *testing.T) {
	r := newRing(t, 4, Reject)
	start := ^uint32(0) - 1
	r.write.Store(start)
	r.read.Store(start)
	for i := uint32(0); i < 4; i++ {
		if !r.Push(i) {
			t.Fatalf("Push(%d) across counter wrap = false", i)
		}
	}
	if r.Push(4) {
		t.Fatal("Push() on full ring across counter wrap = true")
	}
	for i := uint32(0); i < 4; i++ {
		if v, ok := r.Pop(); !ok || v != i {
			t.Fatalf("Pop() = %d, %v, want %d", v, ok, i)
		}
	}
}

func TestRingOverwriteDiscardsOldest(t *testing.T) {
	r := newRing(t, 4, Overwrite)
	for i := uint32(1); i <= 6; i++ {
		if !r.Push(i) {
			t.Fatalf("Push(%d) = false in overwrite mode", i)
		}
	}
	if got := r.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
	for want := uint32(3); want <= 6; want++ {
		v, ok := r.Pop()
		if !ok || v != want {
			t.Fatalf("Pop() = %d, %v, want %d", v, ok, want)
		}
	}
	if got := r.Dropped(); got != 2 {
		t.Fatalf("Dropped() = %d, want 2", got)
	}
	if _, ok := r.Pop(); ok {
		t.Fatal("Pop() = true on drained ring")
	}
}

func TestRingOccupancyStaysInBounds(t *testing.T) {
	for _, mode := range []Mode{Reject, Overwrite} {
		r := newRing(t, 8, mode)
		rng := rand.New(rand.NewSource(42))
		var model []uint32
		next := uint32(0)

		for step := 0; step < 20_000; step++ {
			if rng.Intn(3) != 0 {
				ok := r.Push(next)
				switch {
				case mode == Reject && len(model) == 8:
					if ok {
						t.Fatalf("%s step %d: Push() on full ring = true", mode, step)
					}
				default:
					if !ok {
						t.Fatalf("%s step %d: Push() = false", mode, step)
					}
					model = append(model, next)
					if len(model) > 8 {
						model = model[1:]
					}
				}
				next++
			} else {
				v, ok := r.Pop()
				if len(model) == 0 {
					if ok {
						t.Fatalf("%s step %d: Pop() = %d on empty ring", mode, step, v)
					}
				} else {
					if !ok || v != model[0] {
						t.Fatalf("%s step %d: Pop() = %d, %v, want %d", mode, step, v, ok, model[0])
					}
					model = model[1:]
				}
			}

			if used := r.State().Used; used > 8 {
				t.Fatalf("%s step %d: occupancy %d outside [0, 8]", mode, step, used)
			}
			if got := r.Len(); got != len(model) {
				t.Fatalf("%s step %d: Len() = %d, want %d", mode, step, got, len(model))
			}
		}
	}
}

func TestRingConcurrentProducerConsumer(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(2)
	defer runtime.GOMAXPROCS(oldProcs)

	const total = 100_000
	r := newRing(t, 64, Reject)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint32(0); i < total; {
			if r.Push(i) {
				i++
				continue
			}
			runtime.Gosched()
		}
	}()

	for want := uint32(0); want < total; {
		v, ok := r.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if v != want {
			t.Fatalf("Pop() = %d, want %d", v, want)
		}
		want++
	}
	wg.Wait()
}
