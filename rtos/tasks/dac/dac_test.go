package dac

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"cadence/rtos/kernel"
	"cadence/rtos/spsc"
)

type fakeAudio struct {
	room    int
	samples []int16
}

func (a *fakeAudio) Start(uint32) error { return nil }
func (a *fakeAudio) Stop() error        { return nil }
func (a *fakeAudio) SetVolume(uint8)    {}
func (a *fakeAudio) PendingSamples() int {
	return len(a.samples)
}

func (a *fakeAudio) WriteSample(s int16) bool {
	if len(a.samples) >= a.room {
		return false
	}
	a.samples = append(a.samples, s)
	return true
}

func runOnce(t *testing.T, o *Output) {
	t.Helper()
	tbl, err := kernel.NewTable(time.Millisecond, kernel.Descriptor{
		Name: "dac", Entry: o.Run, Period: 2 * time.Millisecond, WCET: 100 * time.Microsecond, StackSize: 512,
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if _, err := kernel.Initialize(nil, tbl, kernel.Config{}).RunFor(1); err != nil {
		t.Fatalf("RunFor() error = %v", err)
	}
}

func TestOutputKeepsRefusedSample(t *testing.T) {
	ring, _ := spsc.New(2, make([]int16, 8), spsc.Reject)
	for _, v := range []int16{1, 2, 3, 4} {
		ring.Push(v)
	}
	audio := &fakeAudio{room: 2}
	o := New(ring, audio, 8)

	runOnce(t, o)
	if o.Written() != 2 || o.Refused() != 1 {
		t.Fatalf("Written() = %d, Refused() = %d, want 2 and 1", o.Written(), o.Refused())
	}

	audio.room = 10
	runOnce(t, o)
	if diff := cmp.Diff([]int16{1, 2, 3, 4}, audio.samples); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}

	runOnce(t, o)
	if o.Underruns() != 1 {
		t.Fatalf("Underruns() = %d, want 1", o.Underruns())
	}
}

func TestOutputPerRunLimit(t *testing.T) {
	ring, _ := spsc.New(2, make([]int16, 16), spsc.Reject)
	for i := int16(0); i < 10; i++ {
		ring.Push(i)
	}
	o := New(ring, nil, 4)
	runOnce(t, o)
	if o.Written() != 4 || ring.Len() != 6 {
		t.Fatalf("Written() = %d, Len() = %d, want 4 and 6", o.Written(), ring.Len())
	}
}
