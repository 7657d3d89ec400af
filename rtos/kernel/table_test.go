package kernel

import (
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func noop(*Context) {}

func desc(name string, period, wcet time.Duration) Descriptor {
	return Descriptor{Name: name, Entry: noop, Period: period, WCET: wcet, StackSize: 512}
}

func mustTable(t *testing.T, tick time.Duration, descs ...Descriptor) *Table {
	t.Helper()
	tbl, err := NewTable(tick, descs...)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return tbl
}

func TestTableRateMonotonicOrder(t *testing.T) {
	ms := time.Millisecond
	tbl := mustTable(t, ms,
		desc("slow", 30*ms, ms),
		desc("fast", 10*ms, ms),
		desc("mid", 20*ms, ms),
		desc("fast2", 10*ms, ms),
	)
	want := []TaskID{1, 3, 2, 0}
	if diff := cmp.Diff(want, tbl.Order()); diff != "" {
		t.Fatalf("Order() mismatch (-want +got):\n%s", diff)
	}
	if got := tbl.PeriodTicks(2); got != 20 {
		t.Fatalf("PeriodTicks(2) = %d, want 20", got)
	}
}

func TestTableOrderIsACopy(t *testing.T) {
	tbl := mustTable(t, time.Millisecond, desc("a", 10*time.Millisecond, time.Millisecond), desc("b", 5*time.Millisecond, time.Millisecond))
	o := tbl.Order()
	o[0] = 7
	if got := tbl.Order()[0]; got != 1 {
		t.Fatalf("Order()[0] = %d after caller mutation, want 1", got)
	}
}

func TestTableStackRegions(t *testing.T) {
	ms := time.Millisecond
	a := desc("a", 10*ms, ms)
	a.StackSize = 300
	b := desc("b", 10*ms, ms)
	b.StackSize = 1024
	tbl := mustTable(t, ms, a, b)

	ra, rb := tbl.StackRegion(0), tbl.StackRegion(1)
	if ra != (StackRegion{Offset: 0, Size: 304}) {
		t.Fatalf("StackRegion(0) = %+v, want {0 304}", ra)
	}
	if rb.Offset != ra.Offset+ra.Size || rb.Offset%8 != 0 {
		t.Fatalf("StackRegion(1) = %+v, want aligned and after region 0", rb)
	}
	if got := tbl.StackBytes(); got != 304+1024 {
		t.Fatalf("StackBytes() = %d, want %d", got, 304+1024)
	}
}

func TestTableTruncatesNames(t *testing.T) {
	tbl := mustTable(t, time.Millisecond, desc("synthesizer", 2*time.Millisecond, time.Millisecond))
	if got := tbl.Descriptor(0).Name; got != "synthesi" {
		t.Fatalf("Name = %q, want %q", got, "synthesi")
	}
}

func TestShortNameKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"dac", "dac"},
		{"eightchr", "eightchr"},
		{"synthesizer", "synthesi"},
		{"abc日本語", "abc日"},
		{"xxxxxxxé", "xxxxxxx"},
		{"ab日本語", "ab日本"},
	}
	for _, tt := range tests {
		got := shortName(tt.in)
		if got != tt.want {
			t.Errorf("shortName(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if len(got) > maxNameBytes || !utf8.ValidString(got) {
			t.Errorf("shortName(%q) = %q, want valid UTF-8 of at most %d bytes", tt.in, got, maxNameBytes)
		}
	}
}

func TestNewTableRejectsBadConfig(t *testing.T) {
	ms := time.Millisecond
	big := func() []Descriptor {
		var ds []Descriptor
		for i := 0; i < 3; i++ {
			d := desc("big", 10*ms, ms)
			d.StackSize = MaxStackBytes
			ds = append(ds, d)
		}
		return ds
	}

	tests := []struct {
		name  string
		tick  time.Duration
		descs []Descriptor
		field string
	}{
		{"zero tick", 0, []Descriptor{desc("a", 10*ms, ms)}, "tick"},
		{"empty", ms, nil, "tasks"},
		{"too many", ms, make([]Descriptor, MaxTasks+1), "tasks"},
		{"nil entry", ms, []Descriptor{{Name: "a", Period: 10 * ms, WCET: ms, StackSize: 512}}, "entry"},
		{"zero period", ms, []Descriptor{desc("a", 0, ms)}, "period"},
		{"negative period", ms, []Descriptor{desc("a", -ms, ms)}, "period"},
		{"period off tick", ms, []Descriptor{desc("a", 1500*time.Microsecond, ms)}, "period"},
		{"zero wcet", ms, []Descriptor{desc("a", 10*ms, 0)}, "wcet"},
		{"small stack", ms, []Descriptor{{Name: "a", Entry: noop, Period: 10 * ms, WCET: ms, StackSize: 64}}, "stack"},
		{"huge stack", ms, []Descriptor{{Name: "a", Entry: noop, Period: 10 * ms, WCET: ms, StackSize: MaxStackBytes + 8}}, "stack"},
		{"arena exhausted", ms, big(), "stack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.tick, tt.descs...)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("NewTable() error = %v, want ErrInvalidConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Fatalf("NewTable() error = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestDescriptorRates(t *testing.T) {
	d := desc("a", 4*time.Millisecond, time.Millisecond)
	if got := d.Utilization(); got != 0.25 {
		t.Fatalf("Utilization() = %v, want 0.25", got)
	}
	if got := d.FrequencyHz(); got != 250 {
		t.Fatalf("FrequencyHz() = %v, want 250", got)
	}
}
