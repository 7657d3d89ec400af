package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cadence/rtos/kernel"
)

func TestNewLoggerLevels(t *testing.T) {
	out := &fakeLogger{}
	log := newLogger(out, Config{LogLevel: "warn"})
	log.Info().Msg("hidden")
	log.Warn().Int("n", 3).Msg("shown")

	if len(out.lines) != 1 {
		t.Fatalf("lines = %q, want one", out.lines)
	}
	if got, want := out.lines[0], `{"level":"warn","n":3,"message":"shown"}`; got != want {
		t.Fatalf("line = %q, want %q", got, want)
	}
}

func TestNewLoggerPretty(t *testing.T) {
	out := &fakeLogger{}
	log := newLogger(out, Config{Pretty: true})
	log.Info().Str("name", "fit").Msg("task")

	if len(out.lines) != 1 {
		t.Fatalf("lines = %q, want one", out.lines)
	}
	line := out.lines[0]
	if strings.HasSuffix(line, "\n") || !strings.Contains(line, "task") || !strings.Contains(line, "name=fit") {
		t.Fatalf("line = %q, want a single console record", line)
	}
}

func TestNewLoggerNilSink(t *testing.T) {
	log := newLogger(nil, Config{})
	log.Error().Msg("dropped")
}

func TestEventLogger(t *testing.T) {
	tbl, err := kernel.NewTable(time.Millisecond, kernel.Descriptor{
		Name: "slow", Entry: func(*kernel.Context) {}, Period: 5 * time.Millisecond, WCET: time.Millisecond, StackSize: 512,
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	out := &fakeLogger{}
	l := eventLogger{log: newLogger(out, Config{}), table: tbl}

	l.handle(kernel.Event{Kind: kernel.EventStart, Task: 0, Tick: 5})
	l.handle(kernel.Event{Kind: kernel.EventIdle, Task: kernel.Idle, Tick: 6})
	if len(out.lines) != 0 {
		t.Fatalf("lines = %q, want dispatch events suppressed at info", out.lines)
	}

	l.handle(kernel.Event{Kind: kernel.EventOverrun, Task: 0, Tick: 10, Count: 2})
	want := `{"level":"warn","count":2,"tick":10,"task":0,"name":"slow","message":"` + kernel.EventOverrun.String() + `"}`
	if len(out.lines) != 1 || out.lines[0] != want {
		t.Fatalf("lines = %q, want [%q]", out.lines, want)
	}
}

func TestWriteBanner(t *testing.T) {
	w, err := newWorkload(nil, nil)
	if err != nil {
		t.Fatalf("newWorkload() error = %v", err)
	}
	var buf bytes.Buffer
	writeBanner(&buf, w.Table, kernel.Analyze(w.Table, kernel.PolicyRMSBound))
	out := buf.String()

	// Rows come in priority order.
	last := -1
	for _, name := range []string{"synth", "dac", "motion", "fit"} {
		i := strings.Index(out, name)
		if i < last {
			t.Fatalf("banner lists %s out of priority order:\n%s", name, out)
		}
		last = i
	}
	if !strings.Contains(out, "U = 0.4000") || !strings.HasSuffix(out, "schedulable\n") {
		t.Fatalf("banner verdict missing:\n%s", out)
	}
}

func TestWriteBannerRejected(t *testing.T) {
	tbl, err := kernel.NewTable(time.Millisecond,
		kernel.Descriptor{Name: "a", Entry: func(*kernel.Context) {}, Period: 2 * time.Millisecond, WCET: time.Millisecond, StackSize: 512},
		kernel.Descriptor{Name: "b", Entry: func(*kernel.Context) {}, Period: 4 * time.Millisecond, WCET: 2 * time.Millisecond, StackSize: 512},
	)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	var buf bytes.Buffer
	writeBanner(&buf, tbl, kernel.Analyze(tbl, kernel.PolicyRMSBound))
	if !strings.Contains(buf.String(), "REJECTED: U > 0.8284") {
		t.Fatalf("banner:\n%s", buf.String())
	}
}
