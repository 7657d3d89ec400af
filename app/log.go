package app

import (
	"bytes"
	"io"

	"cadence/hal"
	"cadence/rtos/kernel"

	"github.com/rs/zerolog"
)

// lineWriter turns zerolog records into hal.Logger lines.
type lineWriter struct {
	l hal.Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	w.l.WriteLineBytes(bytes.TrimRight(p, "\r\n"))
	return len(p), nil
}

// newLogger builds the structured logger over the board's line sink.
// Records carry the kernel tick rather than wall time.
func newLogger(out hal.Logger, cfg Config) zerolog.Logger {
	if out == nil {
		return zerolog.Nop()
	}
	var w io.Writer = lineWriter{l: out}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl)
}

// eventLogger reports kernel events. Per-slot dispatch events go out at
// trace level; overruns are warnings.
type eventLogger struct {
	log   zerolog.Logger
	table *kernel.Table
}

func (l eventLogger) handle(e kernel.Event) {
	var ev *zerolog.Event
	switch e.Kind {
	case kernel.EventOverrun, kernel.EventBudgetOverrun:
		ev = l.log.Warn().Uint32("count", e.Count)
	case kernel.EventComplete:
		if e.Late {
			ev = l.log.Warn().Bool("late", true)
		} else {
			ev = l.log.Trace()
		}
	default:
		ev = l.log.Trace()
	}
	if ev == nil {
		return
	}
	ev = ev.Uint64("tick", e.Tick)
	if e.Task != kernel.Idle {
		ev = ev.Uint8("task", uint8(e.Task)).Str("name", l.table.Descriptor(e.Task).Name)
	}
	ev.Msg(e.Kind.String())
}

func logAnalysis(log zerolog.Logger, t *kernel.Table, a kernel.Analysis) {
	rt := kernel.ResponseTimes(t)
	for _, id := range t.Order() {
		d := t.Descriptor(id)
		log.Info().
			Uint8("task", uint8(id)).
			Str("name", d.Name).
			Dur("period", d.Period).
			Dur("wcet", d.WCET).
			Dur("response", rt[id]).
			Float64("u", d.Utilization()).
			Msg("task")
	}
	ev := log.Info()
	if !a.Schedulable {
		ev = log.Error()
	}
	ev.Int("tasks", a.Tasks).
		Float64("utilization", a.Utilization).
		Float64("bound", a.Bound).
		Float64("limit", a.Limit).
		Str("policy", a.Policy.String()).
		Bool("schedulable", a.Schedulable).
		Msg("schedulability")
}

func logStats(log zerolog.Logger, k *kernel.Kernel) {
	s := k.Stats()
	log.Info().
		Str("state", s.Lifecycle.String()).
		Uint64("now", s.Now).
		Uint64("idle", s.IdleTicks).
		Uint64("switches", s.ContextSwitches).
		Uint64("missed", s.MissedTicks).
		Uint64("stale", s.StaleTicks).
		Uint32("activations", s.Totals.Activations).
		Uint32("preemptions", s.Totals.Preemptions).
		Uint32("overruns", s.Totals.Overruns).
		Uint32("late", s.Totals.LateCompletions).
		Uint32("budget_overruns", s.Totals.BudgetOverruns).
		Msg("stats")
	for i := 0; i < k.Table().Len(); i++ {
		ts := k.TaskStats(kernel.TaskID(i))
		log.Debug().
			Str("name", ts.Name).
			Str("state", ts.State.String()).
			Uint32("activations", ts.Activations).
			Uint32("completions", ts.Completions).
			Uint32("preemptions", ts.Preemptions).
			Uint32("late", ts.LateCompletions).
			Msg("task stats")
	}
}
