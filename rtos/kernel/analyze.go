package kernel

import (
	"math"
	"time"
)

// Policy selects the boot-time admission test.
type Policy uint8

const (
	// PolicyRMSBound admits a task set when U <= n(2^(1/n)-1). It is
	// sufficient for fixed-priority rate-monotonic scheduling.
	PolicyRMSBound Policy = iota
	// PolicyUtilization admits any task set with U <= 1. Deadlines are no
	// longer guaranteed by the bound alone.
	PolicyUtilization
)

func (p Policy) String() string {
	switch p {
	case PolicyRMSBound:
		return "rms-bound"
	case PolicyUtilization:
		return "utilization"
	default:
		return "unknown"
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "rms-bound", "rms":
		return PolicyRMSBound, true
	case "utilization", "u1":
		return PolicyUtilization, true
	default:
		return PolicyRMSBound, false
	}
}

// RMSBound returns the Liu-Layland bound n(2^(1/n)-1).
func RMSBound(n int) float64 {
	if n <= 1 {
		return 1
	}
	f := float64(n)
	return f * (math.Pow(2, 1/f) - 1)
}

// Analysis is the result of the boot-time schedulability check.
type Analysis struct {
	Tasks       int
	Utilization float64
	Bound       float64
	// Limit is the value Utilization was compared against under Policy.
	Limit       float64
	Policy      Policy
	Schedulable bool
	// Offender is the first task whose WCET exceeds its period, or Idle.
	Offender TaskID
}

// Analyze computes utilization and the RMS bound for t and applies p.
// It is a pure function of the table.
func Analyze(t *Table, p Policy) Analysis {
	a := Analysis{
		Tasks:    t.n,
		Bound:    RMSBound(t.n),
		Policy:   p,
		Offender: Idle,
	}
	for i := 0; i < t.n; i++ {
		d := &t.descs[i]
		if d.WCET > d.Period && a.Offender == Idle {
			a.Offender = TaskID(i)
		}
		a.Utilization += d.Utilization()
	}

	a.Limit = a.Bound
	if p == PolicyUtilization {
		a.Limit = 1
	}
	a.Schedulable = a.Offender == Idle && a.Utilization <= a.Limit
	return a
}

// Err returns nil for a schedulable set and a *SchedulabilityError
// otherwise.
func (a Analysis) Err(t *Table) error {
	if a.Schedulable {
		return nil
	}
	e := &SchedulabilityError{Analysis: a}
	if a.Offender != Idle {
		e.Name = t.descs[a.Offender].Name
	}
	return e
}

// ResponseTimes returns each task's worst-case response time under
// rate-monotonic priorities by the usual fixed-point iteration
// R = C + sum(ceil(R/Tj)*Cj) over higher-priority tasks. A task whose
// iteration passes its period reports the first value beyond it.
// The result is diagnostic only; admission is decided by Analyze.
func ResponseTimes(t *Table) [MaxTasks]time.Duration {
	var out [MaxTasks]time.Duration
	for rank := 0; rank < t.n; rank++ {
		id := t.order[rank]
		d := t.descs[id]
		r := d.WCET
		for {
			next := d.WCET
			for _, hp := range t.order[:rank] {
				h := t.descs[hp]
				n := (r + h.Period - 1) / h.Period
				next += n * h.WCET
			}
			if next == r || next > d.Period {
				r = next
				break
			}
			r = next
		}
		out[id] = r
	}
	return out
}
