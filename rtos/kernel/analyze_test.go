package kernel

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestRMSBound(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 1},
		{1, 1},
		{2, 0.8284},
		{3, 0.7798},
		{10, 0.7177},
	}
	for _, tt := range tests {
		if got := RMSBound(tt.n); math.Abs(got-tt.want) > 1e-4 {
			t.Fatalf("RMSBound(%d) = %.6f, want %.4f", tt.n, got, tt.want)
		}
	}
	if got := RMSBound(1000); got < math.Ln2 || got > math.Ln2+1e-3 {
		t.Fatalf("RMSBound(1000) = %.6f, want just above ln 2", got)
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	ms := time.Millisecond
	tbl := mustTable(t, ms, desc("a", 7*ms, 2*ms), desc("b", 11*ms, 3*ms), desc("c", 13*ms, ms))
	first := Analyze(tbl, PolicyRMSBound)
	for i := 0; i < 100; i++ {
		if got := Analyze(tbl, PolicyRMSBound); got != first {
			t.Fatalf("Analyze() run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestAnalyzePolicies(t *testing.T) {
	ms := time.Millisecond
	// U = 1/4 + 2/6 + 3/12 = 0.8333, above B(3) and below 1.
	tbl := mustTable(t, ms, desc("a", 4*ms, ms), desc("b", 6*ms, 2*ms), desc("c", 12*ms, 3*ms))

	a := Analyze(tbl, PolicyRMSBound)
	if a.Schedulable {
		t.Fatalf("Analyze(rms-bound) schedulable with U=%.4f B=%.4f", a.Utilization, a.Bound)
	}
	err := a.Err(tbl)
	if !errors.Is(err, ErrUnschedulable) {
		t.Fatalf("Err() = %v, want ErrUnschedulable", err)
	}
	var se *SchedulabilityError
	if !errors.As(err, &se) || se.Analysis.Offender != Idle {
		t.Fatalf("Err() = %#v, want *SchedulabilityError without offender", err)
	}

	u := Analyze(tbl, PolicyUtilization)
	if !u.Schedulable || u.Limit != 1 {
		t.Fatalf("Analyze(utilization) = %+v, want schedulable against 1.0", u)
	}
	if err := u.Err(tbl); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
}

func TestAnalyzeRejectsWCETAbovePeriod(t *testing.T) {
	ms := time.Millisecond
	tbl := mustTable(t, ms, desc("ok", 10*ms, ms), desc("bad", 10*ms, 12*ms))
	a := Analyze(tbl, PolicyUtilization)
	if a.Schedulable || a.Offender != 1 {
		t.Fatalf("Analyze() = %+v, want offender 1", a)
	}
	var se *SchedulabilityError
	if err := a.Err(tbl); !errors.As(err, &se) || se.Name != "bad" {
		t.Fatalf("Err() = %v, want offender named bad", err)
	}
}

func TestResponseTimes(t *testing.T) {
	ms := time.Millisecond
	tbl := mustTable(t, ms, desc("c", 12*ms, 3*ms), desc("a", 4*ms, ms), desc("b", 6*ms, 2*ms))
	rt := ResponseTimes(tbl)
	want := map[TaskID]time.Duration{1: ms, 2: 3 * ms, 0: 10 * ms}
	for id, w := range want {
		if rt[id] != w {
			t.Fatalf("ResponseTimes()[%d] = %v, want %v", id, rt[id], w)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{PolicyRMSBound, PolicyUtilization} {
		got, ok := ParsePolicy(p.String())
		if !ok || got != p {
			t.Fatalf("ParsePolicy(%q) = %v, %v, want %v", p.String(), got, ok, p)
		}
	}
	if _, ok := ParsePolicy("edf"); ok {
		t.Fatal("ParsePolicy(edf) ok = true, want false")
	}
}
