package app

import (
	"fmt"
	"io"

	"cadence/internal/buildinfo"
	"cadence/rtos/kernel"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// newConsole returns a terminal over d, or nil without a display.
func newConsole(d *fbDisplay) *tinyterm.Terminal {
	if d == nil {
		return nil
	}
	t := tinyterm.NewTerminal(d)
	t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	return t
}

// writeBanner prints the task table in priority order followed by the
// admission verdict.
func writeBanner(w io.Writer, t *kernel.Table, a kernel.Analysis) {
	fmt.Fprintf(w, "cadence %s\n", buildinfo.Short())
	fmt.Fprintf(w, "tick %v, %d tasks\n\n", t.Tick(), t.Len())
	fmt.Fprintf(w, "%-2s %-8s %8s %8s %8s\n", "id", "name", "period", "wcet", "resp")

	rt := kernel.ResponseTimes(t)
	for _, id := range t.Order() {
		d := t.Descriptor(id)
		fmt.Fprintf(w, "%-2d %-8s %8v %8v %8v\n", id, d.Name, d.Period, d.WCET, rt[id])
	}

	fmt.Fprintf(w, "\nU = %.4f, bound %.4f (%s)\n", a.Utilization, a.Bound, a.Policy)
	switch {
	case a.Schedulable:
		fmt.Fprintf(w, "schedulable\n")
	case a.Offender != kernel.Idle:
		fmt.Fprintf(w, "REJECTED: %s wcet exceeds period\n", t.Descriptor(a.Offender).Name)
	default:
		fmt.Fprintf(w, "REJECTED: U > %.4f\n", a.Limit)
	}
}
