package timer

// Deadline is the absolute tick window of one task activation.
type Deadline struct {
	Start uint64
	Due   uint64
}

// NewDeadline returns the window [start, start+period].
func NewDeadline(start, period uint64) Deadline {
	return Deadline{Start: start, Due: start + period}
}

// Met reports whether now is still within the window.
func (d Deadline) Met(now uint64) bool {
	return now <= d.Due
}

// Remaining returns the ticks left until Due, 0 once it has passed.
func (d Deadline) Remaining(now uint64) uint64 {
	if now >= d.Due {
		return 0
	}
	return d.Due - now
}

// Elapsed returns the ticks since Start.
func (d Deadline) Elapsed(now uint64) uint64 {
	return now - d.Start
}
