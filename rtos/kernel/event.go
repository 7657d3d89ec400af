package kernel

// EventKind classifies scheduler events.
type EventKind uint8

const (
	EventRelease EventKind = iota + 1
	EventStart
	EventResume
	EventPreempt
	EventComplete
	EventOverrun
	EventBudgetOverrun
	EventIdle
)

func (k EventKind) String() string {
	switch k {
	case EventRelease:
		return "release"
	case EventStart:
		return "start"
	case EventResume:
		return "resume"
	case EventPreempt:
		return "preempt"
	case EventComplete:
		return "complete"
	case EventOverrun:
		return "overrun"
	case EventBudgetOverrun:
		return "budget overrun"
	case EventIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Event is delivered to Config.OnEvent from the tick handler. Handlers must
// return quickly and must not call back into the kernel.
type Event struct {
	Kind EventKind
	Task TaskID
	Tick uint64
	// Late is set on EventComplete when the activation finished after its
	// deadline.
	Late bool
	// Count is the task's running total for counted events.
	Count uint32
}
