package nurbs

import (
	"errors"
	"time"

	"cadence/rtos/kernel"
	"cadence/rtos/spsc"
)

// Setpoint is one trajectory sample handed to the consumer.
type Setpoint struct {
	Tick uint64
	X, Y float32
}

// EvalCost is the CPU time declared for one curve evaluation.
const EvalCost = time.Millisecond

// Planner walks a curve at a fixed parameter step per activation.
type Planner struct {
	curve *Curve
	out   *spsc.Ring[Setpoint]

	lo    float64
	step  float64
	steps int
	i     int

	laps      uint64
	published uint64
}

// NewPlanner returns a planner that completes one lap of curve every
// stepsPerLap activations and then starts over.
func NewPlanner(out *spsc.Ring[Setpoint], curve *Curve, stepsPerLap int) (*Planner, error) {
	if out == nil || curve == nil {
		return nil, errors.New("nurbs: planner needs a ring and a curve")
	}
	if stepsPerLap <= 0 {
		return nil, errors.New("nurbs: steps per lap must be positive")
	}
	lo, hi := curve.Domain()
	return &Planner{
		curve: curve,
		out:   out,
		lo:    lo,
		step:  (hi - lo) / float64(stepsPerLap),
		steps: stepsPerLap,
	}, nil
}

// Run publishes the setpoint for the current parameter. The ring is declared
// in overwrite mode, so a slow consumer only ever sees the freshest points.
func (p *Planner) Run(ctx *kernel.Context) {
	pt := p.curve.Eval(p.lo + float64(p.i)*p.step)
	p.out.Push(Setpoint{Tick: ctx.Now(), X: float32(pt.X), Y: float32(pt.Y)})
	p.published++
	ctx.Spend(EvalCost)

	p.i++
	if p.i == p.steps {
		p.i = 0
		p.laps++
	}
}

// Published returns the number of setpoints pushed.
func (p *Planner) Published() uint64 { return p.published }

// Laps returns the number of completed laps.
func (p *Planner) Laps() uint64 { return p.laps }
