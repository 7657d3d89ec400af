// Package dac drains the audio ring into the PWM audio output.
package dac

import (
	"time"

	"cadence/hal"
	"cadence/rtos/kernel"
	"cadence/rtos/spsc"
)

// SampleCost is the CPU time declared per sample moved.
const SampleCost = 3 * time.Microsecond

// Output is the consumer side of the audio ring.
type Output struct {
	in  *spsc.Ring[int16]
	out hal.PWMAudio
	max int

	// held is a popped sample the output refused; it goes first next time.
	held    int16
	holding bool

	written   uint64
	underruns uint64
	refused   uint64
}

// New returns an output that moves at most maxPerRun samples per activation.
// A nil out drops samples, which keeps the ring flowing on boards without audio.
func New(in *spsc.Ring[int16], out hal.PWMAudio, maxPerRun int) *Output {
	if maxPerRun <= 0 {
		maxPerRun = in.Cap()
	}
	return &Output{in: in, out: out, max: maxPerRun}
}

// Run moves samples until the ring is empty, the output is full or the
// per-activation limit is reached.
func (o *Output) Run(ctx *kernel.Context) {
	n := o.move()
	ctx.Spend(time.Duration(n) * SampleCost)
}

func (o *Output) move() int {
	for n := 0; n < o.max; n++ {
		if !o.holding {
			v, ok := o.in.Pop()
			if !ok {
				if n == 0 {
					o.underruns++
				}
				return n
			}
			o.held, o.holding = v, true
		}
		if o.out != nil && !o.out.WriteSample(o.held) {
			o.refused++
			return n
		}
		o.holding = false
		o.written++
	}
	return o.max
}

// Written returns the number of samples handed to the output.
func (o *Output) Written() uint64 { return o.written }

// Underruns returns the number of activations that found the ring empty.
func (o *Output) Underruns() uint64 { return o.underruns }

// Refused returns the number of activations cut short by a full output.
func (o *Output) Refused() uint64 { return o.refused }
