package app

import (
	"fmt"
	"time"

	"cadence/hal"
	"cadence/rtos/kernel"
	"cadence/rtos/spsc"
	"cadence/rtos/tasks/dac"
	"cadence/rtos/tasks/fmsynth"
	"cadence/rtos/tasks/linfit"
	"cadence/rtos/tasks/nurbs"
)

// Tick is the scheduler time base.
const Tick = time.Millisecond

// Ring identities.
const (
	ChannelAudio spsc.ChannelID = iota + 1
	ChannelSetpoints
)

// Ring storage is static; the rings are declared over it at boot.
var (
	audioBuf [256]int16
	audio    spsc.Ring[int16]

	setpointBuf [16]nurbs.Setpoint
	setpoints   spsc.Ring[nurbs.Setpoint]
)

// stepsPerLap is one trajectory lap every two seconds at the motion rate.
const stepsPerLap = 200

// Workload is the fixed task set and the state its bodies share.
type Workload struct {
	Synth   *fmsynth.Synth
	DAC     *dac.Output
	Planner *nurbs.Planner
	Fitter  *linfit.Fitter

	Audio     *spsc.Ring[int16]
	Setpoints *spsc.Ring[nurbs.Setpoint]

	Table *kernel.Table
}

// newWorkload declares the rings and builds the task table. out and led
// may be nil.
func newWorkload(out hal.PWMAudio, led hal.LED) (*Workload, error) {
	if err := audio.Init(ChannelAudio, audioBuf[:], spsc.Reject); err != nil {
		return nil, fmt.Errorf("audio ring: %w", err)
	}
	if err := setpoints.Init(ChannelSetpoints, setpointBuf[:], spsc.Overwrite); err != nil {
		return nil, fmt.Errorf("setpoint ring: %w", err)
	}

	w := &Workload{Audio: &audio, Setpoints: &setpoints}
	var err error
	if w.Synth, err = fmsynth.New(&audio, fmsynth.DefaultConfig); err != nil {
		return nil, err
	}
	w.DAC = dac.New(&audio, out, 2*fmsynth.DefaultConfig.Block)
	if w.Planner, err = nurbs.NewPlanner(&setpoints, nurbs.Circle(1), stepsPerLap); err != nil {
		return nil, err
	}
	w.Fitter = linfit.New(&setpoints, led)

	w.Table, err = kernel.NewTable(Tick,
		kernel.Descriptor{
			Name: "synth", Entry: w.Synth.Run,
			Period: 2 * time.Millisecond, WCET: 400 * time.Microsecond,
			StackSize: 2048, FPU: true,
		},
		kernel.Descriptor{
			Name: "dac", Entry: w.DAC.Run,
			Period: 2 * time.Millisecond, WCET: 100 * time.Microsecond,
			StackSize: 1024,
		},
		kernel.Descriptor{
			Name: "motion", Entry: w.Planner.Run,
			Period: 10 * time.Millisecond, WCET: time.Millisecond,
			StackSize: 2048, FPU: true,
		},
		kernel.Descriptor{
			Name: "fit", Entry: w.Fitter.Run,
			Period: 100 * time.Millisecond, WCET: 5 * time.Millisecond,
			StackSize: 2048, FPU: true,
		},
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}
