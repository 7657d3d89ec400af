// Package app wires the fixed workload to a board: it declares the rings,
// builds the task table, reports the boot analysis and runs the kernel on
// the board's timer interrupt.
package app

import (
	"context"
	"errors"
	"fmt"

	"cadence/hal"
	"cadence/internal/buildinfo"
	"cadence/rtos/kernel"
)

// hardware adapts a HAL to what the kernel consumes.
type hardware struct {
	t   hal.Time
	irq hal.Interrupts
}

func (h hardware) Ticks() <-chan uint64 {
	if h.t == nil {
		return nil
	}
	return h.t.Ticks()
}

func (h hardware) DisableInterrupts() uintptr {
	if h.irq == nil {
		return 0
	}
	return h.irq.Disable()
}

func (h hardware) RestoreInterrupts(state uintptr) {
	if h.irq != nil {
		h.irq.Restore(state)
	}
}

// Run boots the workload on h and blocks until ctx is done or the kernel
// stops. An unschedulable table or a fatal halt is returned as the
// kernel's typed error.
func Run(ctx context.Context, h hal.HAL, cfg Config) error {
	log := newLogger(logSink(h.Logger()), cfg)
	log.Info().Str("build", buildinfo.String()).Msg("boot")

	policy, err := cfg.policy()
	if err != nil {
		return err
	}
	if t := h.Time(); t != nil && t.Interval() != Tick {
		return fmt.Errorf("timer interval %v, want %v", t.Interval(), Tick)
	}

	var pwm hal.PWMAudio
	if a := h.Audio(); cfg.Audio && a != nil {
		pwm = a.PWM()
	}
	w, err := newWorkload(pwm, h.LED())
	if err != nil {
		return err
	}

	disp := newFBDisplay(h.Display())
	k := kernel.Initialize(hardware{t: h.Time(), irq: h.Interrupts()}, w.Table, kernel.Config{
		Policy:       policy,
		OverrunLimit: cfg.OverrunLimit,
		OnEvent:      eventLogger{log: log, table: w.Table}.handle,
	})

	a := k.Analysis()
	logAnalysis(log, w.Table, a)
	if cfg.Console {
		if term := newConsole(disp); term != nil {
			writeBanner(term, w.Table, a)
			term.Display()
		}
	}

	if pwm != nil && a.Schedulable {
		if err := pwm.Start(w.Synth.SampleRate()); err != nil {
			log.Warn().Err(err).Msg("audio disabled")
		} else {
			pwm.SetVolume(cfg.Volume)
			defer pwm.Stop()
		}
	}

	err = k.Start(ctx)
	logStats(log, k)

	var halt *kernel.HaltError
	if errors.As(err, &halt) {
		logHalt(log, halt)
		drawHalt(disp, halt)
		if cfg.HoldOnHalt {
			<-ctx.Done()
		}
	}
	return err
}
