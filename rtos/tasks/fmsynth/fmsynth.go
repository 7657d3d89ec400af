// Package fmsynth is a two-operator FM voice that fills an audio ring.
package fmsynth

import (
	"errors"
	"math"
	"time"

	"cadence/rtos/kernel"
	"cadence/rtos/spsc"
)

const tableBits = 10

var sine [1 << tableBits]float32

func init() {
	for i := range sine {
		sine[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(len(sine))))
	}
}

// sin returns sin(2*pi*phase) for a phase in cycles.
func sin(phase float64) float32 {
	phase -= math.Floor(phase)
	return sine[int(phase*float64(len(sine)))&(len(sine)-1)]
}

// Config describes the voice.
type Config struct {
	SampleRate uint32
	// Carrier and Modulator are in Hz.
	Carrier   float64
	Modulator float64
	// Index is the modulation index: peak phase deviation in radians.
	Index     float64
	Amplitude int16
	// Block is the number of samples produced per activation.
	Block int
	// SampleCost is the CPU time declared per sample produced.
	SampleCost time.Duration
}

// DefaultConfig is a bell-like tone at 8 kHz, 16 samples per 2 ms activation
// and 400µs of CPU per block.
var DefaultConfig = Config{
	SampleRate: 8000,
	Carrier:    440,
	Modulator:  616,
	Index:      2.5,
	Amplitude:  12000,
	Block:      16,
	SampleCost: 25 * time.Microsecond,
}

// Synth is the producer side of the audio ring.
type Synth struct {
	out *spsc.Ring[int16]
	cfg Config

	pc, pm     float64
	incC, incM float64
	depth      float64

	produced uint64
	full     uint64
}

// New returns a synth writing into out.
func New(out *spsc.Ring[int16], cfg Config) (*Synth, error) {
	if out == nil {
		return nil, errors.New("fmsynth: nil output ring")
	}
	if cfg.SampleRate == 0 || cfg.Block <= 0 {
		return nil, errors.New("fmsynth: sample rate and block must be positive")
	}
	if cfg.Carrier <= 0 || cfg.Carrier >= float64(cfg.SampleRate)/2 {
		return nil, errors.New("fmsynth: carrier must be below nyquist")
	}
	sr := float64(cfg.SampleRate)
	return &Synth{
		out:   out,
		cfg:   cfg,
		incC:  cfg.Carrier / sr,
		incM:  cfg.Modulator / sr,
		depth: cfg.Index / (2 * math.Pi),
	}, nil
}

// Next computes one sample and advances the oscillators.
func (s *Synth) Next() int16 {
	mod := float64(sin(s.pm)) * s.depth
	v := sin(s.pc + mod)
	s.pc += s.incC
	s.pm += s.incM
	if s.pc >= 1 {
		s.pc--
	}
	if s.pm >= 1 {
		s.pm--
	}
	return int16(v * float32(s.cfg.Amplitude))
}

// Run produces one block. When the ring fills, the rest of the block is
// skipped and the oscillators keep their phase.
func (s *Synth) Run(ctx *kernel.Context) {
	n := 0
	for ; n < s.cfg.Block; n++ {
		if s.out.Full() {
			s.full++
			break
		}
		s.out.Push(s.Next())
	}
	s.produced += uint64(n)
	ctx.Spend(time.Duration(n) * s.cfg.SampleCost)
}

// SampleRate returns the output rate in Hz.
func (s *Synth) SampleRate() uint32 { return s.cfg.SampleRate }

// Produced returns the number of samples pushed.
func (s *Synth) Produced() uint64 { return s.produced }

// FullBlocks returns the number of activations cut short by a full ring.
func (s *Synth) FullBlocks() uint64 { return s.full }
