package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time is the periodic timer interrupt.
//
// Each tick carries the value of a free-running counter that starts at zero
// and increments once per Interval. Ticks the consumer is too slow to take
// are dropped, never reordered; the counter lets the consumer detect them.
type Time interface {
	Ticks() <-chan uint64
	Interval() time.Duration
}

// Interrupts masks the timer interrupt around short critical sections.
type Interrupts interface {
	// Disable masks interrupts and returns the previous mask state.
	Disable() uintptr
	// Restore reinstates a state returned by Disable.
	Restore(state uintptr)
}

// PWMAudio is a mono 16-bit sample sink.
type PWMAudio interface {
	Start(sampleRate uint32) error
	Stop() error
	SetVolume(vol uint8)
	// WriteSample queues one sample. It never blocks and reports false when
	// the output cannot take the sample right now.
	WriteSample(sample int16) bool
	PendingSamples() int
}

// Audio provides access to audio outputs (if available).
type Audio interface {
	PWM() PWMAudio
}

// HAL provides the only contact point between the kernel and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Time() Time
	Interrupts() Interrupts
	Audio() Audio
}
