//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
)

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	fb     *hostFramebuffer
	t      *hostTime
	irq    *hostInterrupts
	aud    Audio
}

// New returns a host HAL implementation.
func New() HAL {
	return newHost()
}

func newHost() *hostHAL {
	logger := &hostLogger{w: os.Stdout}
	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		fb:     newHostFramebuffer(320, 320),
		t:      newHostTime(),
		irq:    &hostInterrupts{},
		aud:    newHostAudio(),
	}
}

func (h *hostHAL) Logger() Logger         { return h.logger }
func (h *hostHAL) LED() LED               { return h.led }
func (h *hostHAL) Display() Display       { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time             { return h.t }
func (h *hostHAL) Interrupts() Interrupts { return h.irq }
func (h *hostHAL) Audio() Audio           { return h.aud }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (l *hostLED) High() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on {
		return
	}
	l.on = true
	l.logger.WriteLineString("led: HIGH")
}

func (l *hostLED) Low() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.on {
		return
	}
	l.on = false
	l.logger.WriteLineString("led: LOW")
}

// hostInterrupts models a PRIMASK-style mask bit. There is no interrupt to
// mask on a host; the bit keeps Disable/Restore pairing observable.
type hostInterrupts struct {
	masked atomic.Uint32
}

func (i *hostInterrupts) Disable() uintptr {
	return uintptr(i.masked.Swap(1))
}

func (i *hostInterrupts) Restore(state uintptr) {
	i.masked.Store(uint32(state))
}

func (i *hostInterrupts) Masked() bool { return i.masked.Load() != 0 }
