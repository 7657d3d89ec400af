//go:build !tinygo && !cgo

package hal

// hostAudio discards samples when no audio backend is available.
type hostAudio struct {
	pwm *discardAudio
}

func newHostAudio() hostAudio { return hostAudio{pwm: &discardAudio{}} }

func (a hostAudio) PWM() PWMAudio { return a.pwm }

type discardAudio struct {
	started bool
}

func (a *discardAudio) Start(sampleRate uint32) error {
	if sampleRate == 0 {
		return ErrNotImplemented
	}
	a.started = true
	return nil
}

func (a *discardAudio) Stop() error {
	a.started = false
	return nil
}

func (a *discardAudio) SetVolume(uint8) {}

func (a *discardAudio) WriteSample(int16) bool { return a.started }

func (a *discardAudio) PendingSamples() int { return 0 }
