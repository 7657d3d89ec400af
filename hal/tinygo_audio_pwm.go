//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"

	"cadence/rtos/spsc"
)

type tinyGoAudio struct {
	pwm *pwmAudioOut
}

func newTinyGoAudio() Audio {
	return &tinyGoAudio{pwm: newPWMAudioOut(machine.GP2)}
}

func (a *tinyGoAudio) PWM() PWMAudio {
	if a.pwm == nil {
		return nil
	}
	return a.pwm
}

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

// pwmAudioOut queues samples and a pacing goroutine moves one into the PWM
// duty register per sample period.
type pwmAudioOut struct {
	pin machine.Pin
	pwm pwmDevice
	ch  uint8
	top uint32

	volume uint8

	queue   spsc.Ring[int16]
	backing [256]int16
	stop    chan struct{}
}

func newPWMAudioOut(pin machine.Pin) *pwmAudioOut {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return nil
	}
	a := &pwmAudioOut{pin: pin, pwm: pwm, volume: 255}
	initSampleQueue(&a.queue, a.backing[:])
	return a
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (a *pwmAudioOut) Start(sampleRate uint32) error {
	if a == nil || a.pwm == nil || sampleRate == 0 {
		return ErrNotImplemented
	}
	if a.stop != nil {
		return nil
	}
	// Fixed ~62.5kHz carrier; the duty cycle carries the sample.
	const pwmCarrierHz = 62500
	if err := a.pwm.Configure(machine.PWMConfig{Period: 1e9 / pwmCarrierHz}); err != nil {
		return err
	}
	ch, err := a.pwm.Channel(a.pin)
	if err != nil {
		return err
	}
	a.ch = ch
	a.pwm.SetTop(0xFFFF)
	a.top = a.pwm.Top()
	a.pwm.Set(a.ch, a.top/2)
	a.pwm.Enable(true)

	a.stop = make(chan struct{})
	go a.pace(time.Second/time.Duration(sampleRate), a.stop)
	return nil
}

func (a *pwmAudioOut) pace(period time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if s, ok := a.queue.Pop(); ok {
				a.pwm.Set(a.ch, a.duty(s))
			}
		}
	}
}

func (a *pwmAudioOut) duty(sample int16) uint32 {
	s := int32(sample) * int32(a.volume) / 255
	return uint32(s+32768) * a.top / 65535
}

func (a *pwmAudioOut) Stop() error {
	if a == nil || a.stop == nil {
		return nil
	}
	close(a.stop)
	a.stop = nil
	a.pwm.Set(a.ch, a.top/2)
	a.pwm.Enable(false)
	return nil
}

func (a *pwmAudioOut) SetVolume(vol uint8) {
	if a != nil {
		a.volume = vol
	}
}

// WriteSample queues sample; it reports false when the queue is full.
func (a *pwmAudioOut) WriteSample(sample int16) bool {
	if a == nil || a.stop == nil {
		return false
	}
	return a.queue.Push(sample)
}

func (a *pwmAudioOut) PendingSamples() int {
	if a == nil {
		return 0
	}
	return a.queue.Len()
}
