//go:build !tinygo && cgo

package hal

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"cadence/rtos/spsc"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// hostAudio exposes audio output on desktop via Ebiten's audio package.
type hostAudio struct {
	pwm *hostPWMAudio
}

func newHostAudio() hostAudio {
	return hostAudio{pwm: &hostPWMAudio{vol: 255}}
}

func (a hostAudio) PWM() PWMAudio { return a.pwm }

// hostPWMAudio hands samples to the player through a ring: the kernel side
// is the only producer and the player's reader the only consumer. The writer
// never waits; the reader plays silence on underrun.
type hostPWMAudio struct {
	mu     sync.Mutex
	ctx    *audio.Context
	player *audio.Player
	vol    uint8

	queue     *spsc.Ring[int16]
	running   atomic.Bool
	underruns atomic.Uint64
}

func (a *hostPWMAudio) Start(sampleRate uint32) error {
	if sampleRate == 0 {
		return errors.New("host audio: invalid sample rate")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctx == nil {
		a.ctx = audio.NewContext(int(sampleRate))
	} else if a.ctx.SampleRate() != int(sampleRate) {
		return errors.New("host audio: ebiten audio context sample rate is fixed")
	}
	if a.player != nil {
		_ = a.player.Close()
		a.player = nil
	}

	// About 100ms of samples, rounded to a power of two.
	n := 2048
	for n < int(sampleRate/10) && n < 16384 {
		n <<= 1
	}
	q := new(spsc.Ring[int16])
	initSampleQueue(q, make([]int16, n))
	a.queue = q
	a.running.Store(true)

	p, err := a.ctx.NewPlayer(&hostAudioReader{a: a, q: q})
	if err != nil {
		a.running.Store(false)
		return err
	}
	p.SetBufferSize(100 * time.Millisecond)
	p.SetVolume(float64(a.vol) / 255.0)
	p.Play()
	a.player = p
	return nil
}

func (a *hostPWMAudio) Stop() error {
	if !a.running.Swap(false) {
		return nil
	}
	a.mu.Lock()
	p := a.player
	a.player = nil
	a.mu.Unlock()

	if p != nil {
		return p.Close()
	}
	return nil
}

func (a *hostPWMAudio) SetVolume(vol uint8) {
	a.mu.Lock()
	a.vol = vol
	p := a.player
	a.mu.Unlock()

	if p != nil {
		p.SetVolume(float64(vol) / 255.0)
	}
}

func (a *hostPWMAudio) WriteSample(sample int16) bool {
	if !a.running.Load() {
		return false
	}
	return a.queue.Push(sample)
}

func (a *hostPWMAudio) PendingSamples() int {
	if !a.running.Load() {
		return 0
	}
	return a.queue.Len()
}

type hostAudioReader struct {
	a *hostPWMAudio
	q *spsc.Ring[int16]
}

func (r *hostAudioReader) Read(p []byte) (int, error) {
	if !r.a.running.Load() {
		return 0, io.EOF
	}
	// Ebiten audio expects 16-bit little-endian stereo.
	for i := 0; i+3 < len(p); i += 4 {
		s, ok := r.q.Pop()
		if !ok {
			r.a.underruns.Add(1)
		}
		p[i+0] = byte(s)
		p[i+1] = byte(s >> 8)
		p[i+2] = byte(s)
		p[i+3] = byte(s >> 8)
	}
	return len(p) &^ 3, nil
}
