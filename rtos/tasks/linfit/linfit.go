// Package linfit estimates trajectory velocity with a least-squares line
// over the most recent setpoints and shows its direction on the LED.
package linfit

import (
	"time"

	"cadence/hal"
	"cadence/rtos/kernel"
	"cadence/rtos/spsc"
	"cadence/rtos/tasks/nurbs"
)

// Window is the number of setpoints a fit covers.
const Window = 16

// PointCost is the CPU time declared per windowed point in a refit.
const PointCost = 300 * time.Microsecond

// Line is y = Intercept + Slope*x.
type Line struct {
	Slope     float64
	Intercept float64
	N         int
}

// Fit returns the ordinary least-squares line through (xs[i], ys[i]). It
// reports false for fewer than two points or when all xs are equal.
func Fit(xs, ys []float64) (Line, bool) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return Line{}, false
	}

	// Center on the means to keep tick-sized x values well conditioned.
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - mx
		sxx += dx * dx
		sxy += dx * (ys[i] - my)
	}
	if sxx == 0 {
		return Line{}, false
	}
	b := sxy / sxx
	return Line{Slope: b, Intercept: my - b*mx, N: n}, true
}

// Fitter is the consumer side of the setpoint ring.
type Fitter struct {
	in  *spsc.Ring[nurbs.Setpoint]
	led hal.LED

	win  [Window]nurbs.Setpoint
	head int
	n    int

	xs, ys [Window]float64

	last   Line
	fits   uint64
	stale  uint64
	ledOn  bool
	ledSet bool
}

// New returns a fitter reading in. led may be nil.
func New(in *spsc.Ring[nurbs.Setpoint], led hal.LED) *Fitter {
	return &Fitter{in: in, led: led}
}

// Run drains the ring into the window and refits X against time. With no
// new setpoints the previous fit stands.
func (f *Fitter) Run(ctx *kernel.Context) {
	got := 0
	for {
		sp, ok := f.in.Pop()
		if !ok {
			break
		}
		f.win[f.head] = sp
		f.head = (f.head + 1) % Window
		if f.n < Window {
			f.n++
		}
		got++
	}
	if got == 0 {
		f.stale++
		return
	}
	ctx.Spend(time.Duration(f.n) * PointCost)

	start := (f.head - f.n + Window) % Window
	for i := 0; i < f.n; i++ {
		sp := f.win[(start+i)%Window]
		f.xs[i] = float64(sp.Tick)
		f.ys[i] = float64(sp.X)
	}
	line, ok := Fit(f.xs[:f.n], f.ys[:f.n])
	if !ok {
		return
	}
	f.last = line
	f.fits++
	f.show(line.Slope >= 0)
}

func (f *Fitter) show(on bool) {
	if f.led == nil || (f.ledSet && f.ledOn == on) {
		return
	}
	if on {
		f.led.High()
	} else {
		f.led.Low()
	}
	f.ledOn, f.ledSet = on, true
}

// Last returns the most recent fit.
func (f *Fitter) Last() Line { return f.last }

// Fits returns the number of completed fits.
func (f *Fitter) Fits() uint64 { return f.fits }

// Stale returns the number of activations that found no new setpoints.
func (f *Fitter) Stale() uint64 { return f.stale }
