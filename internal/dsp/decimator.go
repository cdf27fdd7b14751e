// Package dsp implements the narrowband signal-processing primitives used by
// the drop receiver pipeline: FIR decimation stages and cascades, a
// table-driven frequency translator and the FM/AM demodulators.
package dsp

import (
	"fmt"
	"math"
)

// Sample is the element type a decimation stage operates on: complex64 for
// RF-domain stages, float32 for audio-domain stages.
type Sample interface {
	~complex64 | ~float32
}

// toSample widens a real coefficient to the stage's sample type.
func toSample[T Sample](c float32) T {
	var zero T
	switch any(zero).(type) {
	case complex64:
		return any(complex(c, 0)).(T)
	default:
		return any(c).(T)
	}
}

// Decimator is a single FIR low-pass filter combined with integer decimation.
// The delay line holds the most recent taps worth of input history and is
// zeroed on construction and on every SetParams call.
type Decimator[T Sample] struct {
	factor int
	taps   []float32 // pristine coefficients, never scaled
	coeff  []T       // active coefficients, possibly gain-adjusted
	z      []T       // delay line, z[0] is the most recent sample
}

// NewDecimator creates a decimation stage with the given factor and
// coefficient set. The tap count must be at least the decimation factor;
// violating that is a wiring bug, not a data condition.
func NewDecimator[T Sample](factor int, taps []float32) *Decimator[T] {
	d := &Decimator[T]{}
	d.SetParams(factor, taps)
	return d
}

// SetParams replaces the stage's decimation factor and coefficient set and
// resets the delay line. Any previous gain adjustment is discarded.
func (d *Decimator[T]) SetParams(factor int, taps []float32) {
	if factor < 1 {
		panic(fmt.Sprintf("dsp: decimation factor %d < 1", factor))
	}
	if len(taps) < factor {
		panic(fmt.Sprintf("dsp: %d taps < decimation factor %d", len(taps), factor))
	}
	d.factor = factor
	d.taps = taps
	d.coeff = make([]T, len(taps))
	for i, c := range taps {
		d.coeff[i] = toSample[T](c)
	}
	d.z = make([]T, len(taps))
}

// Factor returns the stage's decimation factor.
func (d *Decimator[T]) Factor() int { return d.factor }

// SetGain scales the active coefficients by 10^(dB/20), always starting from
// the pristine coefficient set so that repeated calls do not accumulate.
func (d *Decimator[T]) SetGain(gainDB float64) {
	g := float32(math.Pow(10, gainDB/20))
	for i, c := range d.taps {
		d.coeff[i] = toSample[T](c * g)
	}
}

// Reset zeroes the delay line without touching coefficients or gain.
func (d *Decimator[T]) Reset() {
	clear(d.z)
}

// Decimate filters and decimates a block, producing len(in)/factor output
// samples. The input length must be an exact multiple of the decimation
// factor; a mismatch indicates a structural wiring bug and panics.
func (d *Decimator[T]) Decimate(in []T) []T {
	if len(in)%d.factor != 0 {
		panic(fmt.Sprintf("dsp: block length %d not a multiple of decimation factor %d", len(in), d.factor))
	}
	out := make([]T, 0, len(in)/d.factor)
	for len(in) > 0 {
		// Shift the delay line up by one decimation group and load the
		// next group most-recent first, matching coefficient order.
		copy(d.z[d.factor:], d.z[:len(d.z)-d.factor])
		for tap := d.factor - 1; tap >= 0; tap-- {
			d.z[tap] = in[0]
			in = in[1:]
		}

		var sum T
		for tap, c := range d.coeff {
			sum += c * d.z[tap]
		}
		out = append(out, sum)
	}
	return out
}
