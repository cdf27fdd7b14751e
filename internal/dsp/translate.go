package dsp

import (
	"math"
	"math/cmplx"
)

// Translator shifts the input spectrum by a configurable offset through
// complex-exponential multiplication. The rotation is driven by a lookup
// table holding exactly one full period of the exponential, so the phase
// index wraps with no cumulative floating-point drift no matter how long the
// translator runs.
type Translator struct {
	sampleRate int
	lut        []complex64
	n          int
}

// NewTranslator creates a translator for the given tuner sample rate and
// initial offset in Hz.
func NewTranslator(sampleRate int, offsetHz int) *Translator {
	t := &Translator{sampleRate: sampleRate}
	t.SetOffset(offsetHz)
	return t
}

// SetOffset rebuilds the exponential table for a new offset and resets the
// phase index. A zero offset clears the table and makes Translate a copy.
//
// The table length is the minimal exact period N = rate/gcd(rate,|offset|),
// which always divides the sample rate.
func (t *Translator) SetOffset(offsetHz int) {
	t.n = 0
	t.lut = nil
	if offsetHz == 0 {
		return
	}

	abs := offsetHz
	if abs < 0 {
		abs = -abs
	}
	period := t.sampleRate / gcd(t.sampleRate, abs)

	t.lut = make([]complex64, period)
	for i := range t.lut {
		phase := -2 * math.Pi * float64(offsetHz) * float64(i) / float64(t.sampleRate)
		t.lut[i] = complex64(cmplx.Exp(complex(0, phase)))
	}
}

// Period returns the translator's table period, or 0 when translation is
// disabled.
func (t *Translator) Period() int { return len(t.lut) }

// Translate multiplies each input sample by the next table entry, advancing
// the phase index modulo the table period. The index persists across calls
// and is reset only by SetOffset.
func (t *Translator) Translate(in []complex64) []complex64 {
	out := make([]complex64, len(in))
	if len(t.lut) == 0 {
		copy(out, in)
		return out
	}
	for i, s := range in {
		out[i] = s * t.lut[t.n]
		t.n++
		if t.n == len(t.lut) {
			t.n = 0
		}
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
