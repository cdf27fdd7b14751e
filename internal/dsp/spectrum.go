package dsp

import (
	"math"
	"math/cmplx"
)

// BinPower estimates the power spectrum of a complex block across the given
// number of evenly spaced bins spanning -rate/2..+rate/2, with the channel
// center in the middle bin. Each bin is one direct DFT sum; blocks are small
// enough here that an FFT buys nothing for an offline rendering tool.
func BinPower(in []complex64, bins int) []float64 {
	if bins < 1 || len(in) == 0 {
		return nil
	}
	out := make([]float64, bins)
	for b := range out {
		k := float64(b)/float64(bins) - 0.5

		// Rotate by recurrence instead of a trig call per sample.
		step := complex64(cmplx.Exp(complex(0, -2*math.Pi*k)))
		rot := complex64(complex(1, 0))

		var sum complex64
		for _, s := range in {
			sum += s * rot
			rot *= step
		}
		re := float64(real(sum)) / float64(len(in))
		im := float64(imag(sum)) / float64(len(in))
		out[b] = re*re + im*im
	}
	return out
}
