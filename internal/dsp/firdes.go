package dsp

import "math"

// Lowpass designs a windowed-sinc FIR low-pass kernel. The cutoff is given
// as a fraction of the sampling frequency (0 < cutoff < 0.5) and the kernel
// is Hamming-windowed and normalized for unity gain at DC.
func Lowpass(taps int, cutoff float64) []float32 {
	if taps < 3 {
		panic("dsp: lowpass kernel needs at least 3 taps")
	}
	kernel := make([]float32, taps)
	center := 0.5 * float64(taps-1)

	var sum float64
	for j := range kernel {
		var sinc float64
		if float64(j) == center {
			sinc = 2 * cutoff
		} else {
			x := float64(j) - center
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		w := hamming(taps, j)
		kernel[j] = float32(sinc * w)
		sum += sinc * w
	}

	// Unity gain at DC.
	for j := range kernel {
		kernel[j] = float32(float64(kernel[j]) / sum)
	}
	return kernel
}

func hamming(size, j int) float64 {
	return 0.54 - 0.46*math.Cos(2*math.Pi*float64(j)/float64(size-1))
}

// AntiAliasKernel designs the low-pass kernel for a decimate-by-factor
// stage. The cutoff sits at 80% of the post-decimation Nyquist frequency,
// leaving a transition band before the folding edge.
func AntiAliasKernel(factor int) []float32 {
	if factor == 1 {
		// Identity passband; a channel-shaping filter should be used instead.
		return Lowpass(31, 0.4)
	}
	return Lowpass(10*factor+1, 0.4/float64(factor))
}
