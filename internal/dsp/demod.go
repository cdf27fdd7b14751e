package dsp

import "math"

// AudioSampleRate is the fixed output rate of every demodulator path.
const AudioSampleRate = 16000

// audioDecRate is the native input rate of the final audio decimator.
const audioDecRate = 32000

// Demodulator converts a channelized complex baseband block into real audio
// samples.
type Demodulator interface {
	Demodulate(in []complex64) []float32
}

// FMDemodulator is a delay/phase-difference FM demodulator. Each sample is
// normalized to unit magnitude and the instantaneous frequency is recovered
// as atan2(q·i' − i·q', i·i' + q·q') against the previous sample, which
// persists across blocks. The raw audio is then decimated to 16 kHz, with an
// extra wideband pre-decimator inserted automatically when the channel rate
// exceeds the audio decimator's native 32 kHz input rate.
type FMDemodulator struct {
	iold, qold float32
	audioDec   *Decimator[float32]
	audioDecWB *Decimator[float32]
	wbMode     bool
}

// NewFMDemodulator creates an FM demodulator for the given channel sample
// rate and maximum deviation in Hz.
func NewFMDemodulator(sampleRate int, maxDev float64) *FMDemodulator {
	d := &FMDemodulator{
		iold:     1,
		qold:     1,
		audioDec: NewDecimator[float32](2, AntiAliasKernel(2)),
	}
	d.SetParams(sampleRate, maxDev)
	return d
}

// SetParams reconfigures the demodulator for a new channel sample rate and
// maximum deviation. The audio gain is derived so that peak deviation maps
// to a peak amplitude of 1.0, with 6 dB of headroom beneath full scale.
// Calling SetParams with identical arguments is idempotent: the gain is
// always applied relative to the pristine decimator coefficients.
func (d *FMDemodulator) SetParams(sampleRate int, maxDev float64) {
	adj := float64(sampleRate) / (2 * math.Pi * maxDev)
	adj /= 2 // 6 dB headroom
	d.audioDec.SetGain(20 * math.Log10(adj))

	d.wbMode = sampleRate > audioDecRate
	switch sampleRate {
	case 160000:
		d.audioDecWB = NewDecimator[float32](5, AntiAliasKernel(5))
	case 192000:
		d.audioDecWB = NewDecimator[float32](6, AntiAliasKernel(6))
	}
}

// Demodulate converts a channelized block into decimated audio samples.
func (d *FMDemodulator) Demodulate(in []complex64) []float32 {
	audio := make([]float32, len(in))
	for idx, samp := range in {
		i := real(samp)
		q := imag(samp)

		// Normalize the amplitude; a zero-magnitude sample would divide by
		// zero and poison the stream with NaN, so emit silence and hold the
		// phase state instead.
		mag := float32(math.Hypot(float64(i), float64(q)))
		if mag == 0 {
			audio[idx] = 0
			continue
		}
		i /= mag
		q /= mag

		audio[idx] = float32(math.Atan2(
			float64(q*d.iold-i*d.qold),
			float64(i*d.iold+q*d.qold),
		))
		d.iold = i
		d.qold = q
	}

	if d.wbMode {
		audio = d.audioDecWB.Decimate(audio)
	}
	return d.audioDec.Decimate(audio)
}

// AMDemodulator demodulates by taking the magnitude of each complex sample.
// Unlike the FM path it applies no post-demodulation decimation and carries
// no adjustable gain; the output stays at the channelizer's output rate.
type AMDemodulator struct{}

// NewAMDemodulator creates an AM envelope demodulator.
func NewAMDemodulator() *AMDemodulator {
	return &AMDemodulator{}
}

// Demodulate returns |sample| for every input sample.
func (d *AMDemodulator) Demodulate(in []complex64) []float32 {
	audio := make([]float32, len(in))
	for idx, samp := range in {
		audio[idx] = float32(math.Hypot(float64(real(samp)), float64(imag(samp))))
	}
	return audio
}
