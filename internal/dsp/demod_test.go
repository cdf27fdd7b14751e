package dsp

import (
	"math"
	"math/cmplx"
	"testing"
)

// fmTone builds a complex tone at the given audio frequency.
func fmTone(n int, toneHz, sampleRate float64) []complex64 {
	in := make([]complex64, n)
	for i := range in {
		phase := 2 * math.Pi * toneHz * float64(i) / sampleRate
		in[i] = complex64(cmplx.Exp(complex(0, phase)))
	}
	return in
}

func TestFMDemodulatorTone(t *testing.T) {
	const (
		rate   = 32000
		maxDev = 5000
		toneHz = 2500
	)

	d := NewFMDemodulator(rate, maxDev)
	out := d.Demodulate(fmTone(3200, toneHz, rate))

	// A constant-frequency tone has a constant phase increment, so the
	// demodulated audio is DC. With the gain mapping peak deviation to 1.0
	// and 6 dB of headroom, the level is toneHz/maxDev/2.
	want := float64(toneHz) / maxDev / 2
	got := float64(out[len(out)-1])
	if math.Abs(got-want) > 1e-3 {
		t.Errorf("steady-state level = %f, want %f", got, want)
	}
}

func TestFMDemodulatorOutputRate(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		inLen      int
		wantLen    int
	}{
		{"narrowband 32 kHz", 32000, 640, 320},
		{"wideband 160 kHz", 160000, 1280, 128},
		{"wideband 192 kHz", 192000, 3840, 320},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewFMDemodulator(tt.sampleRate, 75000)
			out := d.Demodulate(make([]complex64, tt.inLen))
			if len(out) != tt.wantLen {
				t.Errorf("got %d audio samples, want %d", len(out), tt.wantLen)
			}
		})
	}
}

func TestFMDemodulatorZeroMagnitude(t *testing.T) {
	d := NewFMDemodulator(32000, 5000)
	for i, s := range d.Demodulate(make([]complex64, 640)) {
		if s != 0 {
			t.Fatalf("audio[%d] = %f for silent input, want 0", i, s)
		}
		if math.IsNaN(float64(s)) {
			t.Fatalf("audio[%d] is NaN", i)
		}
	}
}

func TestFMDemodulatorZeroSampleHoldsPhase(t *testing.T) {
	const rate = 32000

	in := fmTone(640, 1000, rate)
	in[100] = 0 // dropout in the middle of the block

	d := NewFMDemodulator(rate, 5000)
	for i, s := range d.Demodulate(in) {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			t.Fatalf("audio[%d] = %f after dropout sample", i, s)
		}
	}
}

func TestFMDemodulatorSetParamsIdempotent(t *testing.T) {
	in := fmTone(640, 2500, 32000)

	once := NewFMDemodulator(32000, 5000)
	want := once.Demodulate(in)

	twice := NewFMDemodulator(32000, 5000)
	twice.SetParams(32000, 5000)
	got := twice.Demodulate(in)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audio[%d] = %f after repeated SetParams, want %f", i, got[i], want[i])
		}
	}
}

func TestAMDemodulatorMagnitude(t *testing.T) {
	d := NewAMDemodulator()

	in := []complex64{0, 1, complex(0, -1), complex(3, -4), complex(-0.6, 0.8)}
	want := []float32{0, 1, 1, 5, 1}

	out := d.Demodulate(in)
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d: AM applies no decimation", len(out), len(in))
	}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("audio[%d] = %f, want %f", i, out[i], want[i])
		}
	}
}
