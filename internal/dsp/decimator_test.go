package dsp

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestDecimatorFactor(t *testing.T) {
	d := NewDecimator[float32](3, AntiAliasKernel(3))
	if got := d.Factor(); got != 3 {
		t.Errorf("Factor() = %d, want 3", got)
	}
}

func TestDecimatorOutputLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		factor := rapid.IntRange(1, 6).Draw(t, "factor")
		groups := rapid.IntRange(1, 64).Draw(t, "groups")

		d := NewDecimator[complex64](factor, AntiAliasKernel(factor))
		out := d.Decimate(make([]complex64, factor*groups))
		if len(out) != groups {
			t.Fatalf("Decimate produced %d samples, want %d", len(out), groups)
		}
	})
}

func TestDecimatorZeroInput(t *testing.T) {
	d := NewDecimator[complex64](5, AntiAliasKernel(5))
	for _, s := range d.Decimate(make([]complex64, 100)) {
		if s != 0 {
			t.Fatalf("zero input produced non-zero output %v", s)
		}
	}
}

func TestDecimatorDCGain(t *testing.T) {
	d := NewDecimator[float32](2, AntiAliasKernel(2))

	in := make([]float32, 256)
	for i := range in {
		in[i] = 1
	}
	out := d.Decimate(in)

	// Once the delay line is full of DC the output equals the kernel's DC
	// gain, which Lowpass normalizes to unity.
	got := float64(out[len(out)-1])
	if math.Abs(got-1) > 1e-5 {
		t.Errorf("steady-state DC output = %f, want 1.0", got)
	}
}

func TestDecimatorGainIsNotCumulative(t *testing.T) {
	in := make([]float32, 64)
	for i := range in {
		in[i] = float32(i%7) - 3
	}

	once := NewDecimator[float32](2, AntiAliasKernel(2))
	once.SetGain(6)
	want := once.Decimate(in)

	twice := NewDecimator[float32](2, AntiAliasKernel(2))
	twice.SetGain(6)
	twice.SetGain(6)
	got := twice.Decimate(in)

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output[%d] = %f after repeated SetGain, want %f", i, got[i], want[i])
		}
	}
}

func TestDecimatorSetParamsResetsHistory(t *testing.T) {
	d := NewDecimator[float32](2, AntiAliasKernel(2))

	in := make([]float32, 32)
	for i := range in {
		in[i] = 1
	}
	d.Decimate(in)

	d.SetParams(2, AntiAliasKernel(2))
	for _, s := range d.Decimate(make([]float32, 32)) {
		if s != 0 {
			t.Fatalf("history leaked across SetParams: got %f, want 0", s)
		}
	}
}

func TestDecimatorPanicsOnMisalignedBlock(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on misaligned block")
		}
	}()

	d := NewDecimator[complex64](3, AntiAliasKernel(3))
	d.Decimate(make([]complex64, 10))
}

func TestDecimatorPanicsOnBadParams(t *testing.T) {
	tests := []struct {
		name   string
		factor int
		taps   []float32
	}{
		{"zero factor", 0, []float32{1, 1, 1}},
		{"fewer taps than factor", 4, []float32{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			NewDecimator[float32](tt.factor, tt.taps)
		})
	}
}
