package dsp

import "testing"

func TestCascadeFactor(t *testing.T) {
	c := NewCascade(
		NewDecimator[complex64](5, AntiAliasKernel(5)),
		NewDecimator[complex64](3, AntiAliasKernel(3)),
		NewDecimator[complex64](2, AntiAliasKernel(2)),
	)
	if got := c.Factor(); got != 30 {
		t.Errorf("Factor() = %d, want 30", got)
	}
}

func TestCascadeOutputLength(t *testing.T) {
	c := NewCascade(
		NewDecimator[complex64](3, AntiAliasKernel(3)),
		NewDecimator[complex64](5, AntiAliasKernel(5)),
		NewDecimator[complex64](5, AntiAliasKernel(5)),
	)
	out := c.Decimate(make([]complex64, 1500))
	if len(out) != 20 {
		t.Errorf("Decimate produced %d samples, want 20", len(out))
	}
}

func TestCascadeResetsStageHistory(t *testing.T) {
	stage := NewDecimator[complex64](2, AntiAliasKernel(2))

	in := make([]complex64, 64)
	for i := range in {
		in[i] = 1
	}
	stage.Decimate(in)

	// Reassembly must clear the delay line so a new topology starts clean.
	c := NewCascade(stage)
	for _, s := range c.Decimate(make([]complex64, 64)) {
		if s != 0 {
			t.Fatalf("history leaked into new cascade: got %v, want 0", s)
		}
	}
}

func TestCascadePanicsOnStageCount(t *testing.T) {
	t.Run("no stages", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		NewCascade[complex64]()
	})

	t.Run("too many stages", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()

		stages := make([]*Decimator[complex64], 6)
		for i := range stages {
			stages[i] = NewDecimator[complex64](2, AntiAliasKernel(2))
		}
		NewCascade(stages...)
	})
}
