package channelizer

import "testing"

func TestNewRejectsUnsupportedRate(t *testing.T) {
	for _, rate := range []int{0, 48000, 1000000, 2048000} {
		if _, err := New(rate); err == nil {
			t.Errorf("New(%d) succeeded, want error", rate)
		}
	}
}

func TestSampleRatePerBandwidth(t *testing.T) {
	tests := []struct {
		hwRate int
		bw     Bandwidth
		want   int
	}{
		{960000, BWWide, 192000},
		{960000, BW20k, 32000},
		{960000, BW10k, 16000},
		{960000, BW6k, 16000},
		{2400000, BWWide, 160000},
		{2400000, BW20k, 32000},
		{2400000, BW10k, 16000},
		{2400000, BW6k, 16000},
	}
	for _, tt := range tests {
		t.Run(tt.bw.String(), func(t *testing.T) {
			c, err := New(tt.hwRate)
			if err != nil {
				t.Fatal(err)
			}
			c.SetBandwidth(tt.bw)
			if got := c.SampleRate(); got != tt.want {
				t.Errorf("SampleRate() at %d/%s = %d, want %d", tt.hwRate, tt.bw, got, tt.want)
			}
		})
	}
}

func TestDefaultBandwidth(t *testing.T) {
	// Channelizers start in the 20K class: 32 kHz output for both trees.
	for _, rate := range []int{960000, 2400000} {
		c, err := New(rate)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.SampleRate(); got != 32000 {
			t.Errorf("default SampleRate() at %d = %d, want 32000", rate, got)
		}
	}
}

func TestProcessOutputLength(t *testing.T) {
	tests := []struct {
		hwRate  int
		bw      Bandwidth
		inLen   int
		wantLen int
	}{
		{960000, BWWide, 19200, 3840},
		{960000, BW20k, 19200, 640},
		{960000, BW10k, 19200, 320},
		{2400000, BWWide, 19200, 1280},
		{2400000, BW20k, 19200, 256},
		{2400000, BW6k, 19200, 128},
	}
	for _, tt := range tests {
		c, err := New(tt.hwRate)
		if err != nil {
			t.Fatal(err)
		}
		c.SetBandwidth(tt.bw)
		out := c.Process(make([]complex64, tt.inLen))
		if len(out) != tt.wantLen {
			t.Errorf("Process at %d/%s produced %d samples, want %d",
				tt.hwRate, tt.bw, len(out), tt.wantLen)
		}
	}
}

func TestObserversRunSynchronously(t *testing.T) {
	c, err := New(960000)
	if err != nil {
		t.Fatal(err)
	}

	var order []int
	var seen []complex64
	c.AddObserver(func(block []complex64) {
		order = append(order, 1)
		seen = block
	})
	c.AddObserver(func(block []complex64) {
		order = append(order, 2)
	})

	out := c.Process(make([]complex64, 19200))

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("observers ran in order %v, want [1 2]", order)
	}
	if len(seen) != len(out) {
		t.Errorf("observer saw %d samples, Process returned %d", len(seen), len(out))
	}
}

func TestBandwidthSwitchClearsHistory(t *testing.T) {
	c, err := New(960000)
	if err != nil {
		t.Fatal(err)
	}

	in := make([]complex64, 19200)
	for i := range in {
		in[i] = 1
	}
	c.Process(in)

	// Switching topologies and back must not carry filter state over.
	c.SetBandwidth(BW10k)
	c.SetBandwidth(BW20k)

	for i, s := range c.Process(make([]complex64, 19200)) {
		if s != 0 {
			t.Fatalf("sample %d = %v after topology switch, want 0", i, s)
		}
	}
}

func TestBandwidthString(t *testing.T) {
	tests := []struct {
		bw   Bandwidth
		want string
	}{
		{BWWide, "WIDE"},
		{BW20k, "20K"},
		{BW10k, "10K"},
		{BW6k, "6K"},
		{Bandwidth(42), "Bandwidth(42)"},
	}
	for _, tt := range tests {
		if got := tt.bw.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
