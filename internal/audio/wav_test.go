package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWAVSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	sink := NewWAVSink(path)
	if err := sink.Open(); err != nil {
		t.Fatal(err)
	}

	in := []float32{0, 0.5, -0.5, 1, -1}
	n, err := sink.WriteSamples(in)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(in) {
		t.Fatalf("WriteSamples accepted %d samples, want %d: WAV sinks never backpressure", n, len(in))
	}
	if err = sink.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}

	if dec.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", dec.SampleRate, SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels = %d, want 1", dec.NumChans)
	}
	if len(buf.Data) != len(in) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(in))
	}

	want := []int{0, 16383, -16383, 32767, -32767}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestWAVSinkClampsOverdrive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")

	sink := NewWAVSink(path)
	if err := sink.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := sink.WriteSamples([]float32{2.5, -3}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if buf.Data[0] != 32767 || buf.Data[1] != -32767 {
		t.Errorf("decoded %v, want clamped full scale", buf.Data[:2])
	}
}

func TestWAVSinkWriteBeforeOpen(t *testing.T) {
	sink := NewWAVSink(filepath.Join(t.TempDir(), "x.wav"))
	if _, err := sink.WriteSamples([]float32{0}); err == nil {
		t.Fatal("WriteSamples before Open succeeded, want error")
	}
}
