package receiver

import (
	"io"
	"log/slog"
	"testing"
)

// stubSink accepts a limited number of samples per write and records
// everything it accepted.
type stubSink struct {
	limit    int
	accepted []float32
}

func (s *stubSink) Open() error { return nil }

func (s *stubSink) WriteSamples(samples []float32) (int, error) {
	n := min(len(samples), s.limit)
	s.accepted = append(s.accepted, samples[:n]...)
	return n, nil
}

func (s *stubSink) Flush() error { return nil }
func (s *stubSink) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChannelEmitPartialAcceptance(t *testing.T) {
	c, err := newChannel(0, 960000, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	sink := &stubSink{limit: 3}
	c.SetSink(sink)

	c.emit([]float32{1, 2, 3, 4, 5})
	if len(sink.accepted) != 3 {
		t.Fatalf("sink accepted %d samples, want 3", len(sink.accepted))
	}

	// The unaccepted remainder is re-emitted when the sink signals resume.
	c.ResumeOutput()
	if len(sink.accepted) != 5 {
		t.Fatalf("sink accepted %d samples after resume, want 5", len(sink.accepted))
	}
	for i, want := range []float32{1, 2, 3, 4, 5} {
		if sink.accepted[i] != want {
			t.Errorf("accepted[%d] = %f, want %f", i, sink.accepted[i], want)
		}
	}
}

func TestChannelEmitReplacesStaleBlock(t *testing.T) {
	c, err := newChannel(0, 960000, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	sink := &stubSink{limit: 2}
	c.SetSink(sink)

	c.emit([]float32{1, 2, 3, 4}) // accepts 1,2; holds 3,4
	c.emit([]float32{9, 8, 7})    // sink still blocked; replaces the held block

	c.ResumeOutput() // drains 9,8; holds 7
	c.ResumeOutput() // drains 7

	want := []float32{1, 2, 9, 8, 7}
	if len(sink.accepted) != len(want) {
		t.Fatalf("sink accepted %v, want %v", sink.accepted, want)
	}
	for i := range want {
		if sink.accepted[i] != want[i] {
			t.Errorf("accepted[%d] = %f, want %f", i, sink.accepted[i], want[i])
		}
	}
}

func TestChannelResumeWithoutPendingIsNoop(t *testing.T) {
	c, err := newChannel(0, 960000, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	sink := &stubSink{limit: 100}
	c.SetSink(sink)

	c.ResumeOutput()
	if len(sink.accepted) != 0 {
		t.Errorf("resume with nothing pending wrote %d samples", len(sink.accepted))
	}
}
