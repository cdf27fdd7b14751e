package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// playbackBufferSize bounds the amount of queued audio: half a second of
// 16-bit mono at 16 kHz. Beyond that the sink reports partial acceptance.
const playbackBufferSize = SampleRate

// PlaybackSink plays demodulated audio on the host's output device. The
// device drains an internal bounded buffer; when the buffer fills, writes
// are accepted partially and the resume callback fires once the device has
// drained below half capacity.
type PlaybackSink struct {
	resume func()

	mu     sync.Mutex
	buf    []byte
	closed bool

	ctx    *oto.Context
	player *oto.Player
}

// NewPlaybackSink creates a playback sink. The resume callback is invoked
// from the playback goroutine whenever the sink is ready for more samples
// after reporting a partial write.
func NewPlaybackSink(resume func()) *PlaybackSink {
	if resume == nil {
		resume = func() {}
	}
	return &PlaybackSink{resume: resume}
}

func (s *PlaybackSink) Open() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("audio: opening playback context: %w", err)
	}
	<-ready

	s.ctx = ctx
	s.player = ctx.NewPlayer(playbackReader{s})
	s.player.Play()
	return nil
}

func (s *PlaybackSink) WriteSamples(samples []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("audio: playback sink is closed")
	}

	free := (playbackBufferSize*2 - len(s.buf)) / 2
	n := min(len(samples), free)
	for _, v := range samples[:n] {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(clamp(v)*32767)))
		s.buf = append(s.buf, b[:]...)
	}
	return n, nil
}

func (s *PlaybackSink) Flush() error { return nil }

func (s *PlaybackSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.player != nil {
		return s.player.Close()
	}
	return nil
}

// playbackReader is the io.Reader the audio device pulls from.
type playbackReader struct {
	sink *PlaybackSink
}

func (r playbackReader) Read(p []byte) (int, error) {
	s := r.sink
	s.mu.Lock()

	if s.closed && len(s.buf) == 0 {
		s.mu.Unlock()
		return 0, io.EOF
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]

	// The device expects a full read; pad with silence when the pipeline
	// has not produced enough audio yet.
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	s.mu.Unlock()

	// Space was freed; a producer holding back samples may continue. The
	// callback is a no-op when nothing is pending.
	if n > 0 {
		s.resume()
	}
	return len(p), nil
}
