package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// WAVSink writes demodulated audio to a 16-bit mono WAV file. It never
// exerts backpressure; every offered sample is accepted.
type WAVSink struct {
	path string
	file *os.File
	enc  *wav.Encoder
	buf  *goaudio.IntBuffer
}

// NewWAVSink creates a sink that will write to the given path on Open.
func NewWAVSink(path string) *WAVSink {
	return &WAVSink{path: path}
}

func (s *WAVSink) Open() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("audio: creating %s: %w", s.path, err)
	}
	s.file = f
	s.enc = wav.NewEncoder(f, SampleRate, wavBitDepth, 1, 1)
	s.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		SourceBitDepth: wavBitDepth,
	}
	return nil
}

func (s *WAVSink) WriteSamples(samples []float32) (int, error) {
	if s.enc == nil {
		return 0, fmt.Errorf("audio: WAV sink %s is not open", s.path)
	}
	s.buf.Data = s.buf.Data[:0]
	for _, v := range samples {
		s.buf.Data = append(s.buf.Data, int(clamp(v)*32767))
	}
	if err := s.enc.Write(s.buf); err != nil {
		return 0, fmt.Errorf("audio: writing %s: %w", s.path, err)
	}
	return len(samples), nil
}

func (s *WAVSink) Flush() error { return nil }

func (s *WAVSink) Close() error {
	if s.enc == nil {
		return nil
	}
	if err := s.enc.Close(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("audio: finalizing %s: %w", s.path, err)
	}
	s.enc = nil
	return s.file.Close()
}

func clamp(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
