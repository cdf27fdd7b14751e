// Package audio defines the flow-controlled contract between a demodulated
// audio producer and its sink, plus two sink implementations: a WAV file
// writer and a live playback device.
//
// The contract is pull-paced: a sink may accept fewer samples than offered,
// after which the producer must stop emitting until the sink signals resume.
// Producers hold at most one unaccepted block; audio is real time and stale
// samples are replaced, never queued without bound.
package audio

// SampleRate is the fixed rate of every demodulated audio stream.
const SampleRate = 16000

// Sink consumes demodulated audio samples.
type Sink interface {
	// Open prepares the sink for writing.
	Open() error

	// WriteSamples accepts up to len(samples) samples and returns how many
	// were taken. A short count signals backpressure; the producer must
	// hold the remainder until the sink invokes its resume callback.
	WriteSamples(samples []float32) (int, error)

	// Flush tells the sink no more samples are buffered upstream.
	Flush() error

	// Close releases the sink. WriteSamples must not be called afterwards.
	Close() error
}
