// Package tuner provides the wideband capture side of the drop receiver:
// the contract every receiver consumes, and an acquisition source that runs
// an external SDR binary and parses its raw IQ stream.
package tuner

// Consumer receives IQ sample blocks and tuner state notifications. All
// callbacks fire synchronously on the tuner's delivery goroutine: a block is
// fully processed by every consumer before the next one is dispatched, and
// retune/ready notifications never interleave with an in-flight block.
type Consumer interface {
	// IQReceived delivers one block of complex samples at the tuner rate.
	// The block length is always a multiple of BlockAlign.
	IQReceived(block []complex64)

	// TunerFrequencyChanged reports a new absolute center frequency in Hz.
	TunerFrequencyChanged(centerHz int64)

	// ReadyStateChanged reports the tuner becoming ready or unready.
	ReadyStateChanged(ready bool)
}

// Tuner is the shared wideband source every drop receiver attaches to.
type Tuner interface {
	Name() string
	SampleRate() int
	CenterFrequency() int64
	IsReady() bool

	Attach(c Consumer)
	Detach(c Consumer)
}

// BlockAlign is the guaranteed divisor of every delivered block length. It
// is a multiple of each channelizer cascade factor (the largest are 60 for
// the 960 kHz tree and 150 for the 2.4 MHz tree), so cascades never see a
// block that does not divide evenly.
const BlockAlign = 300
