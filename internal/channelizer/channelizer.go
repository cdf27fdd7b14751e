// Package channelizer isolates one narrowband channel from a wideband
// capture. A channelizer owns a fixed bank of decimation stages for its
// hardware sample rate and assembles the active cascade per bandwidth class;
// the decimated stream is published to observers before demodulation.
package channelizer

import (
	"fmt"
)

// Bandwidth selects which cascade topology a channelizer assembles.
type Bandwidth int

const (
	BWWide Bandwidth = iota // widest channel the rate tree supports
	BW20k                   // 25 kHz channel spacing, 32 kHz output
	BW10k                   // 12.5 kHz channel spacing, 16 kHz output
	BW6k                    // SSB-width channel, 16 kHz output
)

func (bw Bandwidth) String() string {
	switch bw {
	case BWWide:
		return "WIDE"
	case BW20k:
		return "20K"
	case BW10k:
		return "10K"
	case BW6k:
		return "6K"
	}
	return fmt.Sprintf("Bandwidth(%d)", int(bw))
}

// Observer receives the channelized block that is about to be demodulated.
// Observers run synchronously inside Process, before it returns.
type Observer func(block []complex64)

// Channelizer decimates a wideband IQ stream down to one channel's rate.
type Channelizer interface {
	// SetBandwidth rebuilds the active cascade for the given class,
	// discarding all filter history from the previous topology.
	SetBandwidth(bw Bandwidth)

	// SampleRate returns the channel output rate of the active cascade.
	SampleRate() int

	// Process decimates a block, publishes it to observers and returns it.
	Process(in []complex64) []complex64

	// AddObserver registers a pre-demodulation observer.
	AddObserver(obs Observer)
}

// New returns the channelizer variant for a supported tuner sample rate.
// Only 960 kHz and 2.4 MHz capture rates have rate trees.
func New(sampleRate int) (Channelizer, error) {
	switch sampleRate {
	case 960000:
		return newChannelizer960(), nil
	case 2400000:
		return newChannelizer2400(), nil
	}
	return nil, fmt.Errorf("channelizer: unsupported tuner sample rate %d (legal rates: 960000, 2400000)", sampleRate)
}
