// Package receiver implements the drop receiver: the per-channel pipeline
// orchestrator wiring translator, channelizer and demodulator together, the
// named receiver entity bound to a shared wideband tuner, and the registry
// that keeps receiver names unique.
package receiver

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sdrkit/sdrdrop/internal/audio"
	"github.com/sdrkit/sdrdrop/internal/channelizer"
	"github.com/sdrkit/sdrdrop/internal/dsp"
)

// Modulation selects the active demodulator and its channel bandwidth.
type Modulation int

const (
	ModFM Modulation = iota
	ModWBFM
	ModAM
)

func (m Modulation) String() string {
	switch m {
	case ModFM:
		return "FM"
	case ModWBFM:
		return "WBFM"
	case ModAM:
		return "AM"
	}
	return fmt.Sprintf("Modulation(%d)", int(m))
}

// ParseModulation resolves a configuration string to a Modulation.
func ParseModulation(s string) (Modulation, error) {
	switch s {
	case "FM":
		return ModFM, nil
	case "WBFM":
		return ModWBFM, nil
	case "AM":
		return ModAM, nil
	}
	return 0, fmt.Errorf("receiver: unknown modulation %q", s)
}

// Deviation parameters fed to the FM demodulator per modulation.
const (
	fmMaxDeviation   = 5000
	wbfmMaxDeviation = 75000
)

// Channel runs one receiver's signal path: translate, channelize,
// demodulate, emit. All processing happens synchronously inside ProcessIQ;
// reconfiguration calls must only be made between blocks.
type Channel struct {
	sampleRate int
	trans      *dsp.Translator
	chz        channelizer.Channelizer
	fmDemod    *dsp.FMDemodulator
	amDemod    *dsp.AMDemodulator
	demod      dsp.Demodulator
	enabled    bool
	logger     *slog.Logger

	// emitMu guards sink emission state: the playback sink resumes output
	// from its device goroutine.
	emitMu  sync.Mutex
	sink    audio.Sink
	pending []float32
}

// newChannel builds the pipeline for a tuner sample rate and initial
// frequency offset, defaulting to FM modulation. Unsupported tuner rates
// are a hard initialization failure.
func newChannel(offsetHz, sampleRate int, logger *slog.Logger) (*Channel, error) {
	chz, err := channelizer.New(sampleRate)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		sampleRate: sampleRate,
		trans:      dsp.NewTranslator(sampleRate, offsetHz),
		chz:        chz,
		fmDemod:    dsp.NewFMDemodulator(chz.SampleRate(), fmMaxDeviation),
		amDemod:    dsp.NewAMDemodulator(),
		enabled:    true,
		logger:     logger,
	}
	c.SetModulation(ModFM)
	return c, nil
}

// SetModulation reconfigures the channelizer bandwidth and swaps the active
// demodulator. The bandwidth is applied first so the FM demodulator's
// parameters derive from the resulting channel rate. The active demodulator
// is never left nil; an unmapped modulation is a wiring bug.
func (c *Channel) SetModulation(mod Modulation) {
	switch mod {
	case ModFM:
		c.chz.SetBandwidth(channelizer.BW20k)
		c.fmDemod.SetParams(c.chz.SampleRate(), fmMaxDeviation)
		c.demod = c.fmDemod
	case ModWBFM:
		c.chz.SetBandwidth(channelizer.BWWide)
		c.fmDemod.SetParams(c.chz.SampleRate(), wbfmMaxDeviation)
		c.demod = c.fmDemod
	case ModAM:
		c.chz.SetBandwidth(channelizer.BW10k)
		c.demod = c.amDemod
	default:
		panic(fmt.Sprintf("receiver: unknown modulation %v", mod))
	}
}

// SetFrequencyOffset moves the channel within the tuner's capture bandwidth.
// It does not change the enabled state.
func (c *Channel) SetFrequencyOffset(offsetHz int) {
	c.trans.SetOffset(offsetHz)
}

// ChannelSampleRate returns the pre-demodulation sample rate of the active
// cascade.
func (c *Channel) ChannelSampleRate() int {
	return c.chz.SampleRate()
}

// AddPreDemodObserver registers an observer for the channelized stream.
func (c *Channel) AddPreDemodObserver(obs channelizer.Observer) {
	c.chz.AddObserver(obs)
}

// SetSink attaches the downstream audio sink.
func (c *Channel) SetSink(sink audio.Sink) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.sink = sink
}

// ProcessIQ runs one tuner block through the pipeline. Disabled channels
// spend no CPU: the block is dropped before translation.
func (c *Channel) ProcessIQ(block []complex64) {
	if !c.enabled {
		return
	}
	translated := c.trans.Translate(block)
	channelized := c.chz.Process(translated)
	c.emit(c.demod.Demodulate(channelized))
}

// Enable resumes processing.
func (c *Channel) Enable() { c.enabled = true }

// Disable suppresses processing entirely, not merely the output.
func (c *Channel) Disable() { c.enabled = false }

// IsEnabled reports whether blocks are being processed.
func (c *Channel) IsEnabled() bool { return c.enabled }

// emit hands audio to the sink, honoring partial acceptance. At most one
// unaccepted block is held; if the sink is still blocked when the next
// block arrives, the stale remainder is replaced to keep the stream live.
func (c *Channel) emit(samples []float32) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if c.sink == nil || len(samples) == 0 {
		return
	}
	if len(c.pending) > 0 {
		c.pending = samples
		return
	}
	c.writeLocked(samples)
}

// ResumeOutput re-emits held samples once the sink is ready again. Sinks
// call this from their own goroutines.
func (c *Channel) ResumeOutput() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if c.sink == nil || len(c.pending) == 0 {
		return
	}
	samples := c.pending
	c.pending = nil
	c.writeLocked(samples)
}

func (c *Channel) writeLocked(samples []float32) {
	n, err := c.sink.WriteSamples(samples)
	if err != nil {
		c.logger.Error(fmt.Sprintf("audio sink write failed: %s", err))
		return
	}
	if n < len(samples) {
		c.pending = append([]float32(nil), samples[n:]...)
	}
}
