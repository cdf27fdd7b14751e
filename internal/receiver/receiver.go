package receiver

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/sdrkit/sdrdrop/internal/audio"
	"github.com/sdrkit/sdrdrop/internal/channelizer"
	"github.com/sdrkit/sdrdrop/internal/tuner"
)

// fitGuardBandHz is subtracted from the tuner's one-sided bandwidth when
// checking whether a channel fits the capture. Kept verbatim for
// compatibility.
const fitGuardBandHz = 12500

// Config is one receiver's configuration block.
type Config struct {
	Name       string `yaml:"name"`       // unique receiver name
	Frequency  int64  `yaml:"frequency"`  // target channel center in Hz
	Tuner      string `yaml:"tuner"`      // name of the wideband source to attach to
	Modulation string `yaml:"modulation"` // FM, WBFM or AM
}

// Validate reports missing or unresolvable configuration values. These are
// hard failures at initialization, never at runtime.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("receiver: name is required")
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("receiver %s: frequency is required", c.Name)
	}
	if c.Tuner == "" {
		return fmt.Errorf("receiver %s: tuner is required", c.Name)
	}
	if _, err := ParseModulation(c.Modulation); err != nil {
		return fmt.Errorf("receiver %s: %w", c.Name, err)
	}
	return nil
}

// WithReceiverLogger sets the logger for the receiver.
func WithReceiverLogger(logger *slog.Logger) func(*Receiver) {
	return func(r *Receiver) {
		r.logger = logger.With(slog.String("receiver", r.name))
	}
}

// Receiver is one digital drop receiver: a named, independently tunable
// channel bound to a shared wideband tuner. It implements tuner.Consumer.
type Receiver struct {
	name     string
	targetFq int64
	tn       tuner.Tuner
	registry *Registry
	channel  *Channel
	logger   *slog.Logger
}

// New initializes a receiver, registers its name and attaches it to the
// tuner. A duplicate name, an unsupported tuner rate or an unresolvable
// modulation abort initialization of this receiver only.
func New(cfg Config, tn tuner.Tuner, registry *Registry, options ...func(*Receiver)) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Receiver{
		name:     cfg.Name,
		targetFq: cfg.Frequency,
		tn:       tn,
		registry: registry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(r)
	}

	if err := registry.add(cfg.Name, r); err != nil {
		return nil, err
	}

	offset := cfg.Frequency - tn.CenterFrequency()
	channel, err := newChannel(int(offset), tn.SampleRate(), r.logger)
	if err != nil {
		registry.remove(cfg.Name)
		return nil, fmt.Errorf("receiver %s: %w", cfg.Name, err)
	}
	r.channel = channel

	mod, err := ParseModulation(cfg.Modulation)
	if err != nil {
		registry.remove(cfg.Name)
		return nil, fmt.Errorf("receiver %s: %w", cfg.Name, err)
	}
	channel.SetModulation(mod)

	tn.Attach(r)
	r.TunerFrequencyChanged(tn.CenterFrequency())

	r.logger.Info("receiver initialized",
		slog.String("frequency", humanize.SI(float64(cfg.Frequency), "Hz")),
		slog.String("modulation", mod.String()),
		slog.Int("channelRate", channel.ChannelSampleRate()))
	return r, nil
}

// Name returns the receiver's registered name.
func (r *Receiver) Name() string { return r.name }

// AudioSampleRate returns the fixed rate of the produced audio stream.
func (r *Receiver) AudioSampleRate() int { return audio.SampleRate }

// PreDemodSampleRate returns the rate of the channelized stream published
// to observers.
func (r *Receiver) PreDemodSampleRate() int { return r.channel.ChannelSampleRate() }

// AddPreDemodObserver registers an observer for the channelized stream.
// Observers fire synchronously on the tuner's delivery goroutine.
func (r *Receiver) AddPreDemodObserver(obs channelizer.Observer) {
	r.channel.AddPreDemodObserver(obs)
}

// SetSink attaches the downstream audio sink.
func (r *Receiver) SetSink(sink audio.Sink) { r.channel.SetSink(sink) }

// ResumeOutput re-emits audio held back by a sink's partial acceptance.
// Sinks invoke this from their own goroutines once they can accept more.
func (r *Receiver) ResumeOutput() { r.channel.ResumeOutput() }

// SetModulation switches the receiver's modulation at runtime.
func (r *Receiver) SetModulation(mod Modulation) { r.channel.SetModulation(mod) }

// IsReady reports whether the underlying tuner is delivering samples.
func (r *Receiver) IsReady() bool { return r.tn.IsReady() }

// IsEnabled reports whether the channel currently fits the tuner's usable
// bandwidth and is processing blocks.
func (r *Receiver) IsEnabled() bool { return r.channel.IsEnabled() }

// Close detaches the receiver from its tuner and releases its name.
func (r *Receiver) Close() {
	r.tn.Detach(r)
	r.registry.remove(r.name)
}

// IQReceived implements tuner.Consumer.
func (r *Receiver) IQReceived(block []complex64) {
	r.channel.ProcessIQ(block)
}

// TunerFrequencyChanged implements tuner.Consumer. The channel offset is
// recomputed; a channel that no longer fits the tuner's usable bandwidth is
// disabled with a warning and re-enabled automatically by a later retune
// that brings it back in range.
func (r *Receiver) TunerFrequencyChanged(centerHz int64) {
	offset := r.targetFq - centerHz
	limit := int64(r.tn.SampleRate())/2 - fitGuardBandHz
	if offset > limit || offset < -limit {
		if r.channel.IsEnabled() {
			r.logger.Warn(fmt.Sprintf("receiver does not fit into tuner %s after retune, disabling", r.tn.Name()),
				slog.Int64("offset", offset),
				slog.Int64("limit", limit))
			r.channel.Disable()
		}
		return
	}
	r.channel.SetFrequencyOffset(int(offset))
	r.channel.Enable()
}

// ReadyStateChanged implements tuner.Consumer.
func (r *Receiver) ReadyStateChanged(ready bool) {
	if ready {
		r.logger.Info("tuner ready")
		return
	}
	r.logger.Warn("tuner not ready")
}
