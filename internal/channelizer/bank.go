package channelizer

import (
	"fmt"

	"github.com/sdrkit/sdrdrop/internal/dsp"
)

// Channel-shaping kernels, applied as the decimate-by-one tail of a cascade.
// Cutoffs are fractions of the stage's input rate.
var (
	kernel25kChannel  = dsp.Lowpass(65, 12500.0/32000.0) // 25 kHz channel at 32 kHz
	kernel12k5Channel = dsp.Lowpass(65, 6250.0/16000.0)  // 12.5 kHz channel at 16 kHz
	kernelSSBChannel  = dsp.Lowpass(65, 3000.0/16000.0)  // SSB width at 16 kHz
)

// bank carries the state shared by both channelizer variants: the hardware
// rate, the currently assembled cascade and the observer list.
type bank struct {
	hwRate    int
	cascade   *dsp.Cascade[complex64]
	observers []Observer
}

func (b *bank) SampleRate() int {
	return b.hwRate / b.cascade.Factor()
}

func (b *bank) Process(in []complex64) []complex64 {
	out := b.cascade.Decimate(in)
	for _, obs := range b.observers {
		obs(out)
	}
	return out
}

func (b *bank) AddObserver(obs Observer) {
	b.observers = append(b.observers, obs)
}

// channelizer960 owns the 960 kHz rate tree:
//
//	960k -/5-> 192k -/3-> 64k -/2-> 32k   (wide/voice leg)
//	            192k -/4-> 48k -/3-> 16k  (narrow leg)
type channelizer960 struct {
	bank

	dec960k192k *dsp.Decimator[complex64]
	dec192k64k  *dsp.Decimator[complex64]
	dec64k32k   *dsp.Decimator[complex64]
	dec192k48k  *dsp.Decimator[complex64]
	dec48k16k   *dsp.Decimator[complex64]
	ch25k       *dsp.Decimator[complex64]
	ch12k5      *dsp.Decimator[complex64]
	chSSB       *dsp.Decimator[complex64]
}

func newChannelizer960() *channelizer960 {
	c := &channelizer960{
		bank:        bank{hwRate: 960000},
		dec960k192k: dsp.NewDecimator[complex64](5, dsp.AntiAliasKernel(5)),
		dec192k64k:  dsp.NewDecimator[complex64](3, dsp.AntiAliasKernel(3)),
		dec64k32k:   dsp.NewDecimator[complex64](2, dsp.AntiAliasKernel(2)),
		dec192k48k:  dsp.NewDecimator[complex64](4, dsp.AntiAliasKernel(4)),
		dec48k16k:   dsp.NewDecimator[complex64](3, dsp.AntiAliasKernel(3)),
		ch25k:       dsp.NewDecimator[complex64](1, kernel25kChannel),
		ch12k5:      dsp.NewDecimator[complex64](1, kernel12k5Channel),
		chSSB:       dsp.NewDecimator[complex64](1, kernelSSBChannel),
	}
	c.SetBandwidth(BW20k)
	return c
}

func (c *channelizer960) SetBandwidth(bw Bandwidth) {
	switch bw {
	case BWWide:
		c.cascade = dsp.NewCascade(c.dec960k192k)
	case BW20k:
		c.cascade = dsp.NewCascade(c.dec960k192k, c.dec192k64k, c.dec64k32k, c.ch25k)
	case BW10k:
		c.cascade = dsp.NewCascade(c.dec960k192k, c.dec192k48k, c.dec48k16k, c.ch12k5)
	case BW6k:
		c.cascade = dsp.NewCascade(c.dec960k192k, c.dec192k48k, c.dec48k16k, c.chSSB)
	default:
		panic(fmt.Sprintf("channelizer: unknown bandwidth %v", bw))
	}
}

// channelizer2400 owns the 2.4 MHz rate tree:
//
//	2400k -/3-> 800k -/5-> 160k -/5-> 32k -/2-> 16k
type channelizer2400 struct {
	bank

	dec2400k800k *dsp.Decimator[complex64]
	dec800k160k  *dsp.Decimator[complex64]
	dec160k32k   *dsp.Decimator[complex64]
	dec32k16k    *dsp.Decimator[complex64]
	ch25k        *dsp.Decimator[complex64]
	ch12k5       *dsp.Decimator[complex64]
	chSSB        *dsp.Decimator[complex64]
}

func newChannelizer2400() *channelizer2400 {
	c := &channelizer2400{
		bank:         bank{hwRate: 2400000},
		dec2400k800k: dsp.NewDecimator[complex64](3, dsp.AntiAliasKernel(3)),
		dec800k160k:  dsp.NewDecimator[complex64](5, dsp.AntiAliasKernel(5)),
		dec160k32k:   dsp.NewDecimator[complex64](5, dsp.AntiAliasKernel(5)),
		dec32k16k:    dsp.NewDecimator[complex64](2, dsp.AntiAliasKernel(2)),
		ch25k:        dsp.NewDecimator[complex64](1, kernel25kChannel),
		ch12k5:       dsp.NewDecimator[complex64](1, kernel12k5Channel),
		chSSB:        dsp.NewDecimator[complex64](1, kernelSSBChannel),
	}
	c.SetBandwidth(BW20k)
	return c
}

func (c *channelizer2400) SetBandwidth(bw Bandwidth) {
	switch bw {
	case BWWide:
		c.cascade = dsp.NewCascade(c.dec2400k800k, c.dec800k160k)
	case BW20k:
		c.cascade = dsp.NewCascade(c.dec2400k800k, c.dec800k160k, c.dec160k32k, c.ch25k)
	case BW10k:
		c.cascade = dsp.NewCascade(c.dec2400k800k, c.dec800k160k, c.dec160k32k, c.dec32k16k, c.ch12k5)
	case BW6k:
		c.cascade = dsp.NewCascade(c.dec2400k800k, c.dec800k160k, c.dec160k32k, c.dec32k16k, c.chSSB)
	default:
		panic(fmt.Sprintf("channelizer: unknown bandwidth %v", bw))
	}
}
