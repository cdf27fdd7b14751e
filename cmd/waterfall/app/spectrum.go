package app

import (
	"math"
	"time"

	"github.com/sdrkit/sdrdrop/internal/dsp"
	"github.com/sdrkit/sdrdrop/internal/storage"
)

// noiseFloorDB clamps the logarithm for empty bins so silence renders as a
// uniform floor instead of negative infinity.
const noiseFloorDB = -120.0

// SpectrumData accumulates the waterfall rows of one recording session.
// Each stored block contributes one row of per-bin power in dB.
type SpectrumData struct {
	Session *storage.Session
	Bins    int

	Rows           [][]float64
	TimestampStart time.Time
	TimestampEnd   time.Time

	MinPower float64
	MaxPower float64
}

func NewSpectrumData(session *storage.Session, bins int) *SpectrumData {
	return &SpectrumData{
		Session:  session,
		Bins:     bins,
		MinPower: math.Inf(1),
		MaxPower: math.Inf(-1),
	}
}

// Update appends one block as a waterfall row. Bins above the Nyquist
// midpoint are negative frequencies and are shifted to the left half of
// the row so the axis runs from -rate/2 to +rate/2.
func (s *SpectrumData) Update(b *storage.Block) {
	row := make([]float64, s.Bins)
	for i, p := range dsp.BinPower(b.IQ, s.Bins) {
		db := noiseFloorDB
		if p > 0 {
			db = math.Max(10*math.Log10(p), noiseFloorDB)
		}
		row[(i+s.Bins/2)%s.Bins] = db

		s.MinPower = math.Min(s.MinPower, db)
		s.MaxPower = math.Max(s.MaxPower, db)
	}

	if len(s.Rows) == 0 {
		s.TimestampStart = b.Timestamp
	}
	s.TimestampEnd = b.Timestamp
	s.Rows = append(s.Rows, row)
}

func (s *SpectrumData) Width() int  { return s.Bins }
func (s *SpectrumData) Height() int { return len(s.Rows) }

// FrequencyMin and FrequencyMax bound the horizontal axis. The channelized
// stream is complex baseband, so the axis is the offset from the channel
// center.
func (s *SpectrumData) FrequencyMin() float64 { return -float64(s.Session.SampleRate) / 2 }
func (s *SpectrumData) FrequencyMax() float64 { return float64(s.Session.SampleRate) / 2 }
