package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0
	colorMapSize   = 512

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	defaultTimeFormat     = "15:04:05"
	defaultDatetimeFormat = time.DateTime
)

// BorderConfig defines the sizes of white space around the waterfall.
type BorderConfig struct {
	Top    int // Space for frequency scale
	Left   int // Space for time scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for waterfall visualization.
type RenderConfig struct {
	TimeFormat     string         // Format string for time display (e.g. "15:04")
	DatetimeFormat string         // Format string for date/time display
	Location       *time.Location // Timezone for time display

	FontSize      float64 // Font size in points
	NoAnnotations bool    // Render the spectrum area only

	BorderConfig BorderConfig
}

// WaterfallRenderer handles the visualization of recorded channel spectra.
type WaterfallRenderer struct {
	colorMap []color.Color
	config   RenderConfig
}

// NewWaterfallRenderer creates a renderer with the given configuration,
// filling in defaults for zero values.
func NewWaterfallRenderer(config RenderConfig) *WaterfallRenderer {
	if config.TimeFormat == "" {
		config.TimeFormat = defaultTimeFormat
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &WaterfallRenderer{
		colorMap: CreateColorMap(colorMapSize),
		config:   config,
	}
}

// Render creates an image of the waterfall data with annotations.
func (r *WaterfallRenderer) Render(spec *SpectrumData, minPower, maxPower float64) (*image.RGBA, error) {
	if r.config.NoAnnotations {
		img := image.NewRGBA(image.Rect(0, 0, spec.Width(), spec.Height()))
		r.renderWaterfall(img, img.Bounds(), spec, minPower, maxPower)
		return img, nil
	}

	fullWidth := spec.Width() + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := spec.Height() + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+spec.Width(),
		r.config.BorderConfig.Top+spec.Height(),
	)

	ann, err := newAnnotator(annotatorConfig{
		TimeFormat:     r.config.TimeFormat,
		DatetimeFormat: r.config.DatetimeFormat,
		Location:       r.config.Location,
		FontSize:       r.config.FontSize,
		Borders:        r.config.BorderConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, spec); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	r.renderWaterfall(img, area, spec, minPower, maxPower)
	return img, nil
}

// renderWaterfall draws the power rows using the color map.
func (r *WaterfallRenderer) renderWaterfall(img *image.RGBA, area image.Rectangle, spec *SpectrumData, minPower, maxPower float64) {
	span := maxPower - minPower
	if span <= 0 {
		span = 1
	}

	for y, row := range spec.Rows {
		imgY := area.Min.Y + y
		for x, db := range row {
			normalized := (db - minPower) / span
			idx := int(normalized * float64(len(r.colorMap)-1))
			idx = max(0, min(idx, len(r.colorMap)-1))
			img.Set(area.Min.X+x, imgY, r.colorMap[idx])
		}
	}
}

// Internal annotator implementation

type annotatorConfig struct {
	TimeFormat     string
	DatetimeFormat string
	Location       *time.Location
	FontSize       float64
	Borders        BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, spec *SpectrumData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawFrequencyScale(img, spec); err != nil {
		return fmt.Errorf("drawing frequency scale: %w", err)
	}
	if err := a.drawTimeScale(img, spec); err != nil {
		return fmt.Errorf("drawing time scale: %w", err)
	}
	if err := a.drawInfoBar(img, spec); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, spec *SpectrumData) error {
	freqMin, freqMax := spec.FrequencyMin(), spec.FrequencyMax()
	freqStep := calculateNiceFrequencyStep(freqMax-freqMin, spec.Width())
	startFreq := math.Ceil(freqMin/freqStep) * freqStep

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	for freq := startFreq; freq <= freqMax; freq += freqStep {
		xRatio := (freq - freqMin) / (freqMax - freqMin)
		x := a.config.Borders.Left + int(xRatio*float64(spec.Width()))

		for y := a.config.Borders.Top - tickMarkHeight; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatFrequency(freq)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing frequency label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, spec *SpectrumData) error {
	duration := spec.TimestampEnd.Sub(spec.TimestampStart)
	if duration <= 0 || spec.Height() == 0 {
		return nil
	}
	timeStep := calculateNiceTimeStep(duration)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for t := spec.TimestampStart; !t.After(spec.TimestampEnd); t = t.Add(timeStep) {
		yRatio := t.Sub(spec.TimestampStart).Seconds() / duration.Seconds()
		imgY := a.config.Borders.Top + int(yRatio*float64(spec.Height()-1))

		for x := a.config.Borders.Left - tickMarkHeight; x < a.config.Borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		label := t.In(a.config.Location).Format(a.config.TimeFormat)
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, spec *SpectrumData) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s (%s)", spec.Session.Receiver, spec.Session.Modulation))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Rate: %s", formatFrequency(float64(spec.Session.SampleRate))))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Time: %s - %s",
		spec.TimestampStart.In(a.config.Location).Format(a.config.DatetimeFormat),
		spec.TimestampEnd.In(a.config.Location).Format(a.config.DatetimeFormat)))

	freqPerPixel := (spec.FrequencyMax() - spec.FrequencyMin()) / float64(spec.Width())
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("1px = %s", formatFrequency(freqPerPixel)))

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

// Helper functions

func calculateNiceFrequencyStep(range_ float64, width int) float64 {
	// Standard step sizes in Hz
	steps := []float64{
		100,
		1_000,
		2_500,
		5_000,
		10_000,
		25_000,
		50_000,
		100_000,
	}

	desiredSteps := float64(width) / pixelsPerLabel
	targetStep := range_ / desiredSteps

	for _, step := range steps {
		if step >= targetStep {
			if range_/step >= 2 {
				return step
			}
			break
		}
	}

	return range_ / 2
}

func formatFrequency(freq float64) string {
	sign := ""
	if freq < 0 {
		sign = "-"
		freq = -freq
	}
	switch {
	case freq >= 1e6:
		return fmt.Sprintf("%s%.1f MHz", sign, freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%s%.1f kHz", sign, freq/1e3)
	default:
		return fmt.Sprintf("%s%.0f Hz", sign, freq)
	}
}

func calculateNiceTimeStep(duration time.Duration) time.Duration {
	seconds := duration.Seconds()
	roughStep := seconds / 8 // aim for about 8 time labels

	niceIntervals := []float64{
		1,
		5,
		10,
		30,
		60,   // 1 minute
		300,  // 5 minutes
		600,  // 10 minutes
		1800, // 30 minutes
		3600, // 1 hour
	}

	for _, interval := range niceIntervals {
		if roughStep <= interval {
			return time.Duration(interval) * time.Second
		}
	}

	return time.Hour * 6
}
