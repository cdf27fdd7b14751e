package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/sdrkit/sdrdrop/internal/storage"
)

// Run renders a recorded session from the given database into a waterfall
// image.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	session, err := store.Session(config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session %d: %w", config.SessionID, err)
	}

	logger.Info("reading session",
		slog.Int64("session", session.ID),
		slog.String("receiver", session.Receiver),
		slog.String("modulation", session.Modulation),
		slog.Int("sampleRate", session.SampleRate))

	spec := NewSpectrumData(session, config.Bins)
	err = store.Blocks(session.ID, func(b *storage.Block) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		spec.Update(b)
		return nil
	})
	if err != nil {
		return fmt.Errorf("reading blocks: %w", err)
	}
	if spec.Height() == 0 {
		return fmt.Errorf("session %d has no recorded blocks", session.ID)
	}

	minPower, maxPower := spec.MinPower, spec.MaxPower
	if config.MinPower != nil {
		minPower = *config.MinPower
	}
	if config.MaxPower != nil {
		maxPower = *config.MaxPower
	}

	logger.Info("finished reading data points",
		slog.Group("stats",
			slog.String("minTimestamp", spec.TimestampStart.Local().Format(time.DateTime)),
			slog.String("maxTimestamp", spec.TimestampEnd.Local().Format(time.DateTime)),
			slog.String("minPower", fmt.Sprintf("%0.2fdB", minPower)),
			slog.String("maxPower", fmt.Sprintf("%0.2fdB", maxPower)),
		))

	renderer := NewWaterfallRenderer(RenderConfig{
		NoAnnotations: config.NoAnnotations,
	})

	logger.Info("rendering waterfall",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", spec.Width()),
			slog.Int("height", spec.Height()),
		))

	img, err := renderer.Render(spec, minPower, maxPower)
	if err != nil {
		return fmt.Errorf("rendering waterfall: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
