package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdrkit/sdrdrop/internal/audio"
	"github.com/sdrkit/sdrdrop/internal/receiver"
	"github.com/sdrkit/sdrdrop/internal/storage"
	"github.com/sdrkit/sdrdrop/internal/tuner"
)

const storageDir = "data"

// Run wires the tuner, receivers, storage and audio sinks together and
// blocks until ctx is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	handler, err := tuner.NewRTL(config.Tuner.RTL)
	if err != nil {
		return fmt.Errorf("failed to create tuner: %w", err)
	}

	src := tuner.NewSource(
		config.Tuner.Name,
		config.Tuner.RTL.SampleRate,
		config.Tuner.CenterFrequency,
		handler,
		tuner.WithLogger(logger),
	)

	var store *storage.Store
	if config.Storage.Enabled {
		if store, err = createStorage(&config.Storage); err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer store.Close()
	}

	registry := receiver.NewRegistry()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	for _, cfg := range config.Receivers {
		rcv, err := receiver.New(cfg, src, registry, receiver.WithReceiverLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to create receiver: %w", err)
		}
		closers = append(closers, rcv.Close)

		sink, err := attachSink(rcv, &config.Audio)
		if err != nil {
			return err
		}
		if sink != nil {
			closers = append(closers, func() { _ = sink.Close() })
		}

		if store != nil {
			rec, err := storage.NewRecorder(store, cfg.Name, cfg.Modulation, rcv.PreDemodSampleRate(),
				storage.WithRecorderLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to create recorder for %s: %w", cfg.Name, err)
			}
			rcv.AddPreDemodObserver(rec.Observe)
			closers = append(closers, rec.Close)
		}
	}

	if err = src.Start(ctx); err != nil {
		return fmt.Errorf("failed to start tuner: %w", err)
	}
	defer src.Stop()

	logger.Info("running",
		slog.String("tuner", config.Tuner.Name),
		slog.String("centerFrequency", humanize.SI(float64(config.Tuner.CenterFrequency), "Hz")),
		slog.Int("receivers", len(config.Receivers)))

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// attachSink creates and opens the configured audio sink for one receiver.
// It returns the sink so the caller can close it on shutdown, or nil when
// audio output is disabled.
func attachSink(rcv *receiver.Receiver, config *AudioConfig) (audio.Sink, error) {
	var sink audio.Sink
	switch config.Output {
	case "", AudioOutputNone:
		return nil, nil

	case AudioOutputWAV:
		dir := config.Directory
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.wav", rcv.Name(), time.Now().UTC().Format("20060102_150405")))
		sink = audio.NewWAVSink(path)

	case AudioOutputPlayback:
		sink = audio.NewPlaybackSink(rcv.ResumeOutput)

	default:
		return nil, fmt.Errorf("audio: unknown output %q", config.Output)
	}

	if err := sink.Open(); err != nil {
		return nil, fmt.Errorf("failed to open audio sink for %s: %w", rcv.Name(), err)
	}
	rcv.SetSink(sink)
	return sink, nil
}

func createStorage(config *StorageConfig) (*storage.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dbDir := filepath.Join(wd, storageDir)
	if config.DataDirectory != "" {
		dbDir = filepath.Join(wd, config.DataDirectory)
	}

	stat, err := os.Stat(dbDir)
	if err != nil {
		return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbDir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbDir)
	}

	dbPath := filepath.Join(dbDir, fmt.Sprintf("ddr_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.New(dbPath), nil
}
