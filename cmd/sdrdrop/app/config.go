package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sdrkit/sdrdrop/internal/receiver"
	"github.com/sdrkit/sdrdrop/internal/tuner"
)

const (
	AudioOutputNone     = "none"
	AudioOutputWAV      = "wav"
	AudioOutputPlayback = "playback"
)

// Config represents the main application configuration.
type Config struct {
	Settings  Settings          `yaml:"settings"`
	Tuner     TunerConfig       `yaml:"tuner"`
	Receivers []receiver.Config `yaml:"receivers"`
	Storage   StorageConfig     `yaml:"storage"`
	Audio     AudioConfig       `yaml:"audio"`
}

// Settings represents global application settings.
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return level, nil
}

// TunerConfig describes the shared wideband frontend.
type TunerConfig struct {
	Name            string           `yaml:"name"`
	CenterFrequency int64            `yaml:"centerFrequency"`
	RTL             *tuner.RTLConfig `yaml:"rtl"`
}

// StorageConfig enables recording of the channelized streams.
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
}

// AudioConfig selects where demodulated audio goes.
type AudioConfig struct {
	Output    string `yaml:"output"`    // none, wav or playback
	Directory string `yaml:"directory"` // WAV output directory
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for hard errors before anything starts.
func (c *Config) Validate() error {
	if _, err := c.Settings.Level(); err != nil {
		return err
	}

	if c.Tuner.Name == "" {
		return fmt.Errorf("tuner: name is required")
	}
	if c.Tuner.CenterFrequency <= 0 {
		return fmt.Errorf("tuner %s: centerFrequency is required", c.Tuner.Name)
	}
	if c.Tuner.RTL == nil {
		return fmt.Errorf("tuner %s: rtl configuration is required", c.Tuner.Name)
	}
	if err := c.Tuner.RTL.Validate(); err != nil {
		return err
	}

	if len(c.Receivers) == 0 {
		return fmt.Errorf("no receivers specified in configuration")
	}
	for i := range c.Receivers {
		if err := c.Receivers[i].Validate(); err != nil {
			return err
		}
		if c.Receivers[i].Tuner != c.Tuner.Name {
			return fmt.Errorf("receiver %s: unknown tuner %q", c.Receivers[i].Name, c.Receivers[i].Tuner)
		}
	}

	switch c.Audio.Output {
	case "", AudioOutputNone, AudioOutputWAV, AudioOutputPlayback:
	default:
		return fmt.Errorf("audio: unknown output %q", c.Audio.Output)
	}
	return nil
}
