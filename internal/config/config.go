package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/himanishpuri/AcousticSpot/pkg/acousticspot"
	"github.com/himanishpuri/AcousticSpot/pkg/logger"
)

// Config mirrors the command line options so runs can be reproduced from a file.
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Scan    ScanConfig    `yaml:"scan"`
	Merge   MergeConfig   `yaml:"merge"`
	Logging LoggingConfig `yaml:"logging"`
}

// AudioConfig controls the signal normalizer.
type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	TempDir    string `yaml:"temp_dir"`
}

// ScanConfig controls the similarity scanner.
type ScanConfig struct {
	Input            string  `yaml:"input"`
	Reference        string  `yaml:"reference"`
	ThresholdPercent float64 `yaml:"threshold_percent"` // 0-100
	ThresholdSet     bool    `yaml:"-"`                 // threshold_percent was present in the file
	StepMs           int     `yaml:"step_ms"`
	Workers          int     `yaml:"workers"` // 0 = one per CPU
	Output           string  `yaml:"output"`
}

// MergeConfig controls interval consolidation.
type MergeConfig struct {
	GapMs  int64  `yaml:"gap_ms"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	Color *bool  `yaml:"color"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 16000,
			TempDir:    os.TempDir(),
		},
		Scan: ScanConfig{
			StepMs: 50,
			Output: "match_log.txt",
		},
		Merge: MergeConfig{
			GapMs: 3000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// A zero threshold is valid, so presence has to be read separately.
	var presence struct {
		Scan struct {
			ThresholdPercent *float64 `yaml:"threshold_percent"`
		} `yaml:"scan"`
	}
	if err := yaml.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Scan.ThresholdSet = presence.Scan.ThresholdPercent != nil

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("scan config: %w", err)
	}
	if err := c.Merge.Validate(); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (a *AudioConfig) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", a.SampleRate)
	}
	if a.TempDir == "" {
		return fmt.Errorf("temp_dir must not be empty")
	}
	return nil
}

func (s *ScanConfig) Validate() error {
	if s.ThresholdPercent < 0 || s.ThresholdPercent > 100 {
		return fmt.Errorf("threshold_percent must be within 0-100, got %g", s.ThresholdPercent)
	}
	if s.StepMs <= 0 {
		return fmt.Errorf("step_ms must be positive, got %d", s.StepMs)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

func (m *MergeConfig) Validate() error {
	if m.GapMs < 0 {
		return fmt.Errorf("gap_ms must not be negative, got %d", m.GapMs)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	_, err := logger.ParseLevel(l.Level)
	return err
}

// Options translates the file into service options.
func (c *Config) Options() []acousticspot.Option {
	return []acousticspot.Option{
		acousticspot.WithSampleRate(c.Audio.SampleRate),
		acousticspot.WithTempDir(c.Audio.TempDir),
		acousticspot.WithStepMs(c.Scan.StepMs),
		acousticspot.WithThresholdPercent(c.Scan.ThresholdPercent),
		acousticspot.WithWorkers(c.Scan.Workers),
		acousticspot.WithGapMs(c.Merge.GapMs),
	}
}

// Apply configures lg from the logging section.
func (l *LoggingConfig) Apply(lg *logger.Logger) {
	if lvl, err := logger.ParseLevel(l.Level); err == nil {
		lg.SetLevel(lvl)
	}
	if l.Color != nil {
		lg.SetColorize(*l.Color)
	}
}
