package acousticspot

import (
	"fmt"
	"os"

	"github.com/himanishpuri/AcousticSpot/internal/audio"
	"github.com/himanishpuri/AcousticSpot/internal/interval"
	"github.com/himanishpuri/AcousticSpot/internal/scanner"
)

type Config struct {
	SampleRate       int
	StepMs           int
	ThresholdPercent float64 // 0-100
	GapMs            int64
	Workers          int
	TempDir          string
	Logger           Logger
	Progress         scanner.ProgressFunc
	Loader           SampleLoader
	Prober           SourceProber
}

type Option func(*Config)

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

func WithStepMs(ms int) Option {
	return func(c *Config) {
		c.StepMs = ms
	}
}

// WithThresholdPercent sets the similarity a window must exceed, as a
// percentage. 70 means cosine similarity > 0.70.
func WithThresholdPercent(percent float64) Option {
	return func(c *Config) {
		c.ThresholdPercent = percent
	}
}

func WithGapMs(ms int64) Option {
	return func(c *Config) {
		c.GapMs = ms
	}
}

func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithProgress(fn scanner.ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}

// WithSampleLoader replaces the ffmpeg based normalizer, e.g. with samples
// that are already in memory.
func WithSampleLoader(loader SampleLoader) Option {
	return func(c *Config) {
		c.Loader = loader
	}
}

// WithSourceProber replaces ffprobe for describing the input files in
// ScanReport.
func WithSourceProber(prober SourceProber) Option {
	return func(c *Config) {
		c.Prober = prober
	}
}

func defaultConfig() *Config {
	return &Config{
		SampleRate: audio.DefaultSampleRate,
		StepMs:     50,
		GapMs:      interval.DefaultGapMs,
		TempDir:    os.TempDir(),
		Logger:     nil,
	}
}

// Threshold returns the configured threshold as a cosine similarity fraction.
func (c *Config) Threshold() float64 {
	return c.ThresholdPercent / 100.0
}

func (c *Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.StepMs <= 0 {
		return fmt.Errorf("step must be positive, got %d ms", c.StepMs)
	}
	if c.ThresholdPercent < 0 || c.ThresholdPercent > 100 {
		return fmt.Errorf("similarity threshold must be within 0-100, got %g", c.ThresholdPercent)
	}
	if c.GapMs < 0 {
		return fmt.Errorf("gap must not be negative, got %d ms", c.GapMs)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
