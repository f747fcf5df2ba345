package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/AcousticSpot/pkg/acousticspot"
	"github.com/himanishpuri/AcousticSpot/pkg/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scan.StepMs != 50 || cfg.Merge.GapMs != 3000 || cfg.Audio.SampleRate != 16000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
audio:
  sample_rate: 22050
scan:
  input: train.mp3
  reference: horn.mp3
  threshold_percent: 70
  step_ms: 100
merge:
  gap_ms: 1500
logging:
  level: debug
  color: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 22050 {
		t.Errorf("Expected sample rate 22050, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.TempDir == "" {
		t.Error("Expected temp dir default to survive partial audio section")
	}
	if cfg.Scan.Input != "train.mp3" || cfg.Scan.Reference != "horn.mp3" {
		t.Errorf("Unexpected scan paths: %+v", cfg.Scan)
	}
	if cfg.Scan.ThresholdPercent != 70 || cfg.Scan.StepMs != 100 || !cfg.Scan.ThresholdSet {
		t.Errorf("Unexpected scan params: %+v", cfg.Scan)
	}
	if cfg.Scan.Output != "match_log.txt" {
		t.Errorf("Expected default output, got %q", cfg.Scan.Output)
	}
	if cfg.Merge.GapMs != 1500 {
		t.Errorf("Expected gap 1500, got %d", cfg.Merge.GapMs)
	}
	if cfg.Logging.Color == nil || *cfg.Logging.Color {
		t.Errorf("Expected color disabled, got %v", cfg.Logging.Color)
	}
}

func TestLoadThresholdPresence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"absent", "merge:\n  gap_ms: 1000\n", false},
		{"explicit zero", "scan:\n  threshold_percent: 0\n", true},
		{"other scan keys only", "scan:\n  step_ms: 20\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Scan.ThresholdSet != tt.want {
				t.Errorf("ThresholdSet = %v, expected %v", cfg.Scan.ThresholdSet, tt.want)
			}
		})
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"threshold too high", "scan:\n  threshold_percent: 101\n", "threshold_percent"},
		{"threshold negative", "scan:\n  threshold_percent: -1\n", "threshold_percent"},
		{"zero step", "scan:\n  step_ms: 0\n", "step_ms"},
		{"negative gap", "merge:\n  gap_ms: -5\n", "gap_ms"},
		{"bad rate", "audio:\n  sample_rate: -1\n", "sample_rate"},
		{"bad level", "logging:\n  level: chatty\n", "log level"},
		{"bad yaml", "scan: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoggingApply(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New(logger.Config{Level: logger.INFO, Colorize: true, Output: &buf})

	off := false
	(&LoggingConfig{Level: "warn", Color: &off}).Apply(lg)

	lg.Infof("hidden")
	lg.Warnf("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO line logged after raising level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown") {
		t.Errorf("Expected uncoloured WARN line, got %q", out)
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Scan.ThresholdPercent = 85
	if _, err := acousticspot.NewService(cfg.Options()...); err != nil {
		t.Fatalf("service rejected default config: %v", err)
	}

	cfg.Scan.StepMs = 0
	if _, err := acousticspot.NewService(cfg.Options()...); err == nil {
		t.Error("Expected service to reject zero step")
	}
}
