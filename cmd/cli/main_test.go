package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/AcousticSpot/internal/config"
)

// resetGlobals clears the global flag values for the duration of a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	saved := [...]any{configPath, tempDir, sampleRate, workers}
	configPath, tempDir, sampleRate, workers = "", "", 0, 0
	t.Cleanup(func() {
		configPath = saved[0].(string)
		tempDir = saved[1].(string)
		sampleRate = saved[2].(int)
		workers = saved[3].(int)
	})
}

func TestScanFlags(t *testing.T) {
	resetGlobals(t)
	cfg := config.Default()

	err := scanFlags(cfg, []string{"-i", "train.mp3", "-r", "horn.wav", "-s", "70", "-st", "25", "-merged", "events.txt"})
	if err != nil {
		t.Fatalf("scanFlags failed: %v", err)
	}

	if cfg.Scan.Input != "train.mp3" || cfg.Scan.Reference != "horn.wav" {
		t.Errorf("unexpected paths: %+v", cfg.Scan)
	}
	if cfg.Scan.ThresholdPercent != 70 || cfg.Scan.StepMs != 25 {
		t.Errorf("unexpected scan params: %+v", cfg.Scan)
	}
	if cfg.Scan.Output != "match_log.txt" {
		t.Errorf("Expected default output, got %q", cfg.Scan.Output)
	}
	if cfg.Merge.Output != "events.txt" || cfg.Merge.GapMs != 3000 {
		t.Errorf("unexpected merge params: %+v", cfg.Merge)
	}
}

func TestScanFlagsRequired(t *testing.T) {
	resetGlobals(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-r", "horn.wav", "-s", "70"}},
		{"no reference", []string{"-i", "train.mp3", "-s", "70"}},
		{"no threshold", []string{"-i", "train.mp3", "-r", "horn.wav"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := scanFlags(config.Default(), tt.args)
			if err == nil || !strings.Contains(err.Error(), "required") {
				t.Errorf("Expected required-flag error, got %v", err)
			}
		})
	}
}

func TestScanFlagsRejectsBadThreshold(t *testing.T) {
	resetGlobals(t)

	err := scanFlags(config.Default(), []string{"-i", "a.wav", "-r", "b.wav", "-s", "150"})
	if err == nil || !strings.Contains(err.Error(), "threshold_percent") {
		t.Errorf("Expected threshold error, got %v", err)
	}
}

func TestScanFlagsFromConfigFile(t *testing.T) {
	resetGlobals(t)

	path := filepath.Join(t.TempDir(), "run.yaml")
	content := "scan:\n  input: train.mp3\n  reference: horn.wav\n  threshold_percent: 80\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	configPath = path

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	// The file supplies everything, a flag still wins.
	if err := scanFlags(cfg, []string{"-st", "100"}); err != nil {
		t.Fatalf("scanFlags failed: %v", err)
	}
	if cfg.Scan.ThresholdPercent != 80 || cfg.Scan.StepMs != 100 || cfg.Scan.Input != "train.mp3" {
		t.Errorf("unexpected merged config: %+v", cfg.Scan)
	}
}

func TestScanFlagsConfigWithoutThreshold(t *testing.T) {
	resetGlobals(t)

	path := filepath.Join(t.TempDir(), "run.yaml")
	content := "scan:\n  input: train.mp3\n  reference: horn.wav\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	configPath = path

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	err = scanFlags(cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("Expected -s to be required, got %v", err)
	}

	if err := scanFlags(cfg, []string{"-s", "65"}); err != nil {
		t.Fatalf("scanFlags failed: %v", err)
	}
	if cfg.Scan.ThresholdPercent != 65 {
		t.Errorf("Expected threshold 65, got %g", cfg.Scan.ThresholdPercent)
	}
}

func TestApplyGlobals(t *testing.T) {
	resetGlobals(t)
	tempDir, sampleRate, workers = "/scratch", 22050, 3

	cfg := config.Default()
	applyGlobals(cfg)

	if cfg.Audio.TempDir != "/scratch" || cfg.Audio.SampleRate != 22050 || cfg.Scan.Workers != 3 {
		t.Errorf("globals not applied: %+v %+v", cfg.Audio, cfg.Scan)
	}
}

func TestMergeCommand(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "match_log.txt")
	out := filepath.Join(dir, "merged.txt")
	log := "Match: 00:00.000 → 00:01.000 | Similarity: 0.80\n" +
		"Match: 00:01.500 → 00:02.000 | Similarity: 0.90\n" +
		"Match: 00:10.000 → 00:11.000 | Similarity: 0.75\n"
	if err := os.WriteFile(in, []byte(log), 0o644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	if err := handleMerge(config.Default(), []string{"-i", in, "-o", out, "-gap_ms", "3000"}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read merged log: %v", err)
	}
	want := "Match: 00:00.000 → 00:02.000 | Similarity: 0.90\n" +
		"Match: 00:10.000 → 00:11.000 | Similarity: 0.75\n"
	if string(got) != want {
		t.Errorf("merged log:\n%s\nwant:\n%s", got, want)
	}
}

func TestMergeFlagsRequired(t *testing.T) {
	resetGlobals(t)

	if err := mergeFlags(config.Default(), []string{"-i", "log.txt"}); err == nil {
		t.Error("Expected error without -o")
	}
	if err := mergeFlags(config.Default(), []string{"-i", "a", "-o", "b", "-gap_ms", "-1"}); err == nil {
		t.Error("Expected error for negative gap")
	}
}
