package audio

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderSpectrogram(t *testing.T) {
	const rate = 8000
	samples := make([]float64, rate)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / rate)
	}

	out := filepath.Join(t.TempDir(), "plots", "tone.png")
	if err := RenderSpectrogram(samples, rate, out, 256, 128); err != nil {
		t.Fatalf("RenderSpectrogram failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Failed to open rendered PNG: %v", err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Rendered file is not a PNG: %v", err)
	}
	if cfg.Width != 256 || cfg.Height != 128 {
		t.Errorf("Expected 256x128 image, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderSpectrogramRejectsEmpty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.png")
	if err := RenderSpectrogram(nil, 8000, out, 0, 0); err == nil {
		t.Error("Expected error for empty samples")
	}
	if err := RenderSpectrogram([]float64{0.1}, 0, out, 0, 0); err == nil {
		t.Error("Expected error for zero sample rate")
	}
}
