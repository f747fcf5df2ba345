package audio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

func TestParseSourceInfo(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		expected models.SourceInfo
	}{
		{
			name: "mp3",
			out: `{"streams": [{"codec_name": "mp3", "sample_rate": "44100", "channels": 2}],
				"format": {"format_name": "mp3", "duration": "754.250000"}}`,
			expected: models.SourceInfo{Container: "mp3", Codec: "mp3", SampleRate: 44100, Channels: 2, DurationMs: 754_250},
		},
		{
			name: "m4a reports several container names",
			out: `{"streams": [{"codec_name": "aac", "sample_rate": "48000", "channels": 1}],
				"format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "3.0004"}}`,
			expected: models.SourceInfo{Container: "mov", Codec: "aac", SampleRate: 48000, Channels: 1, DurationMs: 3000},
		},
		{
			name: "unknown duration",
			out: `{"streams": [{"codec_name": "pcm_s16le", "sample_rate": "16000", "channels": 1}],
				"format": {"format_name": "wav", "duration": "N/A"}}`,
			expected: models.SourceInfo{Container: "wav", Codec: "pcm_s16le", SampleRate: 16000, Channels: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSourceInfo([]byte(tt.out))
			if err != nil {
				t.Fatalf("parseSourceInfo failed: %v", err)
			}
			if *got != tt.expected {
				t.Errorf("parseSourceInfo() = %+v, expected %+v", *got, tt.expected)
			}
		})
	}
}

func TestParseSourceInfoNoAudio(t *testing.T) {
	_, err := parseSourceInfo([]byte(`{"streams": [], "format": {"format_name": "mp4"}}`))
	if !errors.Is(err, ErrNoAudioStream) {
		t.Errorf("Expected ErrNoAudioStream, got %v", err)
	}
}

func TestParseSourceInfoInvalidJSON(t *testing.T) {
	if _, err := parseSourceInfo([]byte("not json")); err == nil {
		t.Error("Expected error on invalid JSON")
	}
}

func TestSourceInfoFromWav(t *testing.T) {
	if !ProbeAvailable() {
		t.Skip("ffprobe not installed")
	}

	data := make([]int, 8000)
	path := writeTestWav(t, "tone.wav", data, 8000, 16, 1)

	info, err := ProbeSource(context.Background(), path)
	if err != nil {
		t.Fatalf("ProbeSource failed: %v", err)
	}
	if info.Container != "wav" || info.SampleRate != 8000 || info.Channels != 1 || info.DurationMs != 1000 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestSourceInfoMissingFile(t *testing.T) {
	if !ProbeAvailable() {
		t.Skip("ffprobe not installed")
	}
	if _, err := ProbeSource(context.Background(), filepath.Join(t.TempDir(), "absent.mp3")); err == nil {
		t.Error("Expected error for missing file")
	}
}
