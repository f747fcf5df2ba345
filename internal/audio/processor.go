package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/AcousticSpot/pkg/utils"
)

// DefaultSampleRate matches the rate both recordings are resampled to
// before scanning.
const DefaultSampleRate = 16000

// ErrSampleRateMismatch is returned when a decoded file does not have the
// rate it was converted to.
var ErrSampleRateMismatch = errors.New("decoded sample rate does not match requested rate")

type ConvertWAVConfig struct {
	SampleRate int // e.g. 16000, 22050, 44100
}

// ConvertToMonoWAV converts an audio file to mono 16-bit PCM WAV and saves
// it to outputDir as <name>.mono.wav.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	// Long recordings take a while to decode.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
	}

	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("input audio: %w", err)
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, baseName+".mono.wav")

	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1", // mono
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}

	return outputPath, nil
}

// LoadNormalized turns any audio file ffmpeg understands into peak
// normalized mono samples at sampleRate. Intermediate files are created in a
// private directory under tempDir and removed before returning.
func LoadNormalized(ctx context.Context, path, tempDir string, sampleRate int) ([]float64, error) {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}

	if err := utils.MakeDir(tempDir); err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(tempDir, "acousticspot-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	wavPath, err := ConvertToMonoWAV(ctx, path, workDir, ConvertWAVConfig{SampleRate: sampleRate})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}

	samples, rate, err := ReadWavAsFloat64(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}
	if rate != sampleRate {
		return nil, fmt.Errorf("%w: got %d Hz, want %d Hz", ErrSampleRateMismatch, rate, sampleRate)
	}

	return PeakNormalize(samples), nil
}

// FFmpegAvailable reports whether the ffmpeg binary is on PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// ProbeAvailable reports whether the ffprobe binary is on PATH.
func ProbeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}
