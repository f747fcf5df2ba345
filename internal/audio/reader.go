package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var (
	ErrNotWAV              = errors.New("not a WAV/RIFF file")
	ErrUnsupportedFormat   = errors.New("unsupported WAV audio format: only PCM supported")
	ErrUnsupportedBitDepth = errors.New("unsupported bits per sample: only 16, 24 and 32-bit supported")
	ErrNoChannels          = errors.New("WAV file declares no channels")
)

// ReadWavAsFloat64 reads a PCM WAV file and returns mono samples in the
// range [-1,1] and the sample rate. Multi-channel audio is averaged.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	samples, rate, err := DecodeWav(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return samples, rate, nil
}

// DecodeWav is ReadWavAsFloat64 for an already open stream.
func DecodeWav(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrNotWAV
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, 0, fmt.Errorf("%w (format %d)", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return nil, 0, fmt.Errorf("%w (got %d)", ErrUnsupportedBitDepth, dec.BitDepth)
	}
	if dec.NumChans == 0 {
		return nil, 0, ErrNoChannels
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM samples: %w", err)
	}

	scale := 1.0 / float64(int64(1)<<(dec.BitDepth-1))
	return downmix(buf.Data, int(dec.NumChans), scale), int(dec.SampleRate), nil
}

// downmix averages interleaved channels into a single scaled channel.
// A trailing partial frame is dropped.
func downmix(data []int, channels int, scale float64) []float64 {
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i*channels+c])
		}
		out[i] = sum / float64(channels) * scale
	}
	return out
}

// PeakNormalize returns a copy of samples scaled so the loudest sample has
// magnitude 1. Silence is returned unscaled.
func PeakNormalize(samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	if len(out) == 0 {
		return out
	}

	peak := max(floats.Max(out), -floats.Min(out))
	if peak == 0 {
		return out
	}
	floats.Scale(1/peak, out)
	return out
}
