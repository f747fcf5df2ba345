package audio

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"

	"github.com/eligwz/spectrogram"
	"github.com/himanishpuri/AcousticSpot/pkg/utils"
)

const (
	DefaultSpectrogramWidth  = 2048
	DefaultSpectrogramHeight = 512
)

// RenderSpectrogram draws a linear magnitude spectrogram of samples to a PNG
// at pngPath. It is meant for eyeballing a reference clip, the scanner never
// looks at it. Zero width or height selects the defaults.
func RenderSpectrogram(samples []float64, sampleRate int, pngPath string, width, height int) error {
	if len(samples) == 0 {
		return errors.New("no samples to render")
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if width <= 0 {
		width = DefaultSpectrogramWidth
	}
	if height <= 0 {
		height = DefaultSpectrogramHeight
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))

	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, magnitude, linear scale.
	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(height),
		false,
		false,
		true,
		false,
	)

	if err := utils.MakeDir(filepath.Dir(pngPath)); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := spectrogram.SavePng(img, pngPath); err != nil {
		return fmt.Errorf("saving spectrogram %s: %w", pngPath, err)
	}
	return nil
}
