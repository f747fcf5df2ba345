package acousticspot

import (
	"context"

	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

type Service interface {
	FindMatches(ctx context.Context, inputPath, referencePath string) ([]models.Detection, error)
	ScanToLog(ctx context.Context, inputPath, referencePath, logPath string) (*ScanReport, error)
	Consolidate(detections []models.Detection) []models.MatchInterval
	MergeLog(inputLog, outputLog string) ([]models.MatchInterval, error)
	RenderSpectrogram(ctx context.Context, audioPath, pngPath string) error
}

// SampleLoader turns an audio file into normalized mono samples at sampleRate.
type SampleLoader func(ctx context.Context, path string, sampleRate int) ([]float64, error)

// SourceProber describes an input file before it is normalized.
type SourceProber func(ctx context.Context, path string) (*models.SourceInfo, error)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
