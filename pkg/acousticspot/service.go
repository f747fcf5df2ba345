package acousticspot

import (
	"context"
	"fmt"
	"time"

	"github.com/himanishpuri/AcousticSpot/internal/audio"
	"github.com/himanishpuri/AcousticSpot/internal/interval"
	"github.com/himanishpuri/AcousticSpot/internal/matchlog"
	"github.com/himanishpuri/AcousticSpot/internal/scanner"
	"github.com/himanishpuri/AcousticSpot/pkg/logger"
	"github.com/himanishpuri/AcousticSpot/pkg/models"
	"github.com/himanishpuri/AcousticSpot/pkg/utils"
)

// spotService is the default implementation of the Service interface.
type spotService struct {
	log    Logger
	config *Config
	load   SampleLoader
	probe  SourceProber
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	s := &spotService{
		log:    cfg.Logger,
		config: cfg,
		load:   cfg.Loader,
		probe:  cfg.Prober,
	}
	if s.load == nil {
		s.load = s.loadWithFFmpeg
	}
	if s.probe == nil {
		s.probe = audio.ProbeSource
	}
	return s, nil
}

// loadWithFFmpeg normalizes a file through ffmpeg: mono, fixed rate, peak
// normalized.
func (s *spotService) loadWithFFmpeg(ctx context.Context, path string, sampleRate int) ([]float64, error) {
	return audio.LoadNormalized(ctx, path, s.config.TempDir, sampleRate)
}

// FindMatches normalizes both files and returns every window of the
// recording that resembles the reference.
func (s *spotService) FindMatches(ctx context.Context, inputPath, referencePath string) ([]models.Detection, error) {
	detections, _, err := s.findMatches(ctx, inputPath, referencePath, s.log)
	return detections, err
}

func (s *spotService) findMatches(ctx context.Context, inputPath, referencePath string, log Logger) ([]models.Detection, *ScanReport, error) {
	report := &ScanReport{InputPath: inputPath, ReferencePath: referencePath}

	for _, p := range []string{inputPath, referencePath} {
		if err := utils.RequireFile(p); err != nil {
			return nil, report, fmt.Errorf("input audio: %w", err)
		}
	}

	report.Input = s.describe(ctx, inputPath, "Recording", log)
	report.Reference = s.describe(ctx, referencePath, "Reference", log)

	rate := s.config.SampleRate
	log.Infof("Loading and normalizing audio files...")

	full, err := s.load(ctx, inputPath, rate)
	if err != nil {
		return nil, report, fmt.Errorf("loading recording %s: %w", inputPath, err)
	}
	reference, err := s.load(ctx, referencePath, rate)
	if err != nil {
		return nil, report, fmt.Errorf("loading reference %s: %w", referencePath, err)
	}

	report.InputMs = scanner.DurationMs(len(full), rate)
	report.ReferenceMs = scanner.DurationMs(len(reference), rate)
	report.Windows = scanner.Positions(len(full), len(reference), scanner.StepSamples(s.config.StepMs, rate))

	if len(reference) > len(full) {
		log.Warnf("Reference (%d ms) is longer than the recording (%d ms), nothing to scan",
			report.ReferenceMs, report.InputMs)
	}

	log.Infof("Searching for segments with similarity > %g%%", s.config.ThresholdPercent)
	log.Infof("Scanning %d segments (step: %d ms)...", report.Windows, s.config.StepMs)

	detections, err := scanner.Scan(ctx, full, reference, scanner.Options{
		SampleRate: rate,
		StepMs:     s.config.StepMs,
		Threshold:  s.config.Threshold(),
		Workers:    s.config.Workers,
		Progress:   s.config.Progress,
	})
	if err != nil {
		return nil, report, fmt.Errorf("scan failed: %w", err)
	}

	report.Detections = len(detections)
	log.Infof("%d matches found", len(detections))
	return detections, report, nil
}

// describe probes path for the report. A failed probe is not fatal: the
// normalizer decides whether the file is usable.
func (s *spotService) describe(ctx context.Context, path, label string, log Logger) *models.SourceInfo {
	info, err := s.probe(ctx, path)
	if err != nil {
		log.Debugf("probing %s: %v", path, err)
		return nil
	}
	log.Infof("%s: %s", label, info)
	return info
}

// ScanToLog runs FindMatches and writes the raw detections to logPath.
func (s *spotService) ScanToLog(ctx context.Context, inputPath, referencePath, logPath string) (*ScanReport, error) {
	start := time.Now()
	runID := utils.NewRunID()
	log := s.runLogger(runID)

	if logPath == "" {
		logPath = matchlog.DefaultPath
	}

	detections, report, err := s.findMatches(ctx, inputPath, referencePath, log)
	report.RunID = runID
	report.LogPath = logPath
	if err != nil {
		return report, err
	}

	if err := matchlog.WriteDetectionsFile(logPath, detections); err != nil {
		return report, fmt.Errorf("writing match log: %w", err)
	}

	report.Elapsed = time.Since(start)
	log.Infof("Log written to %s (%s)", logPath, report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// runLogger tags every line of a run with its ID when the logger supports it.
func (s *spotService) runLogger(runID string) Logger {
	if l, ok := s.log.(*logger.Logger); ok {
		return l.With("[run " + utils.ShortID(runID) + "]")
	}
	return s.log
}

// Consolidate merges detections using the configured gap.
func (s *spotService) Consolidate(detections []models.Detection) []models.MatchInterval {
	return interval.Consolidate(detections, s.config.GapMs)
}

// MergeLog reads a match log, consolidates it and writes the result.
func (s *spotService) MergeLog(inputLog, outputLog string) ([]models.MatchInterval, error) {
	intervals, err := matchlog.ReadFile(inputLog)
	if err != nil {
		return nil, err
	}

	merged := s.Consolidate(interval.Detections(intervals))
	if err := matchlog.WriteFile(outputLog, merged); err != nil {
		return nil, fmt.Errorf("writing merged log: %w", err)
	}

	s.log.Infof("Merged %d entries into %d intervals (gap: %d ms), written to %s",
		len(intervals), len(merged), s.config.GapMs, outputLog)
	return merged, nil
}

// RenderSpectrogram writes a PNG spectrogram of the normalized audio.
func (s *spotService) RenderSpectrogram(ctx context.Context, audioPath, pngPath string) error {
	if err := utils.RequireFile(audioPath); err != nil {
		return fmt.Errorf("input audio: %w", err)
	}

	samples, err := s.load(ctx, audioPath, s.config.SampleRate)
	if err != nil {
		return fmt.Errorf("loading %s: %w", audioPath, err)
	}

	if err := audio.RenderSpectrogram(samples, s.config.SampleRate, pngPath, 0, 0); err != nil {
		return err
	}
	s.log.Infof("Spectrogram of %s written to %s", audioPath, pngPath)
	return nil
}
