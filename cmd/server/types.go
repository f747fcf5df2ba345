package main

import (
	"fmt"
	"strconv"

	"github.com/himanishpuri/AcousticSpot/internal/timestamp"
	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

// Upload limits for POST /api/scan
const (
	MaxUploadBytes = 200 << 20
	MaxLogBytes    = 10 << 20
)

// ScanParams are the form fields of POST /api/scan
type ScanParams struct {
	ThresholdPercent float64
	StepMs           int
	GapMs            int64
}

// parseScanParams reads the scan form fields, falling back to defaults for
// the optional ones. similarity is required.
func parseScanParams(similarity, stepMs, gapMs string, defaults ScanParams) (ScanParams, error) {
	p := defaults

	if similarity == "" {
		return p, fmt.Errorf("similarity is required")
	}
	v, err := strconv.ParseFloat(similarity, 64)
	if err != nil || v < 0 || v > 100 {
		return p, fmt.Errorf("similarity must be a percentage between 0 and 100")
	}
	p.ThresholdPercent = v

	if stepMs != "" {
		n, err := strconv.Atoi(stepMs)
		if err != nil || n <= 0 {
			return p, fmt.Errorf("step_ms must be a positive integer")
		}
		p.StepMs = n
	}

	if gapMs != "" {
		g, err := parseGap(gapMs)
		if err != nil {
			return p, err
		}
		p.GapMs = g
	}
	return p, nil
}

func parseGap(s string) (int64, error) {
	g, err := strconv.ParseInt(s, 10, 64)
	if err != nil || g < 0 {
		return 0, fmt.Errorf("gap_ms must be a non-negative integer")
	}
	return g, nil
}

// MatchDTO is a detection or merged interval in API responses
type MatchDTO struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	StartMs    int64   `json:"start_ms"`
	EndMs      int64   `json:"end_ms"`
	Similarity float64 `json:"similarity"`
}

func toMatchDTO(m models.MatchInterval) MatchDTO {
	return MatchDTO{
		Start:      timestamp.Format(m.StartMs),
		End:        timestamp.Format(m.EndMs),
		StartMs:    m.StartMs,
		EndMs:      m.EndMs,
		Similarity: m.Similarity,
	}
}

// ScanResponse is the response for POST /api/scan
type ScanResponse struct {
	RunID            string     `json:"run_id"`
	ThresholdPercent float64    `json:"threshold_percent"`
	StepMs           int        `json:"step_ms"`
	GapMs            int64      `json:"gap_ms"`
	Detections       []MatchDTO `json:"detections"`
	Intervals        []MatchDTO `json:"intervals"`
	Count            int        `json:"count"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
