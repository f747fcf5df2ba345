package acousticspot

import (
	"time"

	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

// ScanReport summarizes one ScanToLog run.
type ScanReport struct {
	RunID         string             // Random ID that prefixes the run's log lines
	InputPath     string             // Recording that was scanned
	ReferencePath string             // Clip that was searched for
	LogPath       string             // Where detections were written
	Input         *models.SourceInfo // Recording as found on disk, nil if it could not be probed
	Reference     *models.SourceInfo
	InputMs       int64         // Normalized recording length
	ReferenceMs   int64         // Normalized clip length
	Windows       int           // Window positions compared
	Detections    int           // Windows above the threshold
	Elapsed       time.Duration // Wall time including decoding
}
