package interval

import (
	"sort"

	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

// DefaultGapMs is the gap tolerance used when none is configured.
const DefaultGapMs = 3000

// Consolidate merges detections into non-overlapping intervals. Two
// detections belong to the same interval when the later one starts no more
// than gapMs after the current interval ends; merging is transitive. The
// merged interval keeps the earliest start, the furthest end and the highest
// similarity.
//
// The input may be in any order and is not modified. Detections with equal
// start are ordered by end, then by their position in the input.
func Consolidate(detections []models.Detection, gapMs int64) []models.MatchInterval {
	if len(detections) == 0 {
		return nil
	}

	sorted := make([]models.Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartMs != sorted[j].StartMs {
			return sorted[i].StartMs < sorted[j].StartMs
		}
		return sorted[i].EndMs < sorted[j].EndMs
	})

	merged := make([]models.MatchInterval, 0, len(sorted))
	open := sorted[0].Interval()
	for _, d := range sorted[1:] {
		if d.StartMs-open.EndMs <= gapMs {
			open = models.MatchInterval{
				StartMs:    open.StartMs,
				EndMs:      max(open.EndMs, d.EndMs),
				Similarity: max(open.Similarity, d.Similarity),
			}
			continue
		}
		merged = append(merged, open)
		open = d.Interval()
	}
	return append(merged, open)
}

// Detections converts intervals back into detections, e.g. to re-consolidate
// a log that has already been merged once.
func Detections(intervals []models.MatchInterval) []models.Detection {
	if len(intervals) == 0 {
		return nil
	}
	out := make([]models.Detection, len(intervals))
	for i, iv := range intervals {
		out[i] = iv.Detection()
	}
	return out
}
