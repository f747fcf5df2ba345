package models

import (
	"fmt"

	"github.com/himanishpuri/AcousticSpot/internal/timestamp"
)

// Arrow separates start and end timestamps in a match log line.
const Arrow = "→"

// Detection is a single raw similarity hit produced by the scanner.
// Times are offsets into the scanned recording in milliseconds.
type Detection struct {
	StartMs    int64   // Window start
	EndMs      int64   // StartMs + reference duration
	Similarity float64 // Cosine similarity in [-1, 1]
}

// DurationMs returns the span covered by the detection.
func (d Detection) DurationMs() int64 {
	return d.EndMs - d.StartMs
}

// String renders the detection as a match log line.
func (d Detection) String() string {
	return d.Interval().String()
}

// MatchInterval is a consolidated, non-overlapping span representing one
// distinct event after nearby detections have been merged.
type MatchInterval struct {
	StartMs    int64   // Start of the earliest merged detection
	EndMs      int64   // Furthest end of any merged detection
	Similarity float64 // Strongest similarity among merged detections
}

// DurationMs returns the span covered by the interval.
func (m MatchInterval) DurationMs() int64 {
	return m.EndMs - m.StartMs
}

// Detection views the interval as a detection so it can be fed back into
// consolidation.
func (m MatchInterval) Detection() Detection {
	return Detection{StartMs: m.StartMs, EndMs: m.EndMs, Similarity: m.Similarity}
}

// Interval views a single detection as an unmerged interval.
func (d Detection) Interval() MatchInterval {
	return MatchInterval{StartMs: d.StartMs, EndMs: d.EndMs, Similarity: d.Similarity}
}

// String renders the interval as a match log line:
//
//	Match: MM:SS.mmm → MM:SS.mmm | Similarity: S.SS
func (m MatchInterval) String() string {
	return fmt.Sprintf("Match: %s %s %s | Similarity: %.2f",
		timestamp.Format(m.StartMs), Arrow, timestamp.Format(m.EndMs), m.Similarity)
}

// SourceInfo describes an input file as found on disk, before it is
// normalized to mono at the scan rate.
type SourceInfo struct {
	Container  string // First name ffprobe reports, e.g. "mp3" or "mov"
	Codec      string
	SampleRate int
	Channels   int
	DurationMs int64
}

func (i SourceInfo) String() string {
	return fmt.Sprintf("%s/%s, %d Hz, %d ch, %s",
		i.Container, i.Codec, i.SampleRate, i.Channels, timestamp.Format(i.DurationMs))
}
