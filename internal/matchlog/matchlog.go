// Package matchlog reads and writes the line-oriented match log:
//
//	Match: MM:SS.mmm → MM:SS.mmm | Similarity: S.SS
//
// Lines that do not match the grammar are ignored when reading, so logs with
// blank lines or stray text can be re-processed.
package matchlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/himanishpuri/AcousticSpot/internal/timestamp"
	"github.com/himanishpuri/AcousticSpot/pkg/models"
	"github.com/himanishpuri/AcousticSpot/pkg/utils"
)

// Arrow separates start and end timestamps.
const Arrow = models.Arrow

// DefaultPath is where scan results are written when no path is given.
const DefaultPath = "match_log.txt"

var lineRe = regexp.MustCompile(
	`^Match: (` + timestamp.Pattern + `) ` + Arrow + ` (` + timestamp.Pattern + `) \| Similarity: (-?\d+(?:\.\d+)?)`,
)

// FormatLine renders one interval without a trailing newline.
func FormatLine(m models.MatchInterval) string {
	return m.String()
}

// ParseLine extracts an interval from a log line. ok is false when the line
// does not follow the grammar.
func ParseLine(line string) (m models.MatchInterval, ok bool) {
	groups := lineRe.FindStringSubmatch(line)
	if groups == nil {
		return m, false
	}

	start, err := timestamp.ToMs(groups[1])
	if err != nil {
		return m, false
	}
	end, err := timestamp.ToMs(groups[2])
	if err != nil {
		return m, false
	}
	sim, err := strconv.ParseFloat(groups[3], 64)
	if err != nil {
		return m, false
	}

	return models.MatchInterval{StartMs: start, EndMs: end, Similarity: sim}, true
}

// Write writes one line per interval.
func Write(w io.Writer, intervals []models.MatchInterval) error {
	bw := bufio.NewWriter(w)
	for _, m := range intervals {
		if _, err := bw.WriteString(FormatLine(m) + "\n"); err != nil {
			return fmt.Errorf("writing match line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing match log: %w", err)
	}
	return nil
}

// WriteDetections writes raw scanner output in the same grammar.
func WriteDetections(w io.Writer, detections []models.Detection) error {
	return Write(w, asIntervals(detections))
}

// Read parses every well-formed line from r, skipping the rest. Lines may be
// of any length; only I/O errors are returned.
func Read(r io.Reader) ([]models.MatchInterval, error) {
	var out []models.MatchInterval

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if m, ok := ParseLine(strings.TrimRight(line, "\r\n")); ok {
				out = append(out, m)
			}
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading match log: %w", err)
		}
	}
}

// ReadFile reads a match log from disk.
func ReadFile(path string) ([]models.MatchInterval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening match log: %w", err)
	}
	defer f.Close()

	out, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// WriteFile writes intervals to path, replacing any existing file. The log
// is written to a temporary file first and moved into place.
func WriteFile(path string, intervals []models.MatchInterval) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.MakeDir(dir); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting log permissions: %w", err)
	}
	if err := Write(tmp, intervals); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp log: %w", err)
	}
	return utils.MoveFile(tmpPath, path)
}

// WriteDetectionsFile is WriteFile for raw detections.
func WriteDetectionsFile(path string, detections []models.Detection) error {
	return WriteFile(path, asIntervals(detections))
}

func asIntervals(detections []models.Detection) []models.MatchInterval {
	out := make([]models.MatchInterval, len(detections))
	for i, d := range detections {
		out[i] = d.Interval()
	}
	return out
}
