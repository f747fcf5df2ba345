package timestamp

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrInvalidTimestamp is returned when a string does not match MM:SS.mmm.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Pattern matches one timestamp. The minute field is exactly two digits, or
// wider without a leading zero, so offsets of 100 minutes or more still
// round-trip.
const Pattern = `(?:\d{2}|[1-9]\d{2,}):\d{2}\.\d{3}`

// maxMinutes keeps minutes*60_000 + 59_999 within int64.
const maxMinutes = (math.MaxInt64 - 59_999) / 60_000

var timestampRe = regexp.MustCompile(`^(\d{2}|[1-9]\d{2,}):(\d{2})\.(\d{3})$`)

// ToMs converts a "MM:SS.mmm" string to milliseconds.
func ToMs(s string) (int64, error) {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	minutes, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || minutes > maxMinutes {
		return 0, fmt.Errorf("%w: minutes out of range in %q", ErrInvalidTimestamp, s)
	}
	// Both fields are fixed width digits, the regexp already guarantees they parse.
	seconds, _ := strconv.ParseInt(m[2], 10, 64)
	millis, _ := strconv.ParseInt(m[3], 10, 64)

	if seconds >= 60 {
		return 0, fmt.Errorf("%w: seconds out of range in %q", ErrInvalidTimestamp, s)
	}

	return minutes*60_000 + seconds*1000 + millis, nil
}

// Format renders milliseconds as "MM:SS.mmm". Negative values are clamped
// to zero.
func Format(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d.%03d", totalSeconds/60, totalSeconds%60, ms%1000)
}
