package utils

import "github.com/google/uuid"

// NewRunID returns a random identifier used to correlate the log lines of a
// single scan.
func NewRunID() string {
	return uuid.NewString()
}

// ShortID returns the first block of a run ID for compact log prefixes.
func ShortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}
