package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/himanishpuri/AcousticSpot/pkg/models"
)

// ErrNoAudioStream is returned when a file has no audio stream to scan.
var ErrNoAudioStream = errors.New("no audio stream")

const probeTimeout = 10 * time.Second

// probeResult is the subset of `ffprobe -of json` output requested by ProbeSource.
type probeResult struct {
	Format struct {
		Name     string `json:"format_name"`
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		Codec      string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// ProbeSource reports the container and first audio stream of path using
// ffprobe. It is informational; scanning never depends on it.
func ProbeSource(ctx context.Context, path string) (*models.SourceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(
		ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "format=format_name,duration:stream=codec_name,sample_rate,channels",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffprobe %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	info, err := parseSourceInfo(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

func parseSourceInfo(out []byte) (*models.SourceInfo, error) {
	var res probeResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("decoding ffprobe output: %w", err)
	}
	if len(res.Streams) == 0 {
		return nil, ErrNoAudioStream
	}
	stream := res.Streams[0]

	info := &models.SourceInfo{
		Codec:    stream.Codec,
		Channels: stream.Channels,
	}
	info.Container, _, _ = strings.Cut(res.Format.Name, ",")
	// ffprobe omits or reports "N/A" for unknown values; those stay zero.
	if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
		info.SampleRate = rate
	}
	if sec, err := strconv.ParseFloat(res.Format.Duration, 64); err == nil {
		info.DurationMs = int64(math.Round(sec * 1000))
	}
	return info, nil
}
