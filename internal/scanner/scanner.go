package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/himanishpuri/AcousticSpot/pkg/models"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidStep       = errors.New("step must be positive")
)

const (
	// ProgressInterval is the percentage granularity of progress callbacks.
	ProgressInterval = 5

	// minChunks keeps progress reporting meaningful on machines with few cores.
	minChunks = 100 / ProgressInterval

	// ctxCheckEvery is how many windows a worker scores between context checks.
	ctxCheckEvery = 256
)

// ProgressFunc receives the completed share of a scan as a percentage,
// rounded down to a multiple of ProgressInterval.
type ProgressFunc func(percent int)

// Options configures a scan. Threshold is a fraction, not a percentage.
type Options struct {
	SampleRate int          // Shared sample rate of both arrays (Hz)
	StepMs     int          // Stride between window positions
	Threshold  float64      // Minimum similarity, exclusive
	Workers    int          // Parallel scorers, defaults to runtime.NumCPU()
	Progress   ProgressFunc // Optional
}

// StepSamples converts a stride in milliseconds to samples, never less than one.
func StepSamples(stepMs, sampleRate int) int {
	step := int(math.Round(float64(stepMs) / 1000 * float64(sampleRate)))
	if step < 1 {
		return 1
	}
	return step
}

// DurationMs converts a sample count to whole milliseconds, truncating.
func DurationMs(samples, sampleRate int) int64 {
	return int64(samples) * 1000 / int64(sampleRate)
}

// Positions returns how many windows of refLen fit into fullLen at the given stride.
func Positions(fullLen, refLen, step int) int {
	if refLen == 0 || fullLen < refLen {
		return 0
	}
	return (fullLen-refLen)/step + 1
}

// Scan slides reference across full and returns a detection for every window
// whose cosine similarity is strictly above opts.Threshold. Detections are in
// scan order. Neither input slice is modified.
//
// Windows are scored by a bounded worker pool; results are gathered by
// position, so the output is identical to a sequential scan.
func Scan(ctx context.Context, full, reference []float64, opts Options) ([]models.Detection, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, opts.SampleRate)
	}
	if opts.StepMs <= 0 {
		return nil, fmt.Errorf("%w: %d ms", ErrInvalidStep, opts.StepMs)
	}

	step := StepSamples(opts.StepMs, opts.SampleRate)
	refLen := len(reference)
	n := Positions(len(full), refLen, step)
	if n == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunks := max(workers*4, minChunks)
	chunk := (n + chunks - 1) / chunks

	scores := make([]float64, n)
	refNorm := floats.Norm(reference, 2)
	progress := newProgressReporter(n, opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for p := lo; p < hi; p++ {
				if (p-lo)%ctxCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				i := p * step
				scores[p] = cosineWithNorm(reference, refNorm, full[i:i+refLen])
			}
			progress.add(hi - lo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refMs := DurationMs(refLen, opts.SampleRate)
	var detections []models.Detection
	for p, sim := range scores {
		if sim <= opts.Threshold {
			continue
		}
		start := DurationMs(p*step, opts.SampleRate)
		detections = append(detections, models.Detection{
			StartMs:    start,
			EndMs:      start + refMs,
			Similarity: sim,
		})
	}
	return detections, nil
}

type progressReporter struct {
	mu    sync.Mutex
	total int
	done  int
	next  int
	fn    ProgressFunc
}

func newProgressReporter(total int, fn ProgressFunc) *progressReporter {
	p := &progressReporter{total: total, fn: fn, next: ProgressInterval}
	if fn != nil {
		fn(0)
	}
	return p
}

func (p *progressReporter) add(n int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done += n
	pct := p.done * 100 / p.total
	if pct < p.next {
		return
	}
	pct -= pct % ProgressInterval
	p.next = pct + ProgressInterval
	p.fn(pct)
}
