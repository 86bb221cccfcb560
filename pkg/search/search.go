// Package search finds the highest encoder quality whose assembled output
// fits a byte budget.
package search

import (
	"context"
	"errors"
	"fmt"
)

// Status describes how a search ended.
type Status int

const (
	// Success means the output fits the target.
	Success Status = iota
	// PartialSuccess means even the minimum quality exceeds the target. The
	// smallest achievable output is still returned.
	PartialSuccess
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case PartialSuccess:
		return "partial"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Config bounds the bisection.
type Config struct {
	Iterations int
	MinQuality float64
	MaxQuality float64
	// Step is added to or subtracted from the midpoint when narrowing.
	Step float64
}

// DefaultConfig returns the eight-iteration search over [0.05, 0.95].
func DefaultConfig() Config {
	return Config{
		Iterations: 8,
		MinQuality: 0.05,
		MaxQuality: 0.95,
		Step:       0.01,
	}
}

// Validate checks the bounds.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.MinQuality <= 0 || c.MaxQuality > 1 || c.MinQuality >= c.MaxQuality {
		return fmt.Errorf("quality bounds must satisfy 0 < min < max <= 1, got [%g, %g]", c.MinQuality, c.MaxQuality)
	}
	if c.Step < 0 {
		return fmt.Errorf("step must not be negative, got %g", c.Step)
	}
	return nil
}

// Trial produces a complete candidate output at the given quality.
type Trial func(ctx context.Context, quality float64) ([]byte, error)

// Result is the outcome of Run.
type Result struct {
	Output  []byte
	Quality float64
	Size    int64
	Status  Status
	// Trials is the number of times the trial function ran.
	Trials int
}

// ErrInvalidTarget is returned for non-positive byte targets.
var ErrInvalidTarget = errors.New("target size must be positive")

// Run bisects the quality range, keeping the highest passing candidate.
// Iterations is an upper bound: the loop also stops once the interval closes,
// so a tight target may run fewer bisection trials. When no candidate fits, one last trial runs at the minimum quality and its
// output is returned with PartialSuccess if it is still too large. Errors
// from trial abort the search.
func Run(ctx context.Context, cfg Config, target int64, trial Trial) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	var best *Result
	trials := 0
	lo, hi := cfg.MinQuality, cfg.MaxQuality

	for i := 0; i < cfg.Iterations && lo <= hi; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mid := clamp((lo+hi)/2, cfg.MinQuality, cfg.MaxQuality)
		out, err := trial(ctx, mid)
		trials++
		if err != nil {
			return nil, fmt.Errorf("failed to run trial at quality %.3f: %w", mid, err)
		}

		size := int64(len(out))
		if size <= target {
			if best == nil || mid > best.Quality {
				best = &Result{Output: out, Quality: mid, Size: size, Status: Success}
			}
			lo = mid + cfg.Step
		} else {
			hi = mid - cfg.Step
		}
	}

	if best != nil {
		best.Trials = trials
		return best, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := trial(ctx, cfg.MinQuality)
	trials++
	if err != nil {
		return nil, fmt.Errorf("failed to run trial at quality %.3f: %w", cfg.MinQuality, err)
	}

	res := &Result{
		Output:  out,
		Quality: cfg.MinQuality,
		Size:    int64(len(out)),
		Status:  Success,
		Trials:  trials,
	}
	if res.Size > target {
		res.Status = PartialSuccess
	}
	return res, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
