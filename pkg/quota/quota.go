// Package quota tracks completed exports and stamps outputs once the free
// allowance is used up.
package quota

import (
	"context"
	"errors"
	"fmt"
)

// DefaultFreeExports is the number of unstamped exports before watermarking.
const DefaultFreeExports = 5

// Store persists the export counter. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// Mode is the guard's policy for the next export.
type Mode int

const (
	Unrestricted Mode = iota
	Restricted
)

func (m Mode) String() string {
	if m == Restricted {
		return "restricted"
	}
	return "unrestricted"
}

// State is a snapshot of the counter against the limit.
type State struct {
	ExportCount int64
	Limit       int
}

// Mode reports whether the next export is stamped.
func (s State) Mode() Mode {
	if s.ExportCount >= int64(s.Limit) {
		return Restricted
	}
	return Unrestricted
}

// Remaining returns how many unstamped exports are left.
func (s State) Remaining() int64 {
	r := int64(s.Limit) - s.ExportCount
	if r < 0 {
		return 0
	}
	return r
}

// Stamper marks every page of a finished document.
type Stamper interface {
	Stamp(doc []byte) ([]byte, error)
}

// Guard applies the export policy around a write.
type Guard struct {
	store   Store
	stamper Stamper
	limit   int
}

// NewGuard creates a guard. A limit of zero or less uses DefaultFreeExports.
func NewGuard(store Store, stamper Stamper, limit int) (*Guard, error) {
	if store == nil {
		return nil, errors.New("quota store is required")
	}
	if stamper == nil {
		return nil, errors.New("stamper is required")
	}
	if limit <= 0 {
		limit = DefaultFreeExports
	}
	return &Guard{store: store, stamper: stamper, limit: limit}, nil
}

// State reads the current counter.
func (g *Guard) State(ctx context.Context) (State, error) {
	n, err := g.store.Get(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to read export count: %w", err)
	}
	return State{ExportCount: n, Limit: g.limit}, nil
}

// Reset starts a new free cycle.
func (g *Guard) Reset(ctx context.Context) error {
	if err := g.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset export count: %w", err)
	}
	return nil
}

// Export describes one completed export.
type Export struct {
	Data        []byte
	Watermarked bool
	// Count is the counter value after this export.
	Count int64
}

// Export checks the counter, stamps doc when restricted, hands the final bytes
// to write and then increments the counter. Nothing is counted when stamping
// or writing fails.
func (g *Guard) Export(ctx context.Context, doc []byte, write func([]byte) error) (*Export, error) {
	state, err := g.State(ctx)
	if err != nil {
		return nil, err
	}

	out := doc
	restricted := state.Mode() == Restricted
	if restricted {
		out, err = g.stamper.Stamp(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to stamp document: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := write(out); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	n, err := g.store.Increment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record export: %w", err)
	}

	return &Export{Data: out, Watermarked: restricted, Count: n}, nil
}
