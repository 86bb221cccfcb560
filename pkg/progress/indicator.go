package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Reporter receives progress for a multi-step operation. Stage starts a new
// phase with a known number of steps; Step reports how many are complete.
type Reporter interface {
	Stage(label string, total int)
	Step(done int)
	Finish()
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Stage(string, int) {}
func (Nop) Step(int)          {}
func (Nop) Finish()           {}

// Bar draws a single-line progress bar for each stage.
type Bar struct {
	mu      sync.Mutex
	out     io.Writer
	width   int
	label   string
	total   int
	current int
	start   time.Time
	open    bool
}

// NewBar creates a progress bar that writes to out
func NewBar(out io.Writer) *Bar {
	return &Bar{out: out, width: 40}
}

// Stage ends any open stage and starts a new one
func (b *Bar) Stage(label string, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.finish()
	}
	b.label = label
	b.total = total
	b.current = 0
	b.start = time.Now()
	b.open = true
	b.display()
}

// Step updates the bar
func (b *Bar) Step(done int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return
	}
	b.current = done
	b.display()
}

// Finish completes the current stage
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		b.finish()
	}
}

func (b *Bar) finish() {
	b.current = b.total
	b.display()
	fmt.Fprintf(b.out, " DONE (%v)\n", time.Since(b.start).Round(time.Millisecond))
	b.open = false
}

// display shows the current progress bar
func (b *Bar) display() {
	fmt.Fprintf(b.out, "\r%s [%s] %d/%d (%.1f%%)",
		b.label, render(b.current, b.total, b.width), b.current, b.total, percent(b.current, b.total))
}

func percent(current, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(current) / float64(total) * 100
}

func render(current, total, width int) string {
	filled := width
	if total > 0 {
		filled = int(float64(width) * float64(current) / float64(total))
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
