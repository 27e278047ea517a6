package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for batch validation.
type ProgressReporter interface {
	Start(total int)
	Update(done int)
	Finish()
	Error(err error)
}

// SimpleProgress renders a single-line progress bar, redrawn in place.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int
	done    int
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr so reports on stdout stay clean.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{writer: w}
}

// Start resets the reporter for total manifests.
func (p *SimpleProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done = 0
	p.started = time.Now()
	p.render()
}

// Update records that done manifests have been checked. Updates arriving
// out of order from parallel workers never move the bar backwards.
func (p *SimpleProgress) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if done > p.done {
		p.done = done
	}
	p.render()
}

// Callback adapts the reporter to check.WithProgress.
func (p *SimpleProgress) Callback() func(done, total int) {
	return func(done, _ int) { p.Update(done) }
}

// Finish completes the bar and ends the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error that stopped the batch.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.done) / float64(p.total) * 100
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.done) / elapsed
	}

	fmt.Fprintf(p.writer, "\rChecking: [%s] %.1f%% (%d/%d) %.1f manifests/s",
		bar, percent, p.done, p.total, rate)
}
