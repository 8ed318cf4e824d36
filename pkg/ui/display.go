package ui

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tcgscraper/pkg/models"
	"tcgscraper/pkg/progress"
)

const (
	progressBar   = "█"
	progressEmpty = "░"
	barWidth      = 20
)

// Snapshotter is the slice of the progress reporter the display reads
type Snapshotter interface {
	Snapshot() progress.Snapshot
}

// Display periodically rewrites a progress line on the terminal from
// reporter snapshots. It owns no state beyond the poll loop; all counts
// come from the reporter.
type Display struct {
	source   Snapshotter
	interval time.Duration
	start    time.Time

	mu      sync.Mutex
	stopped chan struct{}
	done    chan struct{}
}

// NewDisplay creates a display polling source every interval
func NewDisplay(source Snapshotter, interval time.Duration) *Display {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Display{
		source:   source,
		interval: interval,
	}
}

// Start begins rendering until Stop is called
func (d *Display) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped != nil {
		return
	}
	d.start = time.Now()
	d.stopped = make(chan struct{})
	d.done = make(chan struct{})

	go d.loop(d.stopped, d.done)
}

// Stop halts rendering, prints a final summary line, and returns once
// the render goroutine has exited.
func (d *Display) Stop() {
	d.mu.Lock()
	stopped, done := d.stopped, d.done
	d.stopped, d.done = nil, nil
	d.mu.Unlock()

	if stopped == nil {
		return
	}
	close(stopped)
	<-done
}

func (d *Display) loop(stopped, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopped:
			d.render()
			fmt.Println()
			return
		case <-ticker.C:
			d.render()
		}
	}
}

func (d *Display) render() {
	snap := d.source.Snapshot()
	cardsDone, cardsTotal := snap.CardTotals()

	line := fmt.Sprintf("\r%s expansions %d/%d %s cards %d/%d %s",
		Cyan("[SCRAPE]"),
		snap.ExpansionsDone, snap.ExpansionsTotal,
		bar(snap.ExpansionsDone, snap.ExpansionsTotal),
		cardsDone, cardsTotal,
		Dim(time.Since(d.start).Truncate(time.Second).String()))

	fmt.Print(line)
}

// Summary returns a per-expansion breakdown for the end of a run
func Summary(snap progress.Snapshot) string {
	ids := make([]string, 0, len(snap.Expansions))
	for id := range snap.Expansions {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		ep := snap.Expansions[models.ExpansionID(id)]
		fmt.Fprintf(&b, "  %s %d/%d cards\n", id, ep.CardsDone, ep.CardsTotal)
	}
	return b.String()
}

func bar(done, total int) string {
	if total <= 0 {
		return "[" + strings.Repeat(progressEmpty, barWidth) + "]"
	}
	filled := done * barWidth / total
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat(progressBar, filled) +
		strings.Repeat(progressEmpty, barWidth-filled) + "]"
}
