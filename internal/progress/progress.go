// Package progress renders scrape progress on a terminal.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/go-scripts/quotes/internal/types"
)

// Summary counts what a scrape produced.
type Summary struct {
	Pages   int
	Quotes  int
	Skipped int
	Err     string
}

// Tracker shows a spinner until the first page is read, then a bar for the
// items of the current page.
type Tracker struct {
	out     io.Writer
	bar     progress.Model
	spinner *spinner.Spinner

	mu      sync.Mutex
	page    int
	done    int
	total   int
	summary Summary
}

// New creates a Tracker that draws on out.
func New(out io.Writer) *Tracker {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
	return &Tracker{
		out:     out,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: s,
	}
}

// Start shows the spinner while the first page loads.
func (t *Tracker) Start(topic string) {
	t.spinner.Suffix = fmt.Sprintf(" loading %s", topic)
	t.spinner.Start()
}

// Observe updates the display for e.
func (t *Tracker) Observe(e types.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := e.(type) {
	case types.PageStarted:
		t.spinner.Stop()
		if t.page > 0 {
			fmt.Fprintln(t.out)
		}
		t.page, t.done, t.total = e.Page, 0, e.Total
		t.summary.Pages = e.Page
	case types.QuoteExtracted:
		t.done = e.Index
		t.summary.Quotes++
	case types.ItemSkipped:
		t.done = e.Index
		t.summary.Skipped++
	case types.ScrapeError:
		t.spinner.Stop()
		t.summary.Err = e.Message
		return
	case types.ScrapeCompleted:
		t.summary.Pages = e.TotalPages
		return
	}
	t.render()
}

func (t *Tracker) render() {
	fmt.Fprintf(t.out, "\rpage %d %s %d/%d", t.page, t.bar.ViewAs(t.ratio()), t.done, t.total)
}

func (t *Tracker) ratio() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.done) / float64(t.total)
}

// Finish clears the spinner, ends the bar line and returns the summary.
func (t *Tracker) Finish() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spinner.Stop()
	if t.page > 0 {
		fmt.Fprintln(t.out)
	}
	return t.summary
}
