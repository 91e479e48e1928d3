package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/quotes/internal/crawler"
)

// Tab is a chromedp tab. Calls run in the tab's context but honour the
// deadline and cancellation of the context passed to each method.
type Tab struct {
	ctx context.Context
}

var _ crawler.Tab = (*Tab)(nil)

// bind derives a context from the tab that is also cancelled with ctx.
func (t *Tab) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(t.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		parent := cancel
		cancel = func() {
			cancelDeadline()
			parent()
		}
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// Navigate loads url and returns once the new document has been parsed.
// Subresources (ads, trackers, images) are not waited for.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	if err := markDocument(runCtx); err != nil {
		return err
	}
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errorText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("page load error %s", errorText)
		}
		return nil
	}))
	if err != nil {
		return err
	}
	return waitNewDocument(runCtx)
}

func (t *Tab) WaitVisible(ctx context.Context, selector string) error {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	return chromedp.Run(runCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (t *Tab) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Click activates target and waits for the document it navigates to. A click
// that never leaves the current document fails when ctx expires.
func (t *Tab) Click(ctx context.Context, target crawler.Target) error {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	by := chromedp.ByQuery
	if target.XPath {
		by = chromedp.BySearch
	}

	if err := markDocument(runCtx); err != nil {
		return err
	}
	if err := chromedp.Run(runCtx, chromedp.Click(target.Selector, by, chromedp.NodeVisible)); err != nil {
		return err
	}
	return waitNewDocument(runCtx)
}

func (t *Tab) Location(ctx context.Context) (string, error) {
	runCtx, cancel := t.bind(ctx)
	defer cancel()

	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// documentMarker is set on the window of the current document. A document
// loaded afterwards does not carry it.
const documentMarker = "__quotesPrevDocument"

// readyPollInterval is how often waitNewDocument checks the page.
const readyPollInterval = 50 * time.Millisecond

var newDocumentReady = fmt.Sprintf(
	`!window.%s && document.readyState !== "loading" && document.body !== null`,
	documentMarker,
)

func markDocument(ctx context.Context) error {
	var marked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate("window."+documentMarker+" = true", &marked)); err != nil {
		return fmt.Errorf("mark current document: %w", err)
	}
	return nil
}

// waitNewDocument polls until a document without the marker has finished
// parsing. That is DOMContentLoaded, not the load event.
func waitNewDocument(ctx context.Context) error {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		var ready bool
		// Evaluate fails while the old execution context is torn down.
		if err := chromedp.Run(ctx, chromedp.Evaluate(newDocumentReady, &ready)); err == nil && ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
