package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Navigator owns the tab used for a scrape and performs every page transition.
type Navigator struct {
	tab            Tab
	timeout        time.Duration
	notFoundMarker string
}

func newNavigator(tab Tab, opts Options) *Navigator {
	return &Navigator{
		tab:            tab,
		timeout:        opts.NavigationTimeout,
		notFoundMarker: strings.ToLower(opts.Selectors.NotFoundMarker),
	}
}

// Load navigates to url, bounded by the navigation timeout.
func (n *Navigator) Load(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.tab.Navigate(ctx, url); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	return nil
}

// CheckNotFound reports whether the page title or its primary heading carries
// the site's "not found" marker. An unreadable page is not treated as not found.
func (n *Navigator) CheckNotFound(ctx context.Context) bool {
	doc, err := n.Document(ctx)
	if err != nil {
		return false
	}

	title := strings.ToLower(doc.Find("title").First().Text())
	heading := strings.ToLower(doc.Find("h1").First().Text())
	return strings.Contains(title, n.notFoundMarker) || strings.Contains(heading, n.notFoundMarker)
}

// WaitForResults waits up to timeout for selector to become visible.
func (n *Navigator) WaitForResults(ctx context.Context, selector string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return n.tab.WaitVisible(ctx, selector) == nil
}

// Document parses the current DOM.
func (n *Navigator) Document(ctx context.Context) (*goquery.Document, error) {
	html, err := n.tab.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}

// Advance clicks target and waits for the next page, bounded by the navigation
// timeout.
func (n *Navigator) Advance(ctx context.Context, target Target) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	return n.tab.Click(ctx, target)
}

// Location returns the current page URL, or "" when it cannot be read.
func (n *Navigator) Location(ctx context.Context) string {
	loc, err := n.tab.Location(ctx)
	if err != nil {
		return ""
	}
	return loc
}
