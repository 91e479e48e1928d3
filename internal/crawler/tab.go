package crawler

import "context"

// Target identifies an element to click. Selector is a CSS selector unless
// XPath is set.
type Target struct {
	Selector string
	XPath    bool
}

// Tab is a single browser tab driven for the whole scrape. Every method is a
// suspension point while the browser does network or render work.
type Tab interface {
	// Navigate loads url and returns once the new document is parsed. It does
	// not wait for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error
	// HTML returns the serialized DOM of the current page.
	HTML(ctx context.Context) (string, error)
	// Click activates target and returns once the document it navigates to is
	// parsed.
	Click(ctx context.Context, target Target) error
	// Location returns the URL of the current page.
	Location(ctx context.Context) (string, error)
}

// Launcher starts an isolated browser for a single scrape. The returned release
// func must be called exactly once and frees the browser process.
type Launcher interface {
	Launch(ctx context.Context) (Tab, func(), error)
}
