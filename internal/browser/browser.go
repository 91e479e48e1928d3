// Package browser runs headless Chrome tabs through chromedp.
package browser

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/quotes/internal/crawler"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options holds the browser settings.
type Options struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
	ExecPath  string
	NoSandbox bool
}

// DefaultOptions returns a headless 1280x800 desktop profile.
func DefaultOptions() Options {
	return Options{
		Headless:  true,
		UserAgent: DefaultUserAgent,
		Width:     1280,
		Height:    800,
	}
}

// Launcher starts one Chrome process per scrape.
type Launcher struct {
	opts Options
	log  *log.Logger
}

// NewLauncher creates a Launcher.
func NewLauncher(opts Options) *Launcher {
	return &Launcher{opts: opts, log: log.WithPrefix("browser")}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("headless", l.opts.Headless),
	)
	if l.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
	}
	if l.opts.Width > 0 && l.opts.Height > 0 {
		opts = append(opts, chromedp.WindowSize(l.opts.Width, l.opts.Height))
	}
	if l.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.ExecPath))
	}
	if l.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Launch starts a browser bound to ctx and opens its first tab. Cancelling ctx
// or calling release shuts the browser down.
func (l *Launcher) Launch(ctx context.Context) (crawler.Tab, func(), error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)

	// CDP protocol noise from newer Chrome versions is only useful when debugging.
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(l.log.Debugf),
		chromedp.WithErrorf(l.log.Debugf),
	)

	release := func() {
		tabCancel()
		allocCancel()
	}

	// Running no actions starts the browser and the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("start chrome: %w", err)
	}

	l.log.Debug("browser started")
	return &Tab{ctx: tabCtx}, release, nil
}
