package crawler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/quotes/internal/types"
)

// Selectors locate the parts of a topic results page.
type Selectors struct {
	// Item matches one quote in the grid. It combines the grid marker with the
	// quote marker so that ads sharing the grid marker are excluded.
	Item string
	// Results is awaited before a page is read.
	Results    string
	Text       string
	Author     string
	Image      string
	ImageAttrs []string
	// Next is the structural next-page selector; NextText is the label used by
	// the text fallback.
	Next     string
	NextText string
	Disabled string
	// NotFoundMarker is looked for in the page title and first heading.
	NotFoundMarker string
}

// Options configure a Scraper.
type Options struct {
	BaseURL           string
	NavigationTimeout time.Duration
	ResultsTimeout    time.Duration
	MaxPages          int
	ItemDelay         time.Duration
	PageDelay         time.Duration
	Selectors         Selectors
}

// DefaultSelectors matches the BrainyQuote topic pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:           "div.grid-item.bqQt",
		Results:        "div.bqQt",
		Text:           "a.b-qt, a.title",
		Author:         "a.bq-aut, a.author",
		Image:          "img",
		ImageAttrs:     []string{"src", "data-img-url"},
		Next:           "ul.pagination li:last-child a",
		NextText:       "Next",
		Disabled:       "disabled",
		NotFoundMarker: "not found",
	}
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		BaseURL:           "https://www.brainyquote.com",
		NavigationTimeout: 60 * time.Second,
		ResultsTimeout:    20 * time.Second,
		MaxPages:          20,
		ItemDelay:         50 * time.Millisecond,
		PageDelay:         time.Second,
		Selectors:         DefaultSelectors(),
	}
}

// Scraper produces quote event streams for topics.
type Scraper struct {
	launcher Launcher
	opts     Options
	log      *log.Logger
}

// Validate rejects options under which no scrape could succeed.
func (o Options) Validate() error {
	if _, err := url.Parse(o.BaseURL); err != nil || o.BaseURL == "" {
		return fmt.Errorf("invalid base URL %q", o.BaseURL)
	}
	if o.MaxPages < 1 {
		return fmt.Errorf("max pages must be positive, got %d", o.MaxPages)
	}
	if o.NavigationTimeout <= 0 || o.ResultsTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive, got navigation %s and results %s", o.NavigationTimeout, o.ResultsTimeout)
	}

	sel := o.Selectors
	for name, v := range map[string]string{
		"item":             sel.Item,
		"results":          sel.Results,
		"text":             sel.Text,
		"author":           sel.Author,
		"not found marker": sel.NotFoundMarker,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s selector must not be empty", name)
		}
	}
	return nil
}

// New creates a Scraper that opens one browser per scrape through launcher.
func New(launcher Launcher, opts Options) (*Scraper, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Scraper{
		launcher: launcher,
		opts:     opts,
		log:      log.WithPrefix("crawler"),
	}, nil
}

// Scrape returns the event stream for topic. The stream always ends with
// exactly one ScrapeError or ScrapeCompleted unless the consumer stops early.
// It can be ranged over once; a second pass yields only a ScrapeError.
func (s *Scraper) Scrape(ctx context.Context, topic string) iter.Seq[types.Event] {
	var used atomic.Bool
	return func(yield func(types.Event) bool) {
		if !used.CompareAndSwap(false, true) {
			yield(types.ScrapeError{Message: "scrape sequence already consumed"})
			return
		}
		s.run(ctx, topic, yield)
	}
}

func (s *Scraper) run(ctx context.Context, topic string, yield func(types.Event) bool) {
	var stopped, inYield bool
	emit := func(e types.Event) bool {
		if stopped {
			return false
		}
		inYield = true
		ok := yield(e)
		inYield = false
		stopped = !ok
		return ok
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if inYield {
			// The panic belongs to the loop body.
			panic(r)
		}
		s.log.Error("scrape panicked", "topic", topic, "err", r)
		emit(types.ScrapeError{Message: fmt.Sprintf("unexpected failure: %v", r)})
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slug := NormalizeTopic(topic)
	l := s.log.With("topic", slug)

	tab, release, err := s.launcher.Launch(ctx)
	if err != nil {
		l.Error("could not start browser", "err", err)
		emit(types.ScrapeError{Message: fmt.Sprintf("start browser: %v", err)})
		return
	}
	defer release()

	pages, err := s.crawl(ctx, tab, slug, emit, l)
	switch {
	case errors.Is(err, errStopped):
		l.Debug("consumer stopped", "pages", pages)
	case err != nil:
		l.Error("scrape failed", "pages", pages, "err", err)
		emit(types.ScrapeError{Message: err.Error()})
	default:
		l.Info("scrape completed", "pages", pages)
		emit(types.ScrapeCompleted{TotalPages: pages})
	}
}

// crawl walks the result pages of slug, emitting per-page and per-item events.
// It returns the number of pages that produced items.
func (s *Scraper) crawl(ctx context.Context, tab Tab, slug string, emit func(types.Event) bool, l *log.Logger) (int, error) {
	base, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return 0, fmt.Errorf("invalid base URL: %w", err)
	}

	nav := newNavigator(tab, s.opts)
	extractor := newExtractor(base, s.opts, l)
	pager := newPaginator(nav, base, s.opts, l)

	target := TopicURL(s.opts.BaseURL, slug)
	l.Info("loading topic", "url", target)
	if err := nav.Load(ctx, target); err != nil {
		return 0, err
	}
	if nav.CheckNotFound(ctx) {
		return 0, fmt.Errorf("%w: %q", ErrTopicNotFound, slug)
	}

	for page := 1; ; page++ {
		if !nav.WaitForResults(ctx, s.opts.Selectors.Results, s.opts.ResultsTimeout) {
			if err := ctx.Err(); err != nil {
				return page - 1, fmt.Errorf("scrape cancelled: %w", err)
			}
			if page == 1 {
				return 0, fmt.Errorf("%w: %s", ErrNoResults, target)
			}
			l.Info("no results on page, stopping", "page", page)
			return page - 1, nil
		}

		doc, err := nav.Document(ctx)
		if err != nil {
			return page - 1, err
		}
		pager.Visit(nav.Location(ctx))

		candidates := extractor.Candidates(doc)
		if candidates.Length() == 0 {
			if page == 1 {
				return 0, fmt.Errorf("%w: %s", ErrNoResults, target)
			}
			return page - 1, nil
		}

		l.Debug("scraping page", "page", page, "items", candidates.Length())
		for e := range extractor.Items(ctx, candidates, page) {
			if !emit(e) {
				return page, errStopped
			}
		}
		if err := ctx.Err(); err != nil {
			return page, fmt.Errorf("scrape cancelled: %w", err)
		}

		if page >= s.opts.MaxPages {
			l.Info("page ceiling reached", "max_pages", s.opts.MaxPages)
			return page, nil
		}
		if !pager.Next(ctx, doc) {
			if err := ctx.Err(); err != nil {
				return page, fmt.Errorf("scrape cancelled: %w", err)
			}
			return page, nil
		}
	}
}
