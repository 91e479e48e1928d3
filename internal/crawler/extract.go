package crawler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/go-scripts/quotes/internal/types"
)

var (
	errMissingText   = errors.New("missing quote text")
	errMissingAuthor = errors.New("missing author")
)

// Extractor turns the quote grid of a loaded page into events.
type Extractor struct {
	base  *url.URL
	sel   Selectors
	delay time.Duration
	log   *log.Logger
}

func newExtractor(base *url.URL, opts Options, l *log.Logger) *Extractor {
	return &Extractor{
		base:  base,
		sel:   opts.Selectors,
		delay: opts.ItemDelay,
		log:   l,
	}
}

// Candidates returns the quote items of doc in document order. Ads placed in
// the grid match the generic grid marker only and are left out by the compound
// item selector.
func (e *Extractor) Candidates(doc *goquery.Document) *goquery.Selection {
	return doc.Find(e.sel.Item)
}

// Items yields PageStarted followed by one QuoteExtracted or ItemSkipped per
// candidate. Iteration stops early if ctx is cancelled while pacing.
func (e *Extractor) Items(ctx context.Context, candidates *goquery.Selection, page int) iter.Seq[types.Event] {
	return func(yield func(types.Event) bool) {
		total := candidates.Length()
		if !yield(types.PageStarted{Page: page, Total: total}) {
			return
		}

		limit := rate.Inf
		if e.delay > 0 {
			limit = rate.Every(e.delay)
		}
		pace := rate.NewLimiter(limit, 1)

		for i := range total {
			if err := pace.Wait(ctx); err != nil {
				return
			}

			index := i + 1
			quote, err := e.extract(candidates.Eq(i))
			if err != nil {
				e.log.Debug("skipping item", "page", page, "item", index, "err", err)
				if !yield(types.ItemSkipped{Page: page, Index: index, Total: total, Reason: err.Error()}) {
					return
				}
				continue
			}

			if !yield(types.QuoteExtracted{Quote: quote, Page: page, Index: index, Total: total}) {
				return
			}
		}
	}
}

// extract reads one candidate. A failure of any kind, including a panic inside
// the selector engine, is reported as an error so the page can go on.
func (e *Extractor) extract(item *goquery.Selection) (quote types.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract item: %v", r)
		}
	}()

	textEl := item.Find(e.sel.Text).First()
	quote.Text = normalizeSpace(textEl.Text())
	if quote.Text == "" {
		return quote, errMissingText
	}
	quote.Author = normalizeSpace(item.Find(e.sel.Author).First().Text())
	if quote.Author == "" {
		return quote, errMissingAuthor
	}

	href, _ := textEl.Attr("href")
	quote.Link, err = e.resolve(strings.TrimSpace(href))
	if err != nil {
		return quote, fmt.Errorf("quote link: %w", err)
	}

	quote.ImageURL = e.image(item)
	return quote, nil
}

// image tries each configured attribute of the item image in order and returns
// the first usable value as an absolute URL. Inline data: placeholders, used by
// the site for lazily loaded images, are not usable.
func (e *Extractor) image(item *goquery.Selection) string {
	img := item.Find(e.sel.Image).First()
	if img.Length() == 0 {
		return ""
	}

	for _, attr := range e.sel.ImageAttrs {
		v, ok := img.Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" || strings.HasPrefix(v, "data:") {
			continue
		}
		abs, err := e.resolve(v)
		if err != nil {
			e.log.Debug("unusable image attribute", "attr", attr, "value", v, "err", err)
			continue
		}
		return abs
	}
	return ""
}

func (e *Extractor) resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return e.base.ResolveReference(ref).String(), nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
