package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

// nextControl is a located "next page" link.
type nextControl struct {
	el       *goquery.Selection
	target   Target
	strategy string
}

// nextStrategy locates the next-page control in doc, reporting false when it
// finds nothing.
type nextStrategy struct {
	name   string
	locate func(doc *goquery.Document) (nextControl, bool)
}

// Paginator decides whether a scrape continues past the current page and
// performs the transition.
type Paginator struct {
	nav        *Navigator
	base       *url.URL
	strategies []nextStrategy
	disabled   string
	delay      time.Duration
	visited    map[string]bool
	log        *log.Logger
}

func newPaginator(nav *Navigator, base *url.URL, opts Options, l *log.Logger) *Paginator {
	sel := opts.Selectors
	return &Paginator{
		nav:  nav,
		base: base,
		strategies: []nextStrategy{
			{name: "structural", locate: bySelector(sel.Next)},
			{name: "text", locate: byLinkText(sel.NextText)},
		},
		disabled: sel.Disabled,
		delay:    opts.PageDelay,
		visited:  make(map[string]bool),
		log:      l,
	}
}

func bySelector(selector string) func(*goquery.Document) (nextControl, bool) {
	return func(doc *goquery.Document) (nextControl, bool) {
		el := doc.Find(selector).First()
		if el.Length() == 0 {
			return nextControl{}, false
		}
		return nextControl{el: el, target: Target{Selector: selector}}, true
	}
}

func byLinkText(text string) func(*goquery.Document) (nextControl, bool) {
	return func(doc *goquery.Document) (nextControl, bool) {
		el := doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return normalizeSpace(a.Text()) == text
		}).First()
		if el.Length() == 0 {
			return nextControl{}, false
		}
		xpath := fmt.Sprintf(`//a[normalize-space(.)=%s]`, xpathLiteral(text))
		return nextControl{el: el, target: Target{Selector: xpath, XPath: true}}, true
	}
}

// Visit records url as a page already scraped.
func (p *Paginator) Visit(u string) {
	if u == "" {
		return
	}
	p.visited[u] = true
}

// locate runs the strategies in order; the first hit wins.
func (p *Paginator) locate(doc *goquery.Document) (nextControl, bool) {
	for _, s := range p.strategies {
		if ctrl, ok := s.locate(doc); ok {
			ctrl.strategy = s.name
			return ctrl, true
		}
	}
	return nextControl{}, false
}

func (p *Paginator) isDisabled(el *goquery.Selection) bool {
	if attr, _ := el.Attr("aria-disabled"); attr == "true" {
		return true
	}
	if p.disabled == "" {
		return false
	}
	return el.HasClass(p.disabled) || el.Parent().HasClass(p.disabled) || el.Closest("li").HasClass(p.disabled)
}

// Next moves the tab to the following results page. It returns false when
// there is no usable next page; failures here never end a scrape with an error.
func (p *Paginator) Next(ctx context.Context, doc *goquery.Document) (advanced bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("pagination failed", "err", r)
			advanced = false
		}
	}()

	ctrl, ok := p.locate(doc)
	if !ok {
		p.log.Debug("no next page control")
		return false
	}
	if p.isDisabled(ctrl.el) {
		p.log.Debug("next page control disabled", "strategy", ctrl.strategy)
		return false
	}
	if next, ok := p.target(ctx, ctrl.el); ok && p.visited[next] {
		p.log.Warn("next page already visited", "url", next)
		return false
	}

	if err := p.nav.Advance(ctx, ctrl.target); err != nil {
		p.log.Warn("could not open next page", "strategy", ctrl.strategy, "err", err)
		return false
	}
	if err := sleepCtx(ctx, p.delay); err != nil {
		return false
	}
	return true
}

// target resolves the href of el the way the browser does, against the
// current page, falling back to the base URL when the location is unknown.
func (p *Paginator) target(ctx context.Context, el *goquery.Selection) (string, bool) {
	href, ok := el.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	from := p.base
	if loc, err := url.Parse(p.nav.Location(ctx)); err == nil && loc.IsAbs() {
		from = loc
	}
	return from.ResolveReference(ref).String(), true
}

// xpathLiteral quotes s as an XPath 1.0 string literal. XPath has no escape
// sequences, so a value holding both quote kinds is built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	args := make([]string, 0, 2*len(parts)-1)
	for i, part := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		args = append(args, "'"+part+"'")
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// sleepCtx sleeps for d or returns early if ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
