package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/go-scripts/quotes/internal/types"
)

const testBase = "https://quotes.test"

const notFoundHTML = `<html><head><title>Page Not Found</title></head><body><h1>Page Not Found</h1></body></html>`

// fakeTab serves pages from an in-memory site.
type fakeTab struct {
	mu       sync.Mutex
	site     map[string]string
	current  string
	navErr   error
	clickErr error
	visited  []string
}

func (f *fakeTab) Navigate(ctx context.Context, u string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navErr != nil {
		return f.navErr
	}
	f.current = u
	f.visited = append(f.visited, u)
	return nil
}

func (f *fakeTab) doc() *goquery.Document {
	html, ok := f.site[f.current]
	if !ok {
		html = notFoundHTML
	}
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(html))
	return doc
}

func (f *fakeTab) WaitVisible(ctx context.Context, selector string) error {
	f.mu.Lock()
	found := f.doc().Find(selector).Length() > 0
	f.mu.Unlock()
	if found {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeTab) HTML(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if html, ok := f.site[f.current]; ok {
		return html, nil
	}
	return notFoundHTML, nil
}

func (f *fakeTab) Click(ctx context.Context, target Target) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}

	doc := f.doc()
	var el *goquery.Selection
	if target.XPath {
		el = doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.Contains(target.Selector, "="+xpathLiteral(normalizeSpace(a.Text()))+"]")
		}).First()
	} else {
		el = doc.Find(target.Selector).First()
	}
	href, ok := el.Attr("href")
	if !ok {
		return errors.New("element not found")
	}

	cur, _ := url.Parse(f.current)
	ref, _ := url.Parse(href)
	f.current = cur.ResolveReference(ref).String()
	f.visited = append(f.visited, f.current)
	return nil
}

func (f *fakeTab) Location(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeTab) sawURL(u string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.visited {
		if v == u {
			return true
		}
	}
	return false
}

// fakeLauncher hands out one fakeTab per launch.
type fakeLauncher struct {
	tab       *fakeTab
	launchErr error
	launches  int
	releases  int
}

func (l *fakeLauncher) Launch(ctx context.Context) (Tab, func(), error) {
	l.launches++
	if l.launchErr != nil {
		return nil, nil, l.launchErr
	}
	return l.tab, func() { l.releases++ }, nil
}

func pageURL(slug string, page int) string {
	if page == 1 {
		return TopicURL(testBase, slug)
	}
	return fmt.Sprintf("%s/topics/%s-quotes_%d", testBase, slug, page)
}

type pageLayout struct {
	items      int
	noAuthor   map[int]bool
	last       bool
	textNext   bool
	noControls bool
	// backLink renders a pagination whose only link points, relative to the
	// current page, back at page 1.
	backLink bool
}

// quotePage renders a topic results page in the site's markup, including an ad
// that shares the grid marker.
func quotePage(slug string, page int, layout pageLayout) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><head><title>%s Quotes - Page %d</title></head><body><h1>%s Quotes</h1><div id="grid">`, slug, page, slug)
	for i := 1; i <= layout.items; i++ {
		if i == 2 {
			b.WriteString(`<div class="grid-item bq_ad"><a class="b-qt" href="/ads/1">Buy now</a><a class="bq-aut">Sponsor</a></div>`)
		}
		author := fmt.Sprintf(`<a class="bq-aut" href="/authors/author-%d">Author %d</a>`, i, i)
		if layout.noAuthor[i] {
			author = ""
		}
		fmt.Fprintf(&b, `<div class="grid-item qb clearfix bqQt"><a href="/quotes/q-%d-%d"><img class="bqphtgrid" src="/photos/%d-%d.jpg" alt=""></a><a class="b-qt" href="/quotes/q-%d-%d">Quote %d.%d</a>%s</div>`,
			page, i, page, i, page, i, page, i, author)
	}
	b.WriteString(`</div>`)

	switch {
	case layout.noControls:
	case layout.backLink:
		fmt.Fprintf(&b, `<ul class="pagination"><li><a href="%s-quotes">1</a></li></ul>`, slug)
	case layout.textNext:
		if !layout.last {
			fmt.Fprintf(&b, `<div class="pager"><a href="%s">Next</a></div>`, pageURL(slug, page+1))
		}
	default:
		class := ""
		href := pageURL(slug, page+1)
		if layout.last {
			class = "disabled"
			href = "#"
		}
		fmt.Fprintf(&b, `<ul class="pagination"><li><a href="%s">1</a></li><li class="%s"><a href="%s">Next</a></li></ul>`,
			pageURL(slug, 1), class, href)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// newSite builds pages 1..len(layouts) for slug.
func newSite(slug string, layouts ...pageLayout) map[string]string {
	site := make(map[string]string)
	for i, layout := range layouts {
		site[pageURL(slug, i+1)] = quotePage(slug, i+1, layout)
	}
	return site
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.BaseURL = testBase
	opts.NavigationTimeout = time.Second
	opts.ResultsTimeout = 20 * time.Millisecond
	opts.ItemDelay = 0
	opts.PageDelay = 0
	return opts
}

func collect(seq func(func(types.Event) bool)) []types.Event {
	var events []types.Event
	for e := range seq {
		events = append(events, e)
	}
	return events
}

// assertWellFormed checks the stream invariants that hold for every scrape.
func assertWellFormed(t *testing.T, events []types.Event) {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("empty stream")
	}

	terminals := 0
	for _, e := range events {
		if types.IsTerminal(e) {
			terminals++
		}
	}
	if terminals != 1 || !types.IsTerminal(events[len(events)-1]) {
		t.Fatalf("want exactly one terminal event at the end, got %d in %#v", terminals, events)
	}

	lastPage, lastIndex := 0, 0
	for _, e := range events {
		switch e := e.(type) {
		case types.PageStarted:
			if e.Page != lastPage+1 {
				t.Errorf("page %d follows page %d", e.Page, lastPage)
			}
			lastPage, lastIndex = e.Page, 0
		case types.QuoteExtracted:
			if e.Page != lastPage || e.Index != lastIndex+1 {
				t.Errorf("quote page=%d index=%d after page=%d index=%d", e.Page, e.Index, lastPage, lastIndex)
			}
			lastIndex = e.Index
		case types.ItemSkipped:
			if e.Page != lastPage || e.Index != lastIndex+1 {
				t.Errorf("skip page=%d index=%d after page=%d index=%d", e.Page, e.Index, lastPage, lastIndex)
			}
			lastIndex = e.Index
		}
	}
}
