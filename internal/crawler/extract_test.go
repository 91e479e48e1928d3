package crawler

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/quotes/internal/types"
)

const fixtureBase = "https://www.brainyquote.com"

func loadFixture(t *testing.T) *goquery.Document {
	t.Helper()
	f, err := os.Open("testdata/topic_page.html")
	require.NoError(t, err)
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func fixtureExtractor(t *testing.T) *Extractor {
	t.Helper()
	base, err := url.Parse(fixtureBase)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.ItemDelay = 0
	return newExtractor(base, opts, log.New(io.Discard))
}

func TestCandidatesExcludeAds(t *testing.T) {
	doc := loadFixture(t)
	e := fixtureExtractor(t)

	candidates := e.Candidates(doc)
	assert.Equal(t, 4, candidates.Length())
	candidates.Each(func(_ int, s *goquery.Selection) {
		assert.False(t, s.HasClass("bq_ad"))
	})
}

func TestItemsFromFixture(t *testing.T) {
	doc := loadFixture(t)
	e := fixtureExtractor(t)

	var events []types.Event
	for ev := range e.Items(context.Background(), e.Candidates(doc), 1) {
		events = append(events, ev)
	}

	require.Len(t, events, 5)
	assert.Equal(t, types.PageStarted{Page: 1, Total: 4}, events[0])

	tests := []struct {
		name  string
		event types.Event
		want  types.Quote
	}{
		{
			name:  "relative link and image",
			event: events[1],
			want: types.Quote{
				Text:     "The only true wisdom is in knowing you know nothing.",
				Author:   "Socrates",
				Link:     fixtureBase + "/quotes/socrates_101168",
				ImageURL: fixtureBase + "/photos_tr/en/s/socrates/101168/socrates1.jpg",
			},
		},
		{
			name:  "lazy image falls back to data attribute",
			event: events[2],
			want: types.Quote{
				Text:     "Knowing others is intelligence; knowing yourself is true wisdom.",
				Author:   "Lao Tzu",
				Link:     fixtureBase + "/quotes/lao_tzu_137141",
				ImageURL: fixtureBase + "/photos_tr/en/l/laotzu/137141/laotzu1.jpg",
			},
		},
		{
			name:  "alternate selectors without image",
			event: events[4],
			want: types.Quote{
				Text:   "Turn your wounds into wisdom.",
				Author: "Oprah Winfrey",
				Link:   fixtureBase,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := tt.event.(types.QuoteExtracted)
			require.True(t, ok, "got %T", tt.event)
			assert.Equal(t, tt.want, q.Quote)
		})
	}

	skipped, ok := events[3].(types.ItemSkipped)
	require.True(t, ok)
	assert.Equal(t, 3, skipped.Index)
	assert.Equal(t, errMissingText.Error(), skipped.Reason)
}

func TestItemsStopWhenCancelled(t *testing.T) {
	doc := loadFixture(t)
	base, _ := url.Parse(fixtureBase)
	opts := DefaultOptions()
	opts.ItemDelay = time.Hour
	e := newExtractor(base, opts, log.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	var events []types.Event
	for ev := range e.Items(ctx, e.Candidates(doc), 2) {
		events = append(events, ev)
		cancel()
	}

	assert.Equal(t, types.PageStarted{Page: 2, Total: 4}, events[0])
	assert.Len(t, events, 1)
}

func TestImageSkipsPlaceholders(t *testing.T) {
	e := fixtureExtractor(t)

	tests := []struct {
		name string
		html string
		want string
	}{
		{"src", `<div><img src="/a.jpg"></div>`, fixtureBase + "/a.jpg"},
		{"absolute src", `<div><img src="https://cdn.test/a.jpg"></div>`, "https://cdn.test/a.jpg"},
		{"data placeholder", `<div><img src="data:image/gif;base64,xx" data-img-url="/b.jpg"></div>`, fixtureBase + "/b.jpg"},
		{"empty src", `<div><img src=" " data-img-url="/c.jpg"></div>`, fixtureBase + "/c.jpg"},
		{"only placeholder", `<div><img src="data:image/gif;base64,xx"></div>`, ""},
		{"no image", `<div><p>text</p></div>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.image(doc.Find("div").First()))
		})
	}
}

func TestExtractRequiresAuthor(t *testing.T) {
	e := fixtureExtractor(t)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div class="grid-item bqQt"><a class="b-qt" href="/q">Words</a></div>`))
	require.NoError(t, err)

	_, err = e.extract(doc.Find("div").First())
	assert.ErrorIs(t, err, errMissingAuthor)
}

func TestItemsSkipItemThatPanics(t *testing.T) {
	doc := loadFixture(t)
	e := fixtureExtractor(t)

	candidates := e.Candidates(doc)
	// A detached node makes the selector engine dereference nil.
	candidates.Nodes[1] = nil

	var events []types.Event
	for ev := range e.Items(context.Background(), candidates, 1) {
		events = append(events, ev)
	}

	require.Len(t, events, 5)
	assert.Equal(t, types.PageStarted{Page: 1, Total: 4}, events[0])

	skipped, ok := events[2].(types.ItemSkipped)
	require.True(t, ok, "got %T", events[2])
	assert.Equal(t, 2, skipped.Index)
	assert.Contains(t, skipped.Reason, "extract item")

	for i, ev := range events[1:] {
		switch ev := ev.(type) {
		case types.QuoteExtracted:
			assert.Equal(t, i+1, ev.Index)
		case types.ItemSkipped:
			assert.Equal(t, i+1, ev.Index)
		default:
			t.Fatalf("unexpected event %T", ev)
		}
	}
	assert.IsType(t, types.QuoteExtracted{}, events[4])
}
