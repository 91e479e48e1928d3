// Package stream encodes scrape events as newline-delimited JSON.
package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-scripts/quotes/internal/types"
)

// ContentType is the media type of an encoded stream.
const ContentType = "application/x-ndjson"

type pageLine struct {
	Page  int `json:"page"`
	Total int `json:"total"`
}

type quoteLine struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url,omitempty"`
	Topic    string `json:"topic"`
	Page     int    `json:"page"`
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
}

type skipLine struct {
	Page     int  `json:"page"`
	Progress int  `json:"progress"`
	Total    int  `json:"total"`
	Skipped  bool `json:"skipped"`
}

type errorLine struct {
	Error string `json:"error"`
}

type doneLine struct {
	Done       bool `json:"done"`
	TotalPages int  `json:"total_pages"`
}

// Line returns the wire object for e. Quotes are tagged with topic.
func Line(topic string, e types.Event) (any, error) {
	switch e := e.(type) {
	case types.PageStarted:
		return pageLine{Page: e.Page, Total: e.Total}, nil
	case types.QuoteExtracted:
		return quoteLine{
			Text:     e.Quote.Text,
			Author:   e.Quote.Author,
			Link:     e.Quote.Link,
			ImageURL: e.Quote.ImageURL,
			Topic:    topic,
			Page:     e.Page,
			Progress: e.Index,
			Total:    e.Total,
		}, nil
	case types.ItemSkipped:
		return skipLine{Page: e.Page, Progress: e.Index, Total: e.Total, Skipped: true}, nil
	case types.ScrapeError:
		return errorLine{Error: e.Message}, nil
	case types.ScrapeCompleted:
		return doneLine{Done: true, TotalPages: e.TotalPages}, nil
	default:
		return nil, fmt.Errorf("unknown event %T", e)
	}
}

// Encoder writes one JSON object per event and flushes after every line when
// the writer supports it.
type Encoder struct {
	enc     *json.Encoder
	flusher http.Flusher
	topic   string
}

// NewEncoder creates an Encoder that tags quotes with topic.
func NewEncoder(w io.Writer, topic string) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	f, _ := w.(http.Flusher)
	return &Encoder{enc: enc, flusher: f, topic: topic}
}

// Encode writes e as a single line.
func (e *Encoder) Encode(ev types.Event) error {
	line, err := Line(e.topic, ev)
	if err != nil {
		return err
	}
	if err := e.enc.Encode(line); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
