// Package pipeline post-processes scraped quotes before they reach a client.
package pipeline

import (
	"context"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/internal/types"
)

// Rehoster swaps a source image URL for a copy on our storage.
type Rehoster interface {
	Rehost(ctx context.Context, topic, src string) string
}

// Processor re-hosts images and persists quotes. Both steps are optional and
// neither can fail a scrape.
type Processor struct {
	rehoster Rehoster
	store    store.Store
	log      *log.Logger
}

// New creates a Processor. Either argument may be nil.
func New(rehoster Rehoster, s store.Store) *Processor {
	return &Processor{rehoster: rehoster, store: s, log: log.WithPrefix("pipeline")}
}

// Process returns q with its image re-hosted and saves it.
func (p *Processor) Process(ctx context.Context, topic string, q types.QuoteExtracted) types.QuoteExtracted {
	if p.rehoster != nil && q.Quote.ImageURL != "" {
		q.Quote.ImageURL = p.rehoster.Rehost(ctx, topic, q.Quote.ImageURL)
	}

	if p.store != nil {
		saved, err := p.store.Save(ctx, q.Quote.Record(topic))
		switch {
		case err != nil:
			p.log.Error("failed to save quote", "topic", topic, "page", q.Page, "err", err)
		case saved == nil:
			p.log.Debug("duplicate quote", "topic", topic, "page", q.Page)
		default:
			p.log.Debug("quote saved", "topic", topic, "id", saved.ID)
		}
	}
	return q
}

// Apply runs Process over every QuoteExtracted in events. Other events pass
// through unchanged.
func (p *Processor) Apply(ctx context.Context, topic string, events iter.Seq[types.Event]) iter.Seq[types.Event] {
	return func(yield func(types.Event) bool) {
		for e := range events {
			if q, ok := e.(types.QuoteExtracted); ok {
				e = p.Process(ctx, topic, q)
			}
			if !yield(e) {
				return
			}
		}
	}
}
