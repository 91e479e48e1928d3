// Package store defines quote persistence.
package store

import (
	"context"

	"github.com/go-scripts/quotes/internal/types"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Store persists quotes. Quote text is unique across the store.
type Store interface {
	// Save inserts q and returns the stored row, or nil without error when a
	// quote with the same text already exists.
	Save(ctx context.Context, q types.QuoteRecord) (*types.StoredQuote, error)
	// List returns stored quotes, newest first.
	List(ctx context.Context, f Filter) ([]types.StoredQuote, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Filter narrows List. An empty Topic matches every topic.
type Filter struct {
	Topic string
	Limit int
}

// Normalize clamps Limit to [1, MaxLimit], using DefaultLimit when unset.
func (f Filter) Normalize() Filter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return f
}
