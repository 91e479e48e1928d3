// Package storetest holds the behaviour every store.Store must show.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/internal/types"
)

// Run exercises s, which must start empty.
func Run(t *testing.T, s store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("save", func(t *testing.T) {
		rec := types.QuoteRecord{
			Text:     "Love all, trust a few.",
			Author:   "William Shakespeare",
			Link:     "https://q.test/quotes/1",
			ImageURL: "https://cdn.test/1.jpg",
			Topic:    "love",
		}
		got, err := s.Save(ctx, rec)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.NotZero(t, got.ID)
		assert.Equal(t, rec.Text, got.Text)
		assert.Equal(t, rec.ImageURL, got.ImageURL)
		assert.Equal(t, "love", got.Topic)
		assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
	})

	t.Run("duplicate text", func(t *testing.T) {
		got, err := s.Save(ctx, types.QuoteRecord{
			Text:   "Love all, trust a few.",
			Author: "Someone Else",
			Link:   "https://q.test/quotes/other",
			Topic:  "trust",
		})
		require.NoError(t, err)
		assert.Nil(t, got)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("list", func(t *testing.T) {
		for i := range 3 {
			_, err := s.Save(ctx, types.QuoteRecord{
				Text:   fmt.Sprintf("Wisdom %d", i),
				Author: "Sage",
				Link:   fmt.Sprintf("https://q.test/quotes/w%d", i),
				Topic:  "wisdom",
			})
			require.NoError(t, err)
		}

		all, err := s.List(ctx, store.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Equal(t, "Wisdom 2", all[0].Text)

		wisdom, err := s.List(ctx, store.Filter{Topic: "wisdom", Limit: 2})
		require.NoError(t, err)
		require.Len(t, wisdom, 2)
		for _, q := range wisdom {
			assert.Equal(t, "wisdom", q.Topic)
			assert.Empty(t, q.ImageURL)
		}

		none, err := s.List(ctx, store.Filter{Topic: "absent"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("count", func(t *testing.T) {
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})
}
