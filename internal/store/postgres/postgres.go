// Package postgres stores quotes in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/internal/types"
)

//go:embed schema.sql
var Schema string

type Store struct {
	pool *pgxpool.Pool
	log  *log.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &Store{pool: pool, log: log.WithPrefix("postgres")}
	s.log.Debug("connected", "host", pool.Config().ConnConfig.Host)
	return s, nil
}

func (s *Store) Save(ctx context.Context, q types.QuoteRecord) (*types.StoredQuote, error) {
	stored := types.StoredQuote{
		Text:     q.Text,
		Author:   q.Author,
		Link:     q.Link,
		ImageURL: q.ImageURL,
		Topic:    q.Topic,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO quotes (text, author, link, image_url, topic)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (text) DO NOTHING
		 RETURNING id, created_at`,
		q.Text, q.Author, q.Link, q.ImageURL, q.Topic,
	).Scan(&stored.ID, &stored.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}
	return &stored, nil
}

func (s *Store) List(ctx context.Context, f store.Filter) ([]types.StoredQuote, error) {
	f = f.Normalize()
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, author, link, image_url, topic, created_at
		 FROM quotes
		 WHERE $1 = '' OR topic = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		f.Topic, f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []types.StoredQuote{}
	for rows.Next() {
		var q types.StoredQuote
		if err := rows.Scan(&q.ID, &q.Text, &q.Author, &q.Link, &q.ImageURL, &q.Topic, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quotes: %w", err)
	}
	return quotes, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
