// Package sqlite stores quotes in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/go-scripts/quotes/internal/store"
	"github.com/go-scripts/quotes/internal/types"
)

//go:embed schema.sql
var Schema string

// timeLayout matches the created_at default in the schema.
const timeLayout = "2006-01-02T15:04:05.000Z"

type Store struct {
	db  *sql.DB
	log *log.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; concurrent scrapes queue on the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &Store{db: db, log: log.WithPrefix("sqlite")}
	s.log.Debug("opened", "path", path)
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
	var created string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quotes (text, author, link, image_url, topic)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (text) DO NOTHING
		 RETURNING id, created_at`,
		q.Text, q.Author, q.Link, q.ImageURL, q.Topic,
	).Scan(&stored.ID, &created)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}
	if stored.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", created, err)
	}
	return &stored, nil
}

func (s *Store) List(ctx context.Context, f store.Filter) ([]types.StoredQuote, error) {
	f = f.Normalize()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, author, link, image_url, topic, created_at
		 FROM quotes
		 WHERE ?1 = '' OR topic = ?1
		 ORDER BY id DESC
		 LIMIT ?2`,
		f.Topic, f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []types.StoredQuote{}
	for rows.Next() {
		var (
			q       types.StoredQuote
			created string
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Author, &q.Link, &q.ImageURL, &q.Topic, &created); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		if q.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", created, err)
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
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
