// Package queue orders the topics of a batch scrape.
package queue

import (
	"sync"

	"github.com/go-scripts/quotes/internal/crawler"
)

// Queue hands out topic slugs in insertion order. A slug is accepted once even
// if it is spelled differently ("Good Morning", "good  morning").
type Queue struct {
	topics []string
	seen   map[string]bool
	taken  int
	mu     sync.Mutex
}

// New creates a Queue holding topics.
func New(topics ...string) *Queue {
	q := &Queue{seen: make(map[string]bool)}
	for _, t := range topics {
		q.Add(t)
	}
	return q
}

// Add queues topic and reports whether it was new. Blank topics are rejected.
func (q *Queue) Add(topic string) bool {
	slug := crawler.NormalizeTopic(topic)
	if slug == "" {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.seen[slug] {
		return false
	}
	q.seen[slug] = true
	q.topics = append(q.topics, slug)
	return true
}

// Next returns the next slug to scrape.
func (q *Queue) Next() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.topics) == 0 {
		return "", false
	}
	slug := q.topics[0]
	q.topics = q.topics[1:]
	q.taken++
	return slug, true
}

// Len returns the number of slugs still queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.topics)
}

// Taken returns the number of slugs handed out by Next.
func (q *Queue) Taken() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.taken
}
