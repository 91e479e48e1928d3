package types

import "time"

// Quote holds the fields extracted for a single quote on a results page.
type Quote struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url,omitempty"`
}

// QuoteRecord is the payload handed to a quote store.
type QuoteRecord struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Link     string `json:"link"`
	ImageURL string `json:"image_url,omitempty"`
	Topic    string `json:"topic"`
}

// StoredQuote is a quote as persisted by a store.
type StoredQuote struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Link      string    `json:"link"`
	ImageURL  string    `json:"image_url,omitempty"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

// Record converts an extracted quote into a store payload for topic.
func (q Quote) Record(topic string) QuoteRecord {
	return QuoteRecord{
		Text:     q.Text,
		Author:   q.Author,
		Link:     q.Link,
		ImageURL: q.ImageURL,
		Topic:    topic,
	}
}
