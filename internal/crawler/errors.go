package crawler

import "errors"

var (
	// ErrNavigation is returned when the first results page cannot be loaded.
	ErrNavigation = errors.New("navigation failed")

	// ErrTopicNotFound is returned when the site answers the topic URL with its
	// "not found" page.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrNoResults is returned when the first page never shows any quotes.
	ErrNoResults = errors.New("no quotes found")

	// errStopped signals that the consumer stopped ranging over the stream.
	errStopped = errors.New("consumer stopped")
)
