package types

// Event is one unit of a scrape stream. The set of implementations is closed:
// PageStarted, QuoteExtracted, ItemSkipped, ScrapeError and ScrapeCompleted.
type Event interface {
	event()
}

// PageStarted is emitted once per page after item discovery.
type PageStarted struct {
	Page  int
	Total int
}

// QuoteExtracted carries one parsed quote. Index is 1-based within Page.
type QuoteExtracted struct {
	Quote Quote
	Page  int
	Index int
	Total int
}

// ItemSkipped replaces QuoteExtracted for an item that could not be parsed.
type ItemSkipped struct {
	Page   int
	Index  int
	Total  int
	Reason string
}

// ScrapeError terminates a stream with a failure.
type ScrapeError struct {
	Message string
}

// ScrapeCompleted terminates a stream normally.
type ScrapeCompleted struct {
	TotalPages int
}

func (PageStarted) event()     {}
func (QuoteExtracted) event()  {}
func (ItemSkipped) event()     {}
func (ScrapeError) event()     {}
func (ScrapeCompleted) event() {}

// IsTerminal reports whether e ends a scrape stream.
func IsTerminal(e Event) bool {
	switch e.(type) {
	case ScrapeError, ScrapeCompleted:
		return true
	default:
		return false
	}
}
