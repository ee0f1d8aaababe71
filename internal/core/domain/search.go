package domain

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// WithContent includes the (possibly large) extracted text on each
	// returned document. Off by default to keep result sets small.
	WithContent bool
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document, stored fields only.
	Document Document

	// Score is the relevance score from the full-text engine,
	// higher is more relevant.
	Score float64
}
