package driving

import (
	"context"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search performs ranked full-text search across all indexed
	// documents, most relevant first.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
