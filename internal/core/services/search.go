package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
	"github.com/custodia-labs/pdfdex/internal/logger"
)

// defaultSearchLimit caps result sets when the caller does not.
const defaultSearchLimit = 10

// Ensure SearchQueryService implements the interface.
var _ driving.SearchService = (*SearchQueryService)(nil)

// SearchQueryService answers ranked full-text queries. Ranking and
// tokenisation are delegated to the store's embedded full-text engine.
type SearchQueryService struct {
	store driven.DocumentStore
}

// NewSearchQueryService creates a new search service.
func NewSearchQueryService(store driven.DocumentStore) *SearchQueryService {
	return &SearchQueryService{store: store}
}

// Search runs a ranked query, most relevant first. An empty query
// returns an empty result set, never an error.
func (s *SearchQueryService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultSearchLimit
	}

	logger.Debug("Query: %q (limit %d)", query, opts.Limit)
	results, err := s.store.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}
