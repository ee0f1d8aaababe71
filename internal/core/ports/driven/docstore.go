package driven

import (
	"context"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
)

// DocumentStore persists documents together with their full-text index.
// Implementations must keep the full-text entry for a row in lockstep
// with the row itself: no mutation may commit one without the other.
type DocumentStore interface {
	// SaveDocument stores or updates a document and its full-text entry.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveDocuments stores or updates documents in a single transaction.
	// Used by batch indexing to amortise transaction overhead.
	SaveDocuments(ctx context.Context, docs []*domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// FindByFingerprint retrieves the oldest document with the given
	// content digest, or domain.ErrNotFound.
	FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Document, error)

	// FindByPath retrieves the document at the given normalised path,
	// or domain.ErrNotFound.
	FindByPath(ctx context.Context, path string) (*domain.Document, error)

	// DeleteDocument removes a document and its full-text entry.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteStale removes every document whose generation stamp differs
	// from generation and returns the removed rows so the caller can
	// clean up derived artefacts.
	DeleteStale(ctx context.Context, generation int64) ([]domain.Document, error)

	// ListDocuments returns all documents ordered by path.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Search runs a ranked full-text query over title, content and
	// description. An empty query returns an empty result set.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Close releases the underlying storage.
	Close() error
}
