package driving

import (
	"context"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
)

// DocumentService exposes read access and the narrow annotation update
// path used by presentation layers. Content and fingerprint mutations
// go through the Indexer only.
type DocumentService interface {
	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all indexed documents ordered by path.
	List(ctx context.Context) ([]domain.Document, error)

	// SetDescription updates the free-text annotation.
	SetDescription(ctx context.Context, id, description string) error

	// SetLocationTag updates the user-assigned location tag.
	SetLocationTag(ctx context.Context, id, tag string) error
}
