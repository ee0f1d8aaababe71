package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes reads and the narrow annotation update path.
// Content, fingerprint and path mutations are reserved for the indexer.
type DocumentService struct {
	store driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(store driven.DocumentStore) *DocumentService {
	return &DocumentService{store: store}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.store.GetDocument(ctx, id)
}

// List returns all indexed documents ordered by path.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// SetDescription updates the free-text annotation.
func (s *DocumentService) SetDescription(ctx context.Context, id, description string) error {
	return s.update(ctx, id, func(doc *domain.Document) {
		doc.Description = description
	})
}

// SetLocationTag updates the user-assigned location tag.
func (s *DocumentService) SetLocationTag(ctx context.Context, id, tag string) error {
	return s.update(ctx, id, func(doc *domain.Document) {
		doc.LocationTag = tag
	})
}

func (s *DocumentService) update(ctx context.Context, id string, mutate func(*domain.Document)) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	mutate(doc)
	doc.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
