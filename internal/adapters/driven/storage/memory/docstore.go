// Package memory provides in-memory implementations of the storage
// ports, used by service tests and as a reference for the SQLite
// adapter's semantics.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Search is a naive case-insensitive substring match over title,
// content and description; good enough for exercising the pipeline.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveDocuments stores or updates documents as one atomic group.
func (s *DocumentStore) SaveDocuments(_ context.Context, docs []*domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if doc.ID == "" {
			return domain.ErrInvalidInput
		}
	}
	for _, doc := range docs {
		s.documents[doc.ID] = *doc
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// FindByFingerprint retrieves the oldest document with the fingerprint.
func (s *DocumentStore) FindByFingerprint(_ context.Context, fingerprint string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var match *domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Fingerprint != fingerprint {
			continue
		}
		if match == nil || doc.CreatedAt.Before(match.CreatedAt) {
			match = &doc
		}
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	out := *match
	return &out, nil
}

// FindByPath retrieves the document at the normalised path.
func (s *DocumentStore) FindByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.documents {
		doc := s.documents[id]
		if doc.Path == path {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	return nil
}

// DeleteStale removes every document whose generation stamp differs
// from generation and returns the removed rows.
func (s *DocumentStore) DeleteStale(_ context.Context, generation int64) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []domain.Document
	for id := range s.documents {
		if s.documents[id].IndexedAt != generation {
			removed = append(removed, s.documents[id])
			delete(s.documents, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Path < removed[j].Path })
	return removed, nil
}

// ListDocuments returns all documents ordered by path.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for id := range s.documents {
		docs = append(docs, s.documents[id])
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Search performs a substring match over title, content and description.
func (s *DocumentStore) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	results := []domain.SearchResult{}
	for id := range s.documents {
		doc := s.documents[id]
		haystack := strings.ToLower(doc.Title + "\n" + doc.Content + "\n" + doc.Description)
		if !strings.Contains(haystack, query) {
			continue
		}
		score := float64(strings.Count(haystack, query))
		if !opts.WithContent {
			doc.Content = ""
		}
		results = append(results, domain.SearchResult{Document: doc, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.Path < results[j].Document.Path
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}

// Len returns the number of stored documents. Test helper.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
