package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
	"github.com/custodia-labs/pdfdex/internal/logger"
	"github.com/custodia-labs/pdfdex/internal/metrics"
)

// defaultBatchSize is the number of rows committed per transaction
// during a batch run.
const defaultBatchSize = 10

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// IndexerService orchestrates hashing, resolution, text extraction,
// store mutation and thumbnail generation. All writes to the store go
// through one IndexerService; a mutex enforces the single-writer
// discipline between batch runs and watcher events.
type IndexerService struct {
	store     driven.DocumentStore
	resolver  *Resolver
	extractor driven.TextExtractor
	thumbs    driven.ThumbnailStore
	root      string
	batchSize int

	// writeMu serialises all store mutations.
	writeMu sync.Mutex

	// batchMu guards against overlapping batch runs.
	batchMu sync.Mutex
	running bool
}

// NewIndexerService creates an indexer rooted at root. The thumbnail
// store is optional; batchSize <= 0 selects the default.
func NewIndexerService(
	store driven.DocumentStore,
	extractor driven.TextExtractor,
	thumbs driven.ThumbnailStore,
	root string,
	batchSize int,
) *IndexerService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &IndexerService{
		store:     store,
		resolver:  NewResolver(store),
		extractor: extractor,
		thumbs:    thumbs,
		root:      root,
		batchSize: batchSize,
	}
}

// IndexFile resolves a single file and applies the matching mutation,
// committing immediately.
func (s *IndexerService) IndexFile(ctx context.Context, path string, generation int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.indexOne(ctx, path, generation)
	if err != nil || doc == nil {
		return err
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	// The row is committed; thumbnailing is best-effort from here on.
	s.ensureThumbnail(ctx, doc)
	metrics.FilesIndexed.Inc()
	return nil
}

// indexOne resolves path and returns the mutated row to persist, or
// nil when nothing changed. Thumbnail invalidation for modified rows
// happens here, before the new fingerprint is written; generation is
// only stamped when non-zero.
func (s *IndexerService) indexOne(ctx context.Context, path string, generation int64) (*domain.Document, error) {
	res, err := s.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	path = domain.NormalizePath(path)
	now := time.Now().UTC()

	switch res.Action {
	case domain.ActionSame:
		if generation == 0 {
			// Nothing to persist; still make sure the thumbnail exists.
			s.ensureThumbnail(ctx, res.Document)
			return nil, nil
		}
		doc := res.Document
		doc.IndexedAt = generation
		doc.UpdatedAt = now
		return doc, nil

	case domain.ActionMoved:
		logger.Info("%s -> moved (was %s)", path, res.Document.Path)
		doc := res.Document
		doc.Path = path
		doc.Title = domain.TitleFromPath(path)
		if generation != 0 {
			doc.IndexedAt = generation
		}
		doc.UpdatedAt = now
		return doc, nil

	case domain.ActionModified:
		logger.Info("%s -> modified", path)
		doc := res.Document
		// The old thumbnail is keyed by the old fingerprint and would
		// become unreachable once the row is rewritten.
		if s.thumbs != nil {
			if err := s.thumbs.Remove(doc.Fingerprint); err != nil {
				logger.Warn("Removing stale thumbnail for %s: %v", doc.Path, err)
			}
		}
		content, err := s.extract(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		doc.Fingerprint = res.Fingerprint
		doc.Content = content
		if generation != 0 {
			doc.IndexedAt = generation
		}
		doc.UpdatedAt = now
		return doc, nil

	case domain.ActionNew, domain.ActionDuplicated:
		content, err := s.extract(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", path, err)
		}
		return &domain.Document{
			ID:          uuid.NewString(),
			Title:       domain.TitleFromPath(path),
			Content:     content,
			Fingerprint: res.Fingerprint,
			Path:        path,
			IndexedAt:   generation,
			CreatedAt:   now,
			UpdatedAt:   now,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, res.Action)
	}
}

// IndexTree walks the root for PDF files, indexes each under one shared
// generation in fixed-size commit groups, then sweeps rows the walk did
// not confirm.
func (s *IndexerService) IndexTree(ctx context.Context) (driving.BatchStats, error) {
	s.batchMu.Lock()
	if s.running {
		s.batchMu.Unlock()
		return driving.BatchStats{}, domain.ErrIndexInProgress
	}
	s.running = true
	s.batchMu.Unlock()
	defer func() {
		s.batchMu.Lock()
		s.running = false
		s.batchMu.Unlock()
	}()

	metrics.IndexerRunning.Set(1)
	defer metrics.IndexerRunning.Set(0)
	metrics.IndexerRuns.Inc()

	stats := driving.BatchStats{Generation: time.Now().UnixNano()}
	start := time.Now()
	logger.Info("Indexing %s (generation %d)", s.root, stats.Generation)

	var pending []*domain.Document
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Walking %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !domain.IsPDFPath(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.writeMu.Lock()
		doc, err := s.indexOne(ctx, path, stats.Generation)
		s.writeMu.Unlock()
		if err != nil {
			// A vanished or unreadable file must not abort the walk.
			logger.Warn("Skipping %s: %v", path, err)
			stats.Failed++
			return nil
		}
		stats.Indexed++
		if doc != nil {
			pending = append(pending, doc)
		}
		if len(pending) >= s.batchSize {
			if err := s.flush(ctx, pending); err != nil {
				return err
			}
			pending = pending[:0]
		}
		return nil
	})
	if walkErr != nil {
		return stats, fmt.Errorf("walking %s: %w", s.root, walkErr)
	}
	if err := s.flush(ctx, pending); err != nil {
		return stats, err
	}

	swept, err := s.sweep(ctx, stats.Generation)
	if err != nil {
		return stats, err
	}
	stats.Swept = swept

	metrics.FilesIndexed.Add(float64(stats.Indexed))
	metrics.RowsSwept.Add(float64(stats.Swept))
	logger.Info("Index complete: %d files, %d failed, %d swept in %v",
		stats.Indexed, stats.Failed, stats.Swept, time.Since(start))
	return stats, nil
}

// flush commits a group of rows in one transaction, then runs the
// deferred best-effort thumbnail pass for the committed rows.
func (s *IndexerService) flush(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	s.writeMu.Lock()
	err := s.store.SaveDocuments(ctx, docs)
	s.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	for _, doc := range docs {
		s.ensureThumbnail(ctx, doc)
	}
	return nil
}

// sweep deletes rows whose generation stamp does not match the current
// run and removes their thumbnails.
func (s *IndexerService) sweep(ctx context.Context, generation int64) (int, error) {
	s.writeMu.Lock()
	orphans, err := s.store.DeleteStale(ctx, generation)
	s.writeMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	for i := range orphans {
		logger.Info("Swept %s", orphans[i].Path)
		if s.thumbs != nil {
			if err := s.thumbs.Remove(orphans[i].Fingerprint); err != nil {
				logger.Warn("Removing thumbnail for swept %s: %v", orphans[i].Path, err)
			}
		}
	}
	return len(orphans), nil
}

// RemovePath deletes the document at path, if any.
func (s *IndexerService) RemovePath(ctx context.Context, path string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	path = domain.NormalizePath(path)
	doc, err := s.store.FindByPath(ctx, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup by path: %w", err)
	}

	if s.thumbs != nil {
		if err := s.thumbs.Remove(doc.Fingerprint); err != nil {
			logger.Warn("Removing thumbnail for %s: %v", path, err)
		}
	}
	if err := s.store.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("%s -> removed", path)
	return nil
}

// extract runs the configured text extractor.
func (s *IndexerService) extract(ctx context.Context, path string) (string, error) {
	if s.extractor == nil {
		return "", domain.ErrExtractionUnavailable
	}
	return s.extractor.Extract(ctx, path)
}

// ensureThumbnail generates the thumbnail if missing. Failures are
// logged and swallowed: search stays usable without a thumbnail.
func (s *IndexerService) ensureThumbnail(ctx context.Context, doc *domain.Document) {
	if s.thumbs == nil || doc == nil {
		return
	}
	if err := s.thumbs.Ensure(ctx, doc.Fingerprint, doc.Path); err != nil {
		metrics.ThumbnailFailures.Inc()
		logger.Warn("Thumbnail for %s: %v", doc.Path, err)
	}
}
