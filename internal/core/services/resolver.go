package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/fingerprint"
	"github.com/custodia-labs/pdfdex/internal/logger"
)

// Resolver classifies candidate files against prior indexing state.
// Identity follows content, not location: the fingerprint lookup runs
// before the path lookup.
type Resolver struct {
	store driven.DocumentStore
}

// NewResolver creates a content-identity resolver over the store.
func NewResolver(store driven.DocumentStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve hashes the candidate file and classifies it as exactly one of
// same, moved, duplicated, new or modified. It performs no store
// mutation.
func (r *Resolver) Resolve(ctx context.Context, path string) (domain.Resolution, error) {
	path = domain.NormalizePath(path)

	hash, err := fingerprint.File(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Resolution{}, fmt.Errorf("hashing %s: %w", path, domain.ErrNotFound)
		}
		return domain.Resolution{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	res, err := r.classify(ctx, path, hash)
	if err != nil {
		return domain.Resolution{}, err
	}

	logger.Debug("Resolved %s -> %s", path, res.Action)
	return res, nil
}

func (r *Resolver) classify(ctx context.Context, path, hash string) (domain.Resolution, error) {
	doc, err := r.store.FindByFingerprint(ctx, hash)
	if err == nil {
		if doc.Path == path {
			return domain.Resolution{Document: doc, Action: domain.ActionSame, Fingerprint: hash}, nil
		}
		// Same content at a different path. The fingerprint lookup
		// returns the oldest row sharing the digest, so an already
		// indexed copy is shadowed by its original: the candidate's own
		// row, when it exists, wins over the older one.
		own, err := r.store.FindByPath(ctx, path)
		if err == nil {
			if own.Fingerprint == hash {
				return domain.Resolution{Document: own, Action: domain.ActionSame, Fingerprint: hash}, nil
			}
			return domain.Resolution{Document: own, Action: domain.ActionModified, Fingerprint: hash}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Resolution{}, fmt.Errorf("lookup by path: %w", err)
		}
		// No row at the candidate's path. If a file still sits at the
		// found row's path the candidate is a copy with its own identity;
		// if that path is empty the document moved.
		if fileExists(doc.Path) {
			return domain.Resolution{Action: domain.ActionDuplicated, Fingerprint: hash}, nil
		}
		return domain.Resolution{Document: doc, Action: domain.ActionMoved, Fingerprint: hash}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Resolution{}, fmt.Errorf("lookup by fingerprint: %w", err)
	}

	doc, err = r.store.FindByPath(ctx, path)
	if err == nil {
		return domain.Resolution{Document: doc, Action: domain.ActionModified, Fingerprint: hash}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Resolution{}, fmt.Errorf("lookup by path: %w", err)
	}

	return domain.Resolution{Action: domain.ActionNew, Fingerprint: hash}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
