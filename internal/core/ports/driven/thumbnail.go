package driven

import (
	"context"
	"image"
)

// PageRenderer renders the first page of a PDF to an image.
// It is an external capability; internals are opaque to the core.
type PageRenderer interface {
	RenderFirstPage(ctx context.Context, path string) (image.Image, error)
}

// ThumbnailStore caches one thumbnail image per content fingerprint.
// All operations are best-effort from the pipeline's point of view: a
// failure never rolls back a document mutation, and a missing
// thumbnail is a valid state.
type ThumbnailStore interface {
	// Ensure renders and stores the thumbnail for the fingerprint if it
	// is not already cached. Concurrent calls for one fingerprint are
	// safe: the file contents are identical by construction.
	Ensure(ctx context.Context, fingerprint, path string) error

	// Remove deletes the cached thumbnail, if any.
	Remove(fingerprint string) error

	// Path returns the cache location for the fingerprint. The file may
	// not exist.
	Path(fingerprint string) string
}
