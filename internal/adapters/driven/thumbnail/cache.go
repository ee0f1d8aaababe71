// Package thumbnail caches a first-page preview image per document
// fingerprint. Thumbnails are generated best-effort: the index never
// depends on one existing.
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/custodia-labs/pdfdex/internal/core/ports/driven"
	"github.com/custodia-labs/pdfdex/internal/metrics"
)

// Ensure Cache implements the interface.
var _ driven.ThumbnailStore = (*Cache)(nil)

// Thumbnails fit inside a 200x200 box, preserving aspect ratio.
const (
	thumbWidth  = 200
	thumbHeight = 200
)

// Cache stores one PNG per fingerprint in a flat directory. Keying by
// fingerprint means duplicated files share a rendered image and a
// moved file keeps its thumbnail without rework.
type Cache struct {
	dir      string
	renderer driven.PageRenderer
}

// NewCache creates the cache directory if needed. renderer may be nil,
// in which case Ensure only reports cache hits.
func NewCache(dir string, renderer driven.PageRenderer) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating thumbnail dir: %w", err)
	}
	return &Cache{dir: dir, renderer: renderer}, nil
}

// Path returns the cache location for the fingerprint. The file may
// not exist.
func (c *Cache) Path(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".png")
}

// Ensure renders and stores the thumbnail if it is not already cached.
// Concurrent calls for one fingerprint race harmlessly: both render
// the same source bytes, so the last writer wins with identical
// content.
func (c *Cache) Ensure(ctx context.Context, fingerprint, path string) error {
	target := c.Path(fingerprint)
	if _, err := os.Stat(target); err == nil {
		return nil
	}
	if c.renderer == nil {
		return nil
	}

	page, err := c.renderer.RenderFirstPage(ctx, path)
	if err != nil {
		return fmt.Errorf("rendering first page of %s: %w", path, err)
	}

	thumb := imaging.Fit(page, thumbWidth, thumbHeight, imaging.Lanczos)
	if err := imaging.Save(thumb, target); err != nil {
		return fmt.Errorf("saving thumbnail %s: %w", target, err)
	}

	metrics.ThumbnailsGenerated.Inc()
	return nil
}

// Remove deletes the cached thumbnail, if any.
func (c *Cache) Remove(fingerprint string) error {
	err := os.Remove(c.Path(fingerprint))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
