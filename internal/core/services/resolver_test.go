package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfdex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/fingerprint"
)

// writeFile creates a file with the given content and returns its
// normalised path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return domain.NormalizePath(path)
}

// seedDocument stores a row for the file at path.
func seedDocument(t *testing.T, store *memory.DocumentStore, id, path string) *domain.Document {
	t.Helper()
	hash, err := fingerprint.File(path)
	require.NoError(t, err)

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          id,
		Title:       domain.TitleFromPath(path),
		Content:     "indexed content",
		Fingerprint: hash,
		Path:        path,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.SaveDocument(context.Background(), doc))
	return doc
}

func TestResolveNew(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	path := writeFile(t, t.TempDir(), "fresh.pdf", "never seen before")

	res, err := resolver.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionNew, res.Action)
	assert.Nil(t, res.Document)
	assert.NotEmpty(t, res.Fingerprint)
}

func TestResolveSame(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	path := writeFile(t, t.TempDir(), "known.pdf", "already indexed")
	doc := seedDocument(t, store, "doc-1", path)

	res, err := resolver.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionSame, res.Action)
	require.NotNil(t, res.Document)
	assert.Equal(t, doc.ID, res.Document.ID)
	assert.Equal(t, doc.Fingerprint, res.Fingerprint)
}

func TestResolveMoved(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.pdf", "stable content")
	doc := seedDocument(t, store, "doc-1", oldPath)

	// Move the file; the old path is now empty.
	newPath := domain.NormalizePath(filepath.Join(dir, "new.pdf"))
	require.NoError(t, os.Rename(oldPath, newPath))

	res, err := resolver.Resolve(context.Background(), newPath)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionMoved, res.Action)
	require.NotNil(t, res.Document)
	assert.Equal(t, doc.ID, res.Document.ID)
}

func TestResolveDuplicated(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	dir := t.TempDir()
	original := writeFile(t, dir, "original.pdf", "copied content")
	seedDocument(t, store, "doc-1", original)

	// Copy: same bytes, the original still exists.
	copyPath := writeFile(t, dir, "copy.pdf", "copied content")

	res, err := resolver.Resolve(context.Background(), copyPath)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionDuplicated, res.Action)
	assert.Nil(t, res.Document, "a copy gets its own identity")
	assert.NotEmpty(t, res.Fingerprint)
}

func TestResolveUnchangedCopyIsSame(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	dir := t.TempDir()

	// The original is strictly older, so the fingerprint lookup finds
	// its row rather than the copy's.
	original := writeFile(t, dir, "original.pdf", "copied content")
	orig := seedDocument(t, store, "doc-1", original)
	orig.CreatedAt = orig.CreatedAt.Add(-time.Hour)
	require.NoError(t, store.SaveDocument(context.Background(), orig))

	copyPath := writeFile(t, dir, "copy.pdf", "copied content")
	seedDocument(t, store, "doc-2", copyPath)

	res, err := resolver.Resolve(context.Background(), copyPath)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionSame, res.Action)
	require.NotNil(t, res.Document)
	assert.Equal(t, "doc-2", res.Document.ID, "the copy's own row wins over the older row sharing the digest")
}

func TestResolveRewrittenToKnownContent(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	dir := t.TempDir()

	original := writeFile(t, dir, "original.pdf", "shared content")
	orig := seedDocument(t, store, "doc-1", original)
	orig.CreatedAt = orig.CreatedAt.Add(-time.Hour)
	require.NoError(t, store.SaveDocument(context.Background(), orig))

	other := writeFile(t, dir, "other.pdf", "its own content")
	seedDocument(t, store, "doc-2", other)

	// Rewrite the second file so its bytes now match the first's.
	writeFile(t, dir, "other.pdf", "shared content")

	res, err := resolver.Resolve(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionModified, res.Action)
	require.NotNil(t, res.Document)
	assert.Equal(t, "doc-2", res.Document.ID, "the row at the path is updated, not duplicated")
	assert.Equal(t, orig.Fingerprint, res.Fingerprint)
}

func TestResolveModified(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", "version one")
	doc := seedDocument(t, store, "doc-1", path)

	writeFile(t, dir, "doc.pdf", "version two, rewritten")

	res, err := resolver.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionModified, res.Action)
	require.NotNil(t, res.Document)
	assert.Equal(t, doc.ID, res.Document.ID)
	assert.NotEqual(t, doc.Fingerprint, res.Fingerprint, "resolution carries the new fingerprint")
}

func TestResolveMissingFile(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)

	_, err := resolver.Resolve(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveDoesNotMutateStore(t *testing.T) {
	store := memory.NewDocumentStore()
	resolver := NewResolver(store)
	path := writeFile(t, t.TempDir(), "fresh.pdf", "content")

	_, err := resolver.Resolve(context.Background(), path)
	require.NoError(t, err)

	assert.Zero(t, store.Len(), "resolution must not write")
}
