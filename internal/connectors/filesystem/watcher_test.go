package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
)

// recordingIndexer records the calls the watcher makes.
type recordingIndexer struct {
	mu          sync.Mutex
	indexed     []string
	generations []int64
	removed     []string
}

func (r *recordingIndexer) IndexFile(_ context.Context, path string, generation int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, filepath.Base(path))
	r.generations = append(r.generations, generation)
	return nil
}

func (r *recordingIndexer) IndexTree(_ context.Context) (driving.BatchStats, error) {
	return driving.BatchStats{}, nil
}

func (r *recordingIndexer) RemovePath(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, filepath.Base(path))
	return nil
}

func (r *recordingIndexer) indexedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.indexed...)
}

func (r *recordingIndexer) removedPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

func (r *recordingIndexer) indexedGenerations() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.generations...)
}

// countOf returns how many times name appears in paths.
func countOf(paths []string, name string) int {
	n := 0
	for _, p := range paths {
		if p == name {
			n++
		}
	}
	return n
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, 3*time.Second, 20*time.Millisecond, msg)
}

// startWatcher runs a watcher with a short debounce window against a
// fresh temp root.
func startWatcher(t *testing.T, window time.Duration) (string, *recordingIndexer, *Watcher) {
	t.Helper()

	root := t.TempDir()
	indexer := &recordingIndexer{}
	watcher := NewWatcher(root, indexer, window)
	require.NoError(t, watcher.Start(context.Background()))
	t.Cleanup(func() {
		assert.NoError(t, watcher.Stop())
	})
	return root, indexer, watcher
}

func TestWatcherStartMissingRoot(t *testing.T) {
	watcher := NewWatcher(filepath.Join(t.TempDir(), "absent"), &recordingIndexer{}, time.Second)

	err := watcher.Start(context.Background())
	assert.Error(t, err)
}

func TestWatcherStartAfterStop(t *testing.T) {
	watcher := NewWatcher(t.TempDir(), &recordingIndexer{}, time.Second)
	require.NoError(t, watcher.Stop())

	assert.Error(t, watcher.Start(context.Background()))
}

func TestWatcherStopIdempotent(t *testing.T) {
	watcher := NewWatcher(t.TempDir(), &recordingIndexer{}, time.Second)
	require.NoError(t, watcher.Start(context.Background()))

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestWatcherIndexesCreatedPDF(t *testing.T) {
	root, indexer, _ := startWatcher(t, 100*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.pdf"), []byte("pdf bytes"), 0600))

	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "new.pdf") >= 1
	}, "created file was not indexed")
}

func TestWatcherIgnoresNonPDF(t *testing.T) {
	root, indexer, _ := startWatcher(t, 100*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.pdf"), []byte("pdf"), 0600))

	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "real.pdf") >= 1
	}, "pdf file was not indexed")
	assert.Zero(t, countOf(indexer.indexedPaths(), "notes.txt"))
}

func TestWatcherDebouncesCreateThenWrite(t *testing.T) {
	root, indexer, _ := startWatcher(t, time.Second)
	path := filepath.Join(root, "slow.pdf")

	// Create, then write again immediately: the producer still filling
	// the file.
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0600))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString(" rest of the content")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "slow.pdf") >= 1
	}, "file was not indexed at all")

	// Give trailing events time to arrive, then confirm the writes
	// inside the window were coalesced with the create.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, countOf(indexer.indexedPaths(), "slow.pdf"))
}

func TestWatcherIndexesLateWrite(t *testing.T) {
	root, indexer, _ := startWatcher(t, 50*time.Millisecond)
	path := filepath.Join(root, "doc.pdf")

	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "doc.pdf") >= 1
	}, "create was not indexed")

	// Well past the window: a genuine modification.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2 rewritten"), 0600))

	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "doc.pdf") >= 2
	}, "late write was not indexed")
}

func TestWatcherStampsEachEvent(t *testing.T) {
	root, indexer, _ := startWatcher(t, 50*time.Millisecond)
	path := filepath.Join(root, "doc.pdf")

	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "doc.pdf") >= 1
	}, "create was not indexed")

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2 rewritten"), 0600))
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "doc.pdf") >= 2
	}, "late write was not indexed")

	generations := indexer.indexedGenerations()
	require.GreaterOrEqual(t, len(generations), 2)
	for _, generation := range generations {
		assert.NotZero(t, generation, "every event carries a stamp")
	}
	assert.Greater(t, generations[len(generations)-1], generations[0],
		"stamps are fresh per event")
}

func TestWatcherRemovesDeletedPDF(t *testing.T) {
	root, indexer, _ := startWatcher(t, 50*time.Millisecond)
	path := filepath.Join(root, "gone.pdf")

	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0600))
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "gone.pdf") >= 1
	}, "create was not indexed")

	require.NoError(t, os.Remove(path))

	eventually(t, func() bool {
		return countOf(indexer.removedPaths(), "gone.pdf") >= 1
	}, "delete was not propagated")
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	root, indexer, _ := startWatcher(t, 50*time.Millisecond)

	subdir := filepath.Join(root, "2026")
	require.NoError(t, os.Mkdir(subdir, 0755))

	// The new directory needs a moment to join the watch.
	eventually(t, func() bool {
		require.NoError(t, os.WriteFile(filepath.Join(subdir, "inside.pdf"), []byte("pdf"), 0600))
		return countOf(indexer.indexedPaths(), "inside.pdf") >= 1
	}, "file in new directory was not indexed")
}

func TestWatcherRenameOutOfTreeDeletesRow(t *testing.T) {
	root, indexer, _ := startWatcher(t, 50*time.Millisecond)
	outside := t.TempDir()
	path := filepath.Join(root, "leaving.pdf")

	require.NoError(t, os.WriteFile(path, []byte("pdf"), 0600))
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "leaving.pdf") >= 1
	}, "create was not indexed")

	require.NoError(t, os.Rename(path, filepath.Join(outside, "leaving.pdf")))

	// The delete is deferred by one window, then fires because the old
	// path stayed empty.
	eventually(t, func() bool {
		return countOf(indexer.removedPaths(), "leaving.pdf") >= 1
	}, "rename out of tree did not delete the row")
}

func TestWatcherRenameWithinTreeIndexesDestination(t *testing.T) {
	root, indexer, _ := startWatcher(t, 50*time.Millisecond)
	oldPath := filepath.Join(root, "before.pdf")
	newPath := filepath.Join(root, "after.pdf")

	require.NoError(t, os.WriteFile(oldPath, []byte("pdf"), 0600))
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "before.pdf") >= 1
	}, "create was not indexed")

	require.NoError(t, os.Rename(oldPath, newPath))

	// The destination indexes as a new event; content resolution turns
	// it into a move against the store.
	eventually(t, func() bool {
		return countOf(indexer.indexedPaths(), "after.pdf") >= 1
	}, "rename destination was not indexed")
}
