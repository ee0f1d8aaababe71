package driving

import "context"

// BatchStats summarises a batch indexing run.
type BatchStats struct {
	// Generation is the shared stamp applied to every row touched by
	// this run.
	Generation int64

	// Indexed is the number of files processed successfully.
	Indexed int

	// Failed is the number of files skipped because of per-file errors.
	Failed int

	// Swept is the number of orphaned rows deleted after the walk.
	Swept int
}

// Indexer keeps the document store consistent with the filesystem.
type Indexer interface {
	// IndexFile resolves and indexes a single file. A non-zero
	// generation stamps the touched row for sweep bookkeeping; watcher
	// driven calls pass a fresh per-event stamp.
	IndexFile(ctx context.Context, path string, generation int64) error

	// IndexTree walks the configured root, indexes every matching file
	// under one shared generation, and sweeps rows not confirmed by the
	// walk.
	IndexTree(ctx context.Context) (BatchStats, error)

	// RemovePath deletes the document at the given path, if any,
	// together with its derived artefacts.
	RemovePath(ctx context.Context, path string) error
}
