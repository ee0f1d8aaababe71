package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfdex/internal/core/domain"
	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
	"github.com/custodia-labs/pdfdex/internal/logger"
	"github.com/custodia-labs/pdfdex/internal/metrics"
)

// defaultWindow is the create/write debounce window.
const defaultWindow = 2 * time.Second

// Watcher keeps the index in step with a live directory tree. Events
// are handled by a single dispatch goroutine, so events for one path
// are applied in arrival order.
type Watcher struct {
	root    string
	indexer driving.Indexer
	window  time.Duration

	fsw      *fsnotify.Watcher
	debounce *tracker

	// pendingRenames maps old paths of rename events to the time the
	// event arrived. The row delete is deferred by one window so that a
	// create at the new location can re-home the row first.
	pendingRenames map[string]time.Time

	errCh   chan error
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	stopped bool
}

// NewWatcher creates a watcher for the tree rooted at root.
// window <= 0 selects the default of two seconds.
func NewWatcher(root string, indexer driving.Indexer, window time.Duration) *Watcher {
	if window <= 0 {
		window = defaultWindow
	}
	return &Watcher{
		root:           root,
		indexer:        indexer,
		window:         window,
		debounce:       newTracker(window),
		pendingRenames: make(map[string]time.Time),
		errCh:          make(chan error, 8),
		stopCh:         make(chan struct{}),
	}
}

// Start subscribes the root tree and begins dispatching events. It
// fails fast when the root cannot be watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return domain.ErrWatcherClosed
	}
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.addTree(fsw, w.root); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watching %s: %w", w.root, err)
	}

	w.fsw = fsw
	w.started = true
	w.wg.Add(1)
	go w.dispatch(ctx)

	logger.Info("Watching %s", w.root)
	return nil
}

// Stop signals the dispatch goroutine, closes the underlying watcher
// and waits for dispatch to drain.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if !started {
		return nil
	}

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// Errors exposes watcher-level failures. The channel is buffered;
// when nobody listens, errors are logged and dropped.
func (w *Watcher) Errors() <-chan error {
	return w.errCh
}

// addTree subscribes dir and every directory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
}

// dispatch is the single event loop. The eviction ticker doubles as
// the deadline check for deferred rename deletes.
func (w *Watcher) dispatch(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.window)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			metrics.WatcherErrors.Inc()
			logger.Warn("Watcher error: %v", err)
			select {
			case w.errCh <- err:
			default:
			}

		case now := <-ticker.C:
			w.debounce.evict(now)
			w.flushRenames(ctx, now)
		}
	}
}

// handleEvent classifies one fsnotify event. Indexing calls carry a
// fresh per-event stamp; only batch runs sweep, so single-event stamps
// never orphan rows. Failures on one event are logged and do not stop
// the watcher.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name
	now := time.Now()

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			// Created and gone already; nothing to index.
			return
		}
		if info.IsDir() {
			// New directories join the watch so files created inside
			// them are seen.
			if err := w.addTree(w.fsw, path); err != nil {
				logger.Warn("Watching new directory %s: %v", path, err)
			}
			return
		}
		if !domain.IsPDFPath(path) {
			return
		}
		metrics.WatcherEvents.WithLabelValues("create").Inc()
		logger.Debug("create %s", path)
		w.debounce.recordCreate(path, now)
		if err := w.indexer.IndexFile(ctx, path, now.UnixNano()); err != nil {
			logger.Warn("Indexing created %s: %v", path, err)
		}

	case event.Has(fsnotify.Write):
		if !domain.IsPDFPath(path) {
			return
		}
		if w.debounce.suppress(path, now) {
			metrics.WatcherSuppressed.Inc()
			logger.Debug("write %s suppressed (just created)", path)
			return
		}
		metrics.WatcherEvents.WithLabelValues("write").Inc()
		logger.Debug("write %s", path)
		if err := w.indexer.IndexFile(ctx, path, now.UnixNano()); err != nil {
			logger.Warn("Indexing modified %s: %v", path, err)
		}

	case event.Has(fsnotify.Remove):
		if !domain.IsPDFPath(path) {
			return
		}
		metrics.WatcherEvents.WithLabelValues("remove").Inc()
		logger.Debug("remove %s", path)
		if err := w.indexer.RemovePath(ctx, path); err != nil {
			logger.Warn("Removing %s: %v", path, err)
		}

	case event.Has(fsnotify.Rename):
		if !domain.IsPDFPath(path) {
			return
		}
		// The OS reports a rename as Rename(old) + Create(new). Defer
		// the delete so the create can re-home the row as a move.
		metrics.WatcherEvents.WithLabelValues("rename").Inc()
		logger.Debug("rename %s (delete deferred)", path)
		w.pendingRenames[path] = now
	}
}

// flushRenames deletes rows for rename sources whose deadline passed
// and whose file never reappeared on disk. pendingRenames is only
// touched from the dispatch goroutine.
func (w *Watcher) flushRenames(ctx context.Context, now time.Time) {
	for path, seen := range w.pendingRenames {
		if now.Sub(seen) < w.window {
			continue
		}
		delete(w.pendingRenames, path)

		if _, err := os.Stat(path); err == nil {
			// Something re-appeared at the old path; the next create or
			// write event owns it.
			continue
		}
		if err := w.indexer.RemovePath(ctx, path); err != nil {
			logger.Warn("Removing renamed %s: %v", path, err)
		}
	}
}
