package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/pdfdex/internal/core/ports/driving"
	"github.com/custodia-labs/pdfdex/internal/logger"
)

// Scheduler triggers periodic full reindex runs while the process is
// watching. It is a pure core service with no external control API.
type Scheduler struct {
	interval time.Duration
	indexer  driving.Indexer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. A non-positive interval disables it.
func NewScheduler(interval time.Duration, indexer driving.Indexer) *Scheduler {
	return &Scheduler{interval: interval, indexer: indexer}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("Periodic reindex every %v", s.interval)
	for {
		select {
		case <-ticker.C:
			if _, err := s.indexer.IndexTree(ctx); err != nil {
				logger.Warn("Periodic reindex: %v", err)
			}
		case <-s.stopCh:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for the loop to
// exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}
