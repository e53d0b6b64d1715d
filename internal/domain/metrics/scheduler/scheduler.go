package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HistoryPruner defines the interface for pruning aged scrape history
type HistoryPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler handles periodic pruning of scrape history past its retention
type Scheduler struct {
	pruner    HistoryPruner
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// New creates a new retention scheduler
func New(pruner HistoryPruner, interval, retention time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pruner:    pruner,
		interval:  interval,
		retention: retention,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("retention scheduler started",
		"interval", s.interval,
		"retention", s.retention,
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("retention scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.prune(ctx)

	for {
		select {
		case <-ticker.C:
			s.prune(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// prune deletes history records older than the retention window
func (s *Scheduler) prune(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)

	deleted, err := s.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune scrape history", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("pruned scrape history", "deleted", deleted)
	}
}
