package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jukuhub/juku-api/internal/store"
)

// RetentionSweeper deletes quota records older than the retention window on a
// fixed schedule. Each sweep is one batched delete keyed on the usage date,
// so repeating a sweep over the same window removes nothing further.
type RetentionSweeper struct {
	quotaStore    store.QuotaStore
	retentionDays int
	interval      time.Duration
	logger        *slog.Logger
	cancelFunc    context.CancelFunc
	ctx           context.Context
	wg            sync.WaitGroup
	timeFunc      func() time.Time // Injectable for testing
}

// NewRetentionSweeper creates a sweeper that keeps retentionDays days of
// quota records and runs every interval.
func NewRetentionSweeper(
	quotaStore store.QuotaStore,
	retentionDays int,
	interval time.Duration,
	logger *slog.Logger,
) *RetentionSweeper {
	if quotaStore == nil {
		panic("quotaStore cannot be nil")
	}
	if retentionDays <= 0 {
		panic("retentionDays must be positive")
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RetentionSweeper{
		quotaStore:    quotaStore,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger.With("component", "retention_sweeper"),
		ctx:           ctx,
		cancelFunc:    cancel,
		timeFunc:      time.Now,
	}
}

// Start launches the sweep loop. One sweep runs immediately so a service that
// restarts rarely still converges on the retention window.
func (s *RetentionSweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop shuts the sweeper down and waits for an in-flight sweep to finish.
func (s *RetentionSweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *RetentionSweeper) run() {
	defer s.wg.Done()

	s.Sweep(s.ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.ctx)
		}
	}
}

// Sweep deletes quota records older than the retention window. Failures are
// logged and swallowed; the next scheduled sweep covers the same ground.
func (s *RetentionSweeper) Sweep(ctx context.Context) {
	cutoff := s.timeFunc().UTC().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.quotaStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("retention sweep failed",
			"error", err,
			"cutoff", cutoff)
		return
	}

	s.logger.Info("retention sweep completed",
		"deleted", deleted,
		"cutoff", cutoff,
		"retention_days", s.retentionDays)
}
