package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jukuhub/juku-api/internal/store"
)

// UsageStats is the aggregated view of the usage audit log over a date range.
type UsageStats struct {
	RangeDays  int            `json:"range_days"`
	Total      int            `json:"total"`
	ByUser     map[string]int `json:"by_user"`
	ByFunction map[string]int `json:"by_function"`
	ByDate     map[string]int `json:"by_date"`
}

// StatsService assembles usage statistics for the admin dashboard.
type StatsService interface {
	// UsageStats aggregates billed calls over the trailing rangeDays days,
	// current UTC day inclusive.
	UsageStats(ctx context.Context, rangeDays int) (*UsageStats, error)
}

// StatsServiceImpl implements the StatsService interface.
type StatsServiceImpl struct {
	usageStore store.UsageLogStore
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing
}

var _ StatsService = (*StatsServiceImpl)(nil)

// NewStatsService creates a new StatsService.
func NewStatsService(usageStore store.UsageLogStore, logger *slog.Logger) *StatsServiceImpl {
	if usageStore == nil {
		panic("usageStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsServiceImpl{
		usageStore: usageStore,
		logger:     logger.With("component", "stats_service"),
		timeFunc:   time.Now,
	}
}

// UsageStats implements StatsService.UsageStats.
func (s *StatsServiceImpl) UsageStats(ctx context.Context, rangeDays int) (*UsageStats, error) {
	if rangeDays <= 0 {
		return nil, fmt.Errorf("%w: range must be positive", store.ErrInvalidEntity)
	}

	since := s.timeFunc().UTC().AddDate(0, 0, -(rangeDays - 1))

	rollups, err := s.usageStore.RollupSince(ctx, since)
	if err != nil {
		s.logger.Error("failed to roll up usage log",
			"error", err,
			"range_days", rangeDays)
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	stats := &UsageStats{
		RangeDays:  rangeDays,
		ByUser:     make(map[string]int),
		ByFunction: make(map[string]int),
		ByDate:     make(map[string]int),
	}

	for _, r := range rollups {
		stats.Total += r.Calls
		stats.ByUser[r.UserID.String()] += r.Calls
		stats.ByFunction[r.Operation] += r.Calls
		stats.ByDate[r.DateBucket.Format("2006-01-02")] += r.Calls
	}

	return stats, nil
}
