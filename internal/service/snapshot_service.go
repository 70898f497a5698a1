package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

// SnapshotService persists one valuation per user per calendar day. The upsert
// is keyed on (user_id, snapshot_date), so re-running a day overwrites values
// in place and the leaderboard can rely on at most one row per day.
type SnapshotService struct {
	Repo      repository.Repository
	Portfolio *PortfolioService
	Logger    *zap.Logger
}

func (s *SnapshotService) CreateOrUpdate(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error) {
	summary, err := s.Portfolio.GetSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("value portfolio: %w", err)
	}
	return s.Record(ctx, userID, day, summary)
}

// Record upserts a snapshot from an already-computed summary. The summary
// handler uses this opportunistically so a day's point exists even before the
// batch job has run.
func (s *SnapshotService) Record(ctx context.Context, userID uint64, day time.Time, summary *PortfolioSummary) (*models.PortfolioSnapshot, error) {
	day = truncateToDay(day)
	item := &models.PortfolioSnapshot{
		UserID:         userID,
		SnapshotDate:   datatypes.Date(day),
		PortfolioValue: summary.PortfolioValue,
		PositionsValue: summary.PositionsValue,
		CashBalance:    summary.CashBalance,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.Repo.UpsertPortfolioSnapshot(ctx, item); err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}
	return item, nil
}

// RunDaily snapshots every active user. Inactive users are skipped; a failing
// user is logged and does not stop the batch.
func (s *SnapshotService) RunDaily(ctx context.Context) error {
	users, err := s.Repo.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	day := truncateToDay(time.Now().UTC())
	failures := 0
	for _, user := range users {
		if _, err := s.CreateOrUpdate(ctx, user.ID, day); err != nil {
			failures++
			if s.Logger != nil {
				s.Logger.Warn("snapshot failed",
					zap.Uint64("user_id", user.ID), zap.Error(err))
			}
			continue
		}
	}
	if s.Logger != nil {
		s.Logger.Info("daily snapshots complete",
			zap.Int("users", len(users)), zap.Int("failures", failures))
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
