package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/repository"
)

type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeAll   Timeframe = "all"
)

func ParseTimeframe(raw string) (Timeframe, error) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(raw))) {
	case TimeframeDay:
		return TimeframeDay, nil
	case TimeframeWeek:
		return TimeframeWeek, nil
	case TimeframeMonth:
		return TimeframeMonth, nil
	case TimeframeAll, "":
		return TimeframeAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, raw)
	}
}

type LeaderboardEntry struct {
	Rank             int             `json:"rank"`
	UserID           uint64          `json:"user_id"`
	Username         string          `json:"username"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	ReturnAmount     decimal.Decimal `json:"return_amount"`
	ReturnPercentage decimal.Decimal `json:"return_percentage"`
}

// LeaderboardService ranks active users by live portfolio value against a
// timeframe baseline. A user whose valuation fails is skipped, not fatal.
type LeaderboardService struct {
	Repo      repository.Repository
	Portfolio *PortfolioService
	Logger    *zap.Logger

	// StartingBalance is the all-time baseline and the fallback when a user
	// has no snapshot on or before the target date.
	StartingBalance decimal.Decimal
	Concurrency     int

	Now func() time.Time
}

func (s *LeaderboardService) Get(ctx context.Context, timeframe Timeframe) ([]LeaderboardEntry, error) {
	users, err := s.Repo.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	// The target date is resolved once so every user is compared against the
	// same baseline day.
	target, hasTarget := TargetDate(s.today(), timeframe)

	limit := s.Concurrency
	if limit <= 0 {
		limit = 10
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	entries := make([]*LeaderboardEntry, len(users))
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			user := users[i]
			summary, err := s.Portfolio.GetSummary(ctx, user.ID)
			if err != nil {
				if s.Logger != nil {
					s.Logger.Warn("leaderboard valuation failed, skipping user",
						zap.Uint64("user_id", user.ID), zap.Error(err))
				}
				return
			}

			baseline := s.StartingBalance
			if hasTarget {
				snapshot, err := s.Repo.GetSnapshotOnOrBefore(ctx, user.ID, target)
				if err != nil {
					if s.Logger != nil {
						s.Logger.Warn("leaderboard baseline lookup failed, skipping user",
							zap.Uint64("user_id", user.ID), zap.Error(err))
					}
					return
				}
				if snapshot != nil {
					baseline = snapshot.PortfolioValue
				}
			}

			current := summary.PortfolioValue
			returnAmount := current.Sub(baseline)
			returnPercentage := decimal.Zero
			if baseline.IsPositive() {
				returnPercentage = returnAmount.Div(baseline).Mul(decimal.NewFromInt(100))
			}

			entries[i] = &LeaderboardEntry{
				UserID:           user.ID,
				Username:         user.Username,
				FirstName:        user.FirstName,
				LastName:         user.LastName,
				CurrentValue:     current,
				ReturnAmount:     returnAmount,
				ReturnPercentage: returnPercentage,
			}
		}(i)
	}
	wg.Wait()

	ranked := make([]LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			ranked = append(ranked, *e)
		}
	}
	// Descending by current value; stable sort keeps natural order for ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CurrentValue.GreaterThan(ranked[j].CurrentValue)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// TargetDate resolves the shared baseline day for a timeframe. The second
// return is false for the all-time timeframe, which uses the starting balance
// instead of a snapshot.
//
// Weeks reset at Sunday 00:00: every day of a Sun-Sat week maps to the
// Saturday before that Sunday. Months map to the last day of the previous
// calendar month.
func TargetDate(today time.Time, timeframe Timeframe) (time.Time, bool) {
	today = truncateToDay(today)
	switch timeframe {
	case TimeframeDay:
		return today.AddDate(0, 0, -1), true
	case TimeframeWeek:
		daysSinceSunday := int(today.Weekday())
		return today.AddDate(0, 0, -(daysSinceSunday + 1)), true
	case TimeframeMonth:
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return firstOfMonth.AddDate(0, 0, -1), true
	default:
		return time.Time{}, false
	}
}

func (s *LeaderboardService) today() time.Time {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	return truncateToDay(now)
}
