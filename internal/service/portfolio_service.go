package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stocksim/internal/client/yahoo"
	"stocksim/internal/models"
	"stocksim/internal/repository"
)

// QuoteGetter is the slice of the stock service the valuation path needs.
type QuoteGetter interface {
	GetQuote(ctx context.Context, symbol string) (yahoo.Quote, error)
}

type PositionValuation struct {
	Symbol          string          `json:"symbol"`
	CompanyName     string          `json:"company_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	CurrentValue    decimal.Decimal `json:"current_value"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent decimal.Decimal `json:"gain_loss_percent"`
	// PricedAtCost marks a position valued at its average cost because the
	// live quote was unavailable.
	PricedAtCost bool `json:"priced_at_cost"`
}

type PortfolioSummary struct {
	CashBalance      decimal.Decimal     `json:"cash_balance"`
	PositionsValue   decimal.Decimal     `json:"positions_value"`
	PortfolioValue   decimal.Decimal     `json:"portfolio_value"`
	PositionsCount   int                 `json:"positions_count"`
	ActivityCount    int64               `json:"activity_count"`
	DayChange        *decimal.Decimal    `json:"day_change"`
	DayChangePercent *decimal.Decimal    `json:"day_change_percent"`
	Positions        []PositionValuation `json:"positions"`
}

type HistoryPoint struct {
	Date           string          `json:"date"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	PositionsValue decimal.Decimal `json:"positions_value"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
}

type PortfolioHistory struct {
	Period string         `json:"period"`
	Points []HistoryPoint `json:"points"`
}

// PortfolioService marks positions to market. One bad quote never fails a
// summary: the affected position falls back to cost basis.
type PortfolioService struct {
	Repo   repository.Repository
	Stocks QuoteGetter
	Logger *zap.Logger

	// PriceConcurrency caps parallel provider lookups; the provider is shared
	// and rate limited. PriceTimeout bounds each lookup so one slow symbol
	// cannot stall a whole valuation.
	PriceConcurrency int
	PriceTimeout     time.Duration

	Now func() time.Time
}

func (s *PortfolioService) GetSummary(ctx context.Context, userID uint64) (*PortfolioSummary, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}

	positions, err := s.Repo.ListPositionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	valuations := s.valuePositions(ctx, positions)

	positionsValue := decimal.Zero
	for _, v := range valuations {
		positionsValue = positionsValue.Add(v.CurrentValue)
	}
	portfolioValue := user.CashBalance.Add(positionsValue)

	activityCount, err := s.Repo.CountActivities(ctx, repository.ListActivitiesParams{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}

	summary := &PortfolioSummary{
		CashBalance:    user.CashBalance,
		PositionsValue: positionsValue,
		PortfolioValue: portfolioValue,
		PositionsCount: len(valuations),
		ActivityCount:  activityCount,
		Positions:      valuations,
	}

	// Day change compares against yesterday's snapshot. Absence means
	// "unknown", so the fields stay nil rather than claiming zero movement.
	yesterday := s.today().AddDate(0, 0, -1)
	previous, err := s.Repo.GetSnapshotByDate(ctx, userID, yesterday)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("day-change snapshot lookup failed", zap.Uint64("user_id", userID), zap.Error(err))
		}
	} else if previous != nil {
		change := portfolioValue.Sub(previous.PortfolioValue)
		summary.DayChange = &change
		percent := decimal.Zero
		if previous.PortfolioValue.IsPositive() {
			percent = change.Div(previous.PortfolioValue).Mul(decimal.NewFromInt(100))
		}
		summary.DayChangePercent = &percent
	}

	return summary, nil
}

func (s *PortfolioService) valuePositions(ctx context.Context, positions []models.Position) []PositionValuation {
	valuations := make([]PositionValuation, len(positions))
	limit := s.PriceConcurrency
	if limit <= 0 {
		limit = 10
	}
	timeout := s.PriceTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i := range positions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			p := positions[i]
			qctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			v := PositionValuation{
				Symbol:      p.Symbol,
				CompanyName: p.Symbol,
				Quantity:    p.Quantity,
				AverageCost: p.AverageCost,
			}
			quote, err := s.Stocks.GetQuote(qctx, p.Symbol)
			if err != nil {
				// Degrade to cost basis for this symbol only.
				if s.Logger != nil {
					s.Logger.Warn("quote unavailable, valuing at cost",
						zap.String("symbol", p.Symbol), zap.Error(err))
				}
				v.CurrentPrice = p.AverageCost
				v.PricedAtCost = true
			} else {
				v.CurrentPrice = quote.Price
				if quote.CompanyName != "" {
					v.CompanyName = quote.CompanyName
				}
			}

			v.CurrentValue = v.Quantity.Mul(v.CurrentPrice)
			costBasis := v.Quantity.Mul(v.AverageCost)
			v.GainLoss = v.CurrentValue.Sub(costBasis)
			if costBasis.IsPositive() {
				v.GainLossPercent = v.GainLoss.Div(costBasis).Mul(decimal.NewFromInt(100))
			}
			valuations[i] = v
		}(i)
	}
	wg.Wait()
	return valuations
}

func (s *PortfolioService) GetHistory(ctx context.Context, userID uint64, period string) (*PortfolioHistory, error) {
	params := repository.ListSnapshotsParams{UserID: userID}
	if days, ok := periodDays(period); ok {
		since := s.today().AddDate(0, 0, -days)
		params.Since = &since
	} else if period != "max" {
		period = "1mo"
		since := s.today().AddDate(0, 0, -30)
		params.Since = &since
	}

	snapshots, err := s.Repo.ListSnapshots(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	points := make([]HistoryPoint, 0, len(snapshots))
	for _, snap := range snapshots {
		points = append(points, HistoryPoint{
			Date:           time.Time(snap.SnapshotDate).Format("2006-01-02"),
			PortfolioValue: snap.PortfolioValue,
			PositionsValue: snap.PositionsValue,
			CashBalance:    snap.CashBalance,
		})
	}
	return &PortfolioHistory{Period: period, Points: points}, nil
}

func periodDays(period string) (int, bool) {
	switch period {
	case "1d":
		return 1, true
	case "5d":
		return 5, true
	case "1mo":
		return 30, true
	case "3mo":
		return 90, true
	case "6mo":
		return 180, true
	case "1y":
		return 365, true
	case "5y":
		return 365 * 5, true
	default:
		return 0, false
	}
}

func (s *PortfolioService) today() time.Time {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
