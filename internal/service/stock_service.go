package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"stocksim/internal/cache"
	"stocksim/internal/client/yahoo"
	"stocksim/internal/config"
)

// PriceSource is what the stock service needs from the provider client.
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (*yahoo.Quote, error)
	Validate(ctx context.Context, symbol string) (bool, error)
}

// StockService fronts the market-data provider with a TTL cache. Quotes and
// symbol validations expire independently: prices go stale in minutes, symbol
// identity barely ever changes. On provider failure the error propagates;
// fallback policy belongs to the caller.
type StockService struct {
	Source PriceSource
	Logger *zap.Logger

	QuoteTTL    time.Duration
	ValidateTTL time.Duration

	quotes      *cache.TTL[yahoo.Quote]
	validations *cache.TTL[bool]
}

func NewStockService(source PriceSource, logger *zap.Logger, cfg config.MarketDataConfig) *StockService {
	quoteTTL := cfg.QuoteTTL
	if quoteTTL <= 0 {
		quoteTTL = 2 * time.Minute
	}
	validateTTL := cfg.ValidateTTL
	if validateTTL <= 0 {
		validateTTL = time.Hour
	}
	return &StockService{
		Source:      source,
		Logger:      logger,
		QuoteTTL:    quoteTTL,
		ValidateTTL: validateTTL,
		quotes:      cache.NewTTL[yahoo.Quote](),
		validations: cache.NewTTL[bool](),
	}
}

func (s *StockService) GetQuote(ctx context.Context, symbol string) (yahoo.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if q, ok := s.quotes.Get(symbol); ok {
		return q, nil
	}
	q, err := s.Source.Quote(ctx, symbol)
	if err != nil {
		return yahoo.Quote{}, err
	}
	s.quotes.Set(symbol, *q, s.QuoteTTL)
	return *q, nil
}

func (s *StockService) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if ok, hit := s.validations.Get(symbol); hit {
		return ok, nil
	}
	ok, err := s.Source.Validate(ctx, symbol)
	if err != nil {
		// Provider outage, not an invalid symbol; do not cache.
		return false, err
	}
	s.validations.Set(symbol, ok, s.ValidateTTL)
	if s.Logger != nil && !ok {
		s.Logger.Debug("symbol failed validation", zap.String("symbol", symbol))
	}
	return ok, nil
}
