package service

import (
	"context"
	"fmt"
	"strings"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

type SymbolValidator interface {
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)
}

type WatchlistService struct {
	Repo   repository.Repository
	Stocks SymbolValidator
}

func (s *WatchlistService) Add(ctx context.Context, userID uint64, symbol string) (*models.WatchlistItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidSymbol)
	}

	ok, err := s.Stocks.ValidateSymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", symbol, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}

	existing, err := s.Repo.GetWatchlistItem(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateWatchlist, symbol)
	}

	item := &models.WatchlistItem{UserID: userID, Symbol: symbol}
	if err := s.Repo.InsertWatchlistItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *WatchlistService) Remove(ctx context.Context, userID uint64, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	affected, err := s.Repo.DeleteWatchlistItem(ctx, userID, symbol)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s not in watchlist", ErrInvalidSymbol, symbol)
	}
	return nil
}

func (s *WatchlistService) List(ctx context.Context, userID uint64) ([]models.WatchlistItem, error) {
	return s.Repo.ListWatchlist(ctx, userID)
}
