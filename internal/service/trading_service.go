package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

// OrderRequest is a validated-at-the-edge order. ExecutionPrice is the quote
// fetched immediately before calling; there is no order book, so the quoted
// price is the fill price.
type OrderRequest struct {
	Symbol         string
	Side           string
	Quantity       decimal.Decimal
	ExecutionPrice decimal.Decimal
}

type TradeConfirmation struct {
	ActivityID    uint64          `json:"activity_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	RemainingCash decimal.Decimal `json:"remaining_cash"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TradingService executes orders against the ledger. Every order runs in a
// single transaction holding FOR UPDATE locks on the user row and the position
// row, so two concurrent orders for the same user cannot both read the same
// starting balance or quantity.
type TradingService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (s *TradingService) ExecuteOrder(ctx context.Context, userID uint64, req OrderRequest) (*TradeConfirmation, error) {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Side = strings.ToLower(strings.TrimSpace(req.Side))
	if err := validateOrder(req); err != nil {
		return nil, err
	}

	totalAmount := req.Quantity.Mul(req.ExecutionPrice)

	var confirmation *TradeConfirmation
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		user, err := s.Repo.GetUserForUpdateTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("lock user %d: %w", userID, err)
		}
		if user == nil || !user.IsActive {
			return fmt.Errorf("%w: %d", ErrUserNotFound, userID)
		}

		position, err := s.Repo.GetPositionForUpdateTx(ctx, tx, userID, req.Symbol)
		if err != nil {
			return fmt.Errorf("lock position %s: %w", req.Symbol, err)
		}

		var newCash decimal.Decimal
		var positionID *uint64
		switch req.Side {
		case models.SideBuy:
			newCash, positionID, err = s.applyBuy(ctx, tx, user, position, req, totalAmount)
		case models.SideSell:
			newCash, positionID, err = s.applySell(ctx, tx, user, position, req, totalAmount)
		}
		if err != nil {
			return err
		}

		activity := &models.Activity{
			UserID:      userID,
			PositionID:  positionID,
			Symbol:      req.Symbol,
			Side:        req.Side,
			Quantity:    req.Quantity,
			Price:       req.ExecutionPrice,
			TotalAmount: totalAmount,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.Repo.InsertActivityTx(ctx, tx, activity); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}

		confirmation = &TradeConfirmation{
			ActivityID:    activity.ID,
			Symbol:        req.Symbol,
			Side:          req.Side,
			Quantity:      req.Quantity,
			Price:         req.ExecutionPrice,
			TotalAmount:   totalAmount,
			RemainingCash: newCash,
			CreatedAt:     activity.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("order executed",
			zap.Uint64("user_id", userID),
			zap.String("symbol", req.Symbol),
			zap.String("side", req.Side),
			zap.String("quantity", req.Quantity.String()),
			zap.String("price", req.ExecutionPrice.String()),
		)
	}
	return confirmation, nil
}

func (s *TradingService) applyBuy(ctx context.Context, tx *gorm.DB, user *models.User, position *models.Position, req OrderRequest, totalAmount decimal.Decimal) (decimal.Decimal, *uint64, error) {
	if user.CashBalance.LessThan(totalAmount) {
		return decimal.Zero, nil, fmt.Errorf("%w: required %s, available %s",
			ErrInsufficientFunds, totalAmount.StringFixed(2), user.CashBalance.StringFixed(2))
	}

	if position == nil {
		position = &models.Position{
			UserID:      user.ID,
			Symbol:      req.Symbol,
			Quantity:    req.Quantity,
			AverageCost: req.ExecutionPrice,
		}
	} else {
		// Weighted-average cost basis: the running average absorbs the new
		// lot; lots are never tracked individually.
		newQuantity := position.Quantity.Add(req.Quantity)
		position.AverageCost = position.Quantity.Mul(position.AverageCost).Add(totalAmount).Div(newQuantity)
		position.Quantity = newQuantity
	}
	if err := s.Repo.SavePositionTx(ctx, tx, position); err != nil {
		return decimal.Zero, nil, fmt.Errorf("save position: %w", err)
	}

	newCash := user.CashBalance.Sub(totalAmount)
	if err := s.Repo.UpdateUserCashTx(ctx, tx, user.ID, newCash); err != nil {
		return decimal.Zero, nil, fmt.Errorf("debit cash: %w", err)
	}
	return newCash, &position.ID, nil
}

func (s *TradingService) applySell(ctx context.Context, tx *gorm.DB, user *models.User, position *models.Position, req OrderRequest, totalAmount decimal.Decimal) (decimal.Decimal, *uint64, error) {
	if position == nil {
		return decimal.Zero, nil, fmt.Errorf("%w: no holding in %s", ErrNoPosition, req.Symbol)
	}
	if position.Quantity.LessThan(req.Quantity) {
		return decimal.Zero, nil, fmt.Errorf("%w: required %s, available %s",
			ErrInsufficientShares, req.Quantity.String(), position.Quantity.String())
	}

	// Average cost is untouched on a sell; realized P&L stays implicit.
	newQuantity := position.Quantity.Sub(req.Quantity)
	var positionID *uint64
	if newQuantity.IsZero() {
		if err := s.Repo.DeletePositionTx(ctx, tx, position.ID); err != nil {
			return decimal.Zero, nil, fmt.Errorf("close position: %w", err)
		}
	} else {
		position.Quantity = newQuantity
		if err := s.Repo.SavePositionTx(ctx, tx, position); err != nil {
			return decimal.Zero, nil, fmt.Errorf("save position: %w", err)
		}
		positionID = &position.ID
	}

	newCash := user.CashBalance.Add(totalAmount)
	if err := s.Repo.UpdateUserCashTx(ctx, tx, user.ID, newCash); err != nil {
		return decimal.Zero, nil, fmt.Errorf("credit cash: %w", err)
	}
	return newCash, positionID, nil
}

func validateOrder(req OrderRequest) error {
	if req.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidOrder)
	}
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, req.Side)
	}
	if !req.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if !req.ExecutionPrice.IsPositive() {
		return fmt.Errorf("%w: execution price must be positive", ErrInvalidOrder)
	}
	return nil
}
