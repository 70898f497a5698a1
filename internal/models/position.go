package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position holds a user's stake in one symbol. A row exists only while
// quantity > 0; selling down to zero deletes the row instead of keeping it.
type Position struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;uniqueIndex:idx_positions_user_symbol;index"`
	Symbol string `gorm:"type:varchar(10);not null;uniqueIndex:idx_positions_user_symbol"`

	Quantity decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	// AverageCost is the quantity-weighted mean entry price. Recomputed on
	// every buy, never on a sell.
	AverageCost decimal.Decimal `gorm:"type:numeric(20,4);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}
