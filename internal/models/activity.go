package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Activity is the append-only trade log. Rows are never updated or deleted.
// PositionID is nil when the trade closed the position (the row is gone).
type Activity struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement"`
	UserID     uint64  `gorm:"not null;index"`
	PositionID *uint64 `gorm:"index"`
	Symbol     string  `gorm:"type:varchar(10);not null;index"`
	Side       string  `gorm:"type:varchar(4);not null"`

	Quantity    decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(20,4);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Activity) TableName() string {
	return "activities"
}
