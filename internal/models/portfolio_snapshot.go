package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PortfolioSnapshot is one valuation point per user per calendar day.
// The (user_id, snapshot_date) unique index backs the upsert; re-snapshotting
// the same day overwrites the value columns in place.
type PortfolioSnapshot struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	UserID       uint64         `gorm:"not null;uniqueIndex:idx_snapshots_user_date;index"`
	SnapshotDate datatypes.Date `gorm:"not null;uniqueIndex:idx_snapshots_user_date"`

	PortfolioValue decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	PositionsValue decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CashBalance    decimal.Decimal `gorm:"type:numeric(20,4);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (PortfolioSnapshot) TableName() string {
	return "portfolio_snapshots"
}
