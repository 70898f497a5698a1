package models

import "time"

type WatchlistItem struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID uint64 `gorm:"not null;uniqueIndex:idx_watchlist_user_symbol;index"`
	Symbol string `gorm:"type:varchar(10);not null;uniqueIndex:idx_watchlist_user_symbol"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (WatchlistItem) TableName() string {
	return "watchlist"
}
