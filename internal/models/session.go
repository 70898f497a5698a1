package models

import "time"

// Session maps an opaque bearer token to a user. Issuance belongs to the
// identity subsystem; the ledger API only resolves tokens.
type Session struct {
	Token  string `gorm:"type:varchar(36);primaryKey"`
	UserID uint64 `gorm:"not null;index"`

	ExpiresAt time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
