package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is owned by the identity subsystem; the ledger only reads the row and
// mutates cash_balance inside order transactions.
type User struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`

	HashedPassword string `gorm:"type:varchar(255)" json:"-"`
	AuthProvider   string `gorm:"type:varchar(20);not null;default:'local'"`

	CashBalance decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	IsActive    bool            `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
