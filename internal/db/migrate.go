package db

import (
	"stocksim/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Position{},
		&models.Activity{},
		&models.PortfolioSnapshot{},
		&models.WatchlistItem{},
	)
}
