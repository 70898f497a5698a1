package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stocksim/internal/models"
)

// Repository is the durable ledger store: users (cash), positions, the
// append-only activity log, daily portfolio snapshots, plus the session and
// watchlist tables the API surface needs.
//
// Methods with a Tx suffix run against a transaction handle obtained via InTx;
// the ForUpdate variants take row locks so concurrent orders for the same user
// cannot interleave.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users.
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	GetUserForUpdateTx(ctx context.Context, tx *gorm.DB, id uint64) (*models.User, error)
	ListActiveUsers(ctx context.Context) ([]models.User, error)
	UpdateUserCashTx(ctx context.Context, tx *gorm.DB, id uint64, balance decimal.Decimal) error

	// Sessions.
	InsertSession(ctx context.Context, item *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	// Positions.
	GetPosition(ctx context.Context, userID uint64, symbol string) (*models.Position, error)
	GetPositionForUpdateTx(ctx context.Context, tx *gorm.DB, userID uint64, symbol string) (*models.Position, error)
	ListPositionsByUser(ctx context.Context, userID uint64) ([]models.Position, error)
	SavePositionTx(ctx context.Context, tx *gorm.DB, item *models.Position) error
	DeletePositionTx(ctx context.Context, tx *gorm.DB, id uint64) error

	// Activities. The log is append-only; there is no update or delete.
	InsertActivityTx(ctx context.Context, tx *gorm.DB, item *models.Activity) error
	ListActivities(ctx context.Context, params ListActivitiesParams) ([]models.Activity, error)
	CountActivities(ctx context.Context, params ListActivitiesParams) (int64, error)

	// Portfolio snapshots.
	UpsertPortfolioSnapshot(ctx context.Context, item *models.PortfolioSnapshot) error
	GetSnapshotByDate(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error)
	GetSnapshotOnOrBefore(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error)
	ListSnapshots(ctx context.Context, params ListSnapshotsParams) ([]models.PortfolioSnapshot, error)

	// Watchlist.
	GetWatchlistItem(ctx context.Context, userID uint64, symbol string) (*models.WatchlistItem, error)
	InsertWatchlistItem(ctx context.Context, item *models.WatchlistItem) error
	DeleteWatchlistItem(ctx context.Context, userID uint64, symbol string) (int64, error)
	ListWatchlist(ctx context.Context, userID uint64) ([]models.WatchlistItem, error)
}

type ListActivitiesParams struct {
	UserID uint64
	Limit  int
	Offset int
	From   *time.Time
	To     *time.Time
}

type ListSnapshotsParams struct {
	UserID uint64
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}
