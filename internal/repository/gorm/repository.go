package gormrepository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- users -------------------------------------------------------------------

func (s *Store) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetUserForUpdateTx locks the user row for the remainder of the transaction.
// Per-user order serialization hangs off this lock.
func (s *Store) GetUserForUpdateTx(ctx context.Context, tx *gorm.DB, id uint64) (*models.User, error) {
	if tx == nil || id == 0 {
		return nil, nil
	}
	var item models.User
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.User
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateUserCashTx(ctx context.Context, tx *gorm.DB, id uint64, balance decimal.Decimal) error {
	if tx == nil || id == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("cash_balance", balance).Error
}

// --- sessions ----------------------------------------------------------------

func (s *Store) InsertSession(ctx context.Context, item *models.Session) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	var item models.Session
	err := s.db.WithContext(ctx).Model(&models.Session{}).Where("token = ?", token).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		before = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// --- positions ---------------------------------------------------------------

func (s *Store) GetPosition(ctx context.Context, userID uint64, symbol string) (*models.Position, error) {
	if s == nil || s.db == nil || userID == 0 {
		return nil, nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}
	var item models.Position
	err := s.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPositionForUpdateTx(ctx context.Context, tx *gorm.DB, userID uint64, symbol string) (*models.Position, error) {
	if tx == nil || userID == 0 {
		return nil, nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}
	var item models.Position
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPositionsByUser(ctx context.Context, userID uint64) ([]models.Position, error) {
	if s == nil || s.db == nil || userID == 0 {
		return nil, nil
	}
	var items []models.Position
	if err := s.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("user_id = ?", userID).
		Order("symbol asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SavePositionTx(ctx context.Context, tx *gorm.DB, item *models.Position) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Save(item).Error
}

func (s *Store) DeletePositionTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	if tx == nil || id == 0 {
		return nil
	}
	return tx.WithContext(ctx).Delete(&models.Position{}, id).Error
}

// --- activities --------------------------------------------------------------

func (s *Store) InsertActivityTx(ctx context.Context, tx *gorm.DB, item *models.Activity) error {
	if tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) ListActivities(ctx context.Context, params repository.ListActivitiesParams) ([]models.Activity, error) {
	if s == nil || s.db == nil || params.UserID == 0 {
		return nil, nil
	}
	query := s.activitiesQuery(ctx, params)
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Activity
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountActivities(ctx context.Context, params repository.ListActivitiesParams) (int64, error) {
	if s == nil || s.db == nil || params.UserID == 0 {
		return 0, nil
	}
	var total int64
	if err := s.activitiesQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) activitiesQuery(ctx context.Context, params repository.ListActivitiesParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Activity{}).Where("user_id = ?", params.UserID)
	if params.From != nil && !params.From.IsZero() {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil && !params.To.IsZero() {
		query = query.Where("created_at < ?", *params.To)
	}
	return query
}

// --- portfolio snapshots -----------------------------------------------------

func (s *Store) UpsertPortfolioSnapshot(ctx context.Context, item *models.PortfolioSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	// The conflict target is the (user_id, snapshot_date) unique index, so a
	// re-snapshot of the same day overwrites values instead of adding a row.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"portfolio_value", "positions_value", "cash_balance", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) GetSnapshotByDate(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error) {
	if s == nil || s.db == nil || userID == 0 {
		return nil, nil
	}
	var item models.PortfolioSnapshot
	err := s.db.WithContext(ctx).
		Model(&models.PortfolioSnapshot{}).
		Where("user_id = ? AND snapshot_date = ?", userID, datatypes.Date(day)).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetSnapshotOnOrBefore is the fuzzy baseline lookup: the newest snapshot at
// or preceding day, or nil when the user has none that old.
func (s *Store) GetSnapshotOnOrBefore(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error) {
	if s == nil || s.db == nil || userID == 0 {
		return nil, nil
	}
	var item models.PortfolioSnapshot
	err := s.db.WithContext(ctx).
		Model(&models.PortfolioSnapshot{}).
		Where("user_id = ? AND snapshot_date <= ?", userID, datatypes.Date(day)).
		Order("snapshot_date desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.PortfolioSnapshot, error) {
	if s == nil || s.db == nil || params.UserID == 0 {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.PortfolioSnapshot{}).
		Where("user_id = ?", params.UserID)
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("snapshot_date >= ?", datatypes.Date(*params.Since))
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("snapshot_date <= ?", datatypes.Date(*params.Until))
	}
	limit := normalizeLimit(params.Limit, 366)
	offset := normalizeOffset(params.Offset)
	var items []models.PortfolioSnapshot
	if err := query.Order("snapshot_date asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- watchlist ---------------------------------------------------------------

func (s *Store) GetWatchlistItem(ctx context.Context, userID uint64, symbol string) (*models.WatchlistItem, error) {
	if s == nil || s.db == nil || userID == 0 {
		return nil, nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}
	var item models.WatchlistItem
	err := s.db.WithContext(ctx).
		Model(&models.WatchlistItem{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertWatchlistItem(ctx context.Context, item *models.WatchlistItem) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) DeleteWatchlistItem(ctx context.Context, userID uint64, symbol string) (int64, error) {
	if s == nil || s.db == nil || userID == 0 {
		return 0, nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Delete(&models.WatchlistItem{})
	return res.RowsAffected, res.Error
}

func (s *Store) ListWatchlist(ctx context.Context, userID uint64) ([]models.WatchlistItem, error) {
	if s == nil || s.db == nil || userID == 0 {
		return nil, nil
	}
	var items []models.WatchlistItem
	if err := s.db.WithContext(ctx).
		Model(&models.WatchlistItem{}).
		Where("user_id = ?", userID).
		Order("symbol asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers -----------------------------------------------------------------

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
