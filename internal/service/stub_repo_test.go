package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It keeps real state for users, positions, activities, and snapshots so the
// ledger invariants can be checked end to end without a database.
type stubRepo struct {
	mu         sync.Mutex
	users      map[uint64]*models.User
	positions  map[string]*models.Position
	activities []models.Activity
	snapshots  map[string]*models.PortfolioSnapshot
	watchlist  map[string]*models.WatchlistItem
	sessions   map[string]*models.Session
	nextID     uint64

	// userErrs injects a load failure for specific users.
	userErrs map[uint64]error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:     map[uint64]*models.User{},
		positions: map[string]*models.Position{},
		snapshots: map[string]*models.PortfolioSnapshot{},
		watchlist: map[string]*models.WatchlistItem{},
		sessions:  map[string]*models.Session{},
	}
}

func (s *stubRepo) addUser(id uint64, cash decimal.Decimal) *models.User {
	u := &models.User{
		ID:          id,
		Username:    fmt.Sprintf("user%d", id),
		CashBalance: cash,
		IsActive:    true,
	}
	s.users[id] = u
	return u
}

func posKey(userID uint64, symbol string) string {
	return fmt.Sprintf("%d|%s", userID, symbol)
}

func snapKey(userID uint64, day time.Time) string {
	return fmt.Sprintf("%d|%s", userID, day.UTC().Format("2006-01-02"))
}

func (s *stubRepo) position(userID uint64, symbol string) *models.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions[posKey(userID, symbol)]
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (s *stubRepo) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.userErrs[id]; ok {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) GetUserForUpdateTx(ctx context.Context, tx *gorm.DB, id uint64) (*models.User, error) {
	return s.GetUserByID(ctx, id)
}

func (s *stubRepo) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.users))
	for id, u := range s.users {
		if u.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.users[id])
	}
	return out, nil
}

func (s *stubRepo) UpdateUserCashTx(ctx context.Context, tx *gorm.DB, id uint64, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	u.CashBalance = balance
	return nil
}

func (s *stubRepo) InsertSession(ctx context.Context, item *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[item.Token] = item
	return nil
}

func (s *stubRepo) GetSession(ctx context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) GetPosition(ctx context.Context, userID uint64, symbol string) (*models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[posKey(userID, symbol)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) GetPositionForUpdateTx(ctx context.Context, tx *gorm.DB, userID uint64, symbol string) (*models.Position, error) {
	return s.GetPosition(ctx, userID, symbol)
}

func (s *stubRepo) ListPositionsByUser(ctx context.Context, userID uint64) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Position
	for _, p := range s.positions {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *stubRepo) SavePositionTx(ctx context.Context, tx *gorm.DB, item *models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		s.nextID++
		item.ID = s.nextID
	}
	cp := *item
	s.positions[posKey(item.UserID, item.Symbol)] = &cp
	return nil
}

func (s *stubRepo) DeletePositionTx(ctx context.Context, tx *gorm.DB, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, p := range s.positions {
		if p.ID == id {
			delete(s.positions, key)
			return nil
		}
	}
	return nil
}

func (s *stubRepo) InsertActivityTx(ctx context.Context, tx *gorm.DB, item *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	s.activities = append(s.activities, *item)
	return nil
}

func (s *stubRepo) ListActivities(ctx context.Context, params repository.ListActivitiesParams) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Activity
	for _, a := range s.activities {
		if a.UserID != params.UserID {
			continue
		}
		if params.From != nil && a.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && a.CreatedAt.After(*params.To) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *stubRepo) CountActivities(ctx context.Context, params repository.ListActivitiesParams) (int64, error) {
	items, _ := s.ListActivities(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) UpsertPortfolioSnapshot(ctx context.Context, item *models.PortfolioSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := snapKey(item.UserID, time.Time(item.SnapshotDate))
	if existing, ok := s.snapshots[key]; ok {
		existing.PortfolioValue = item.PortfolioValue
		existing.PositionsValue = item.PositionsValue
		existing.CashBalance = item.CashBalance
		existing.UpdatedAt = item.UpdatedAt
		item.ID = existing.ID
		return nil
	}
	s.nextID++
	item.ID = s.nextID
	cp := *item
	s.snapshots[key] = &cp
	return nil
}

func (s *stubRepo) GetSnapshotByDate(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[snapKey(userID, day)]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (s *stubRepo) GetSnapshotOnOrBefore(ctx context.Context, userID uint64, day time.Time) (*models.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.PortfolioSnapshot
	for _, snap := range s.snapshots {
		if snap.UserID != userID {
			continue
		}
		d := time.Time(snap.SnapshotDate)
		if d.After(day) {
			continue
		}
		if best == nil || d.After(time.Time(best.SnapshotDate)) {
			best = snap
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (s *stubRepo) ListSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PortfolioSnapshot
	for _, snap := range s.snapshots {
		if snap.UserID != params.UserID {
			continue
		}
		d := time.Time(snap.SnapshotDate)
		if params.Since != nil && d.Before(*params.Since) {
			continue
		}
		if params.Until != nil && d.After(*params.Until) {
			continue
		}
		out = append(out, *snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return time.Time(out[i].SnapshotDate).Before(time.Time(out[j].SnapshotDate))
	})
	return out, nil
}

func (s *stubRepo) GetWatchlistItem(ctx context.Context, userID uint64, symbol string) (*models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.watchlist[posKey(userID, symbol)]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *stubRepo) InsertWatchlistItem(ctx context.Context, item *models.WatchlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	cp := *item
	s.watchlist[posKey(item.UserID, item.Symbol)] = &cp
	return nil
}

func (s *stubRepo) DeleteWatchlistItem(ctx context.Context, userID uint64, symbol string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := posKey(userID, symbol)
	if _, ok := s.watchlist[key]; !ok {
		return 0, nil
	}
	delete(s.watchlist, key)
	return 1, nil
}

func (s *stubRepo) ListWatchlist(ctx context.Context, userID uint64) ([]models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WatchlistItem
	for _, item := range s.watchlist {
		if item.UserID == userID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}
