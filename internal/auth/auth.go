// Package auth resolves bearer sessions to users. Login and password handling
// belong to the identity subsystem; this package only issues opaque tokens on
// its behalf and checks them on the way in.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stocksim/internal/models"
	"stocksim/internal/repository"
)

type Service struct {
	Repo       repository.Repository
	SessionTTL time.Duration
}

func (s *Service) Issue(ctx context.Context, userID uint64) (*models.Session, error) {
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.Repo.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.Repo.DeleteSession(ctx, token)
}

func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.Repo.DeleteExpiredSessions(ctx, time.Now().UTC())
}
