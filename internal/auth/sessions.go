package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a login stays valid without configuration.
const DefaultSessionTTL = 24 * time.Hour

// Sessions issues and validates opaque login tokens.
type Sessions struct {
	store service.Storage
	now   func() time.Time
	ttl   time.Duration
}

// NewSessions creates a session manager. A non-positive ttl uses DefaultSessionTTL.
func NewSessions(store service.Storage, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		store: store,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a session for identityID.
func (s *Sessions) Issue(ctx context.Context, identityID string) (*model.Session, error) {
	now := s.now()
	session := &model.Session{
		Token:      uuid.NewString(),
		IdentityID: identityID,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Validate returns the live session for token. Missing, unknown and expired
// tokens all fail with common.ErrUnauthorized.
func (s *Sessions) Validate(ctx context.Context, token string) (*model.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, common.ErrUnauthorized
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Expired(s.now()) {
		_ = s.store.DeleteSession(ctx, token)
		return nil, fmt.Errorf("%w: session expired", common.ErrUnauthorized)
	}
	return session, nil
}

// Revoke ends a session.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// Purge removes expired sessions and reports how many were dropped.
func (s *Sessions) Purge(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}
