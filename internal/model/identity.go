package model

import "time"

// Identity is a login credential held by the local identity provider.
// Its ID is what users reference as ExternalID.
type Identity struct {
	CreatedAt    time.Time `db:"created_at"`
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
}

// Session is an authenticated login, addressed by an opaque token.
type Session struct {
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Token      string    `db:"token" json:"token"`
	IdentityID string    `db:"identity_id" json:"-"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
