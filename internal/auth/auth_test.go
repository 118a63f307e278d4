package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newProvider(t *testing.T) (*LocalProvider, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	p := NewLocalProvider(db.Storage, Options{MinPasswordLength: 6, BcryptCost: bcrypt.MinCost}, testutil.DiscardLogger())
	return p, db
}

func TestLocalProvider_CreateAndAuthenticate(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, "  Ana@Example.com ", "segredo1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := p.Authenticate(ctx, "ana@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = p.Authenticate(ctx, "ana@example.com", "errada")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "nobody@example.com", "segredo1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLocalProvider_CreateValidation(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	tests := []struct {
		wantErr  error
		name     string
		email    string
		password string
	}{
		{name: "missing email", password: "segredo1", wantErr: common.ErrMissingField},
		{name: "missing password", email: "a@example.com", wantErr: common.ErrMissingField},
		{name: "malformed email", email: "not-an-email", password: "segredo1", wantErr: common.ErrInvalidInput},
		{name: "short password", email: "a@example.com", password: "123", wantErr: common.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.CreateIdentity(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLocalProvider_DuplicateEmail(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	_, err := p.CreateIdentity(ctx, "dup@example.com", "segredo1")
	require.NoError(t, err)
	_, err = p.CreateIdentity(ctx, "DUP@example.com", "segredo2")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestLocalProvider_UpdatePasswordRevokesSessions(t *testing.T) {
	p, db := newProvider(t)
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, "bia@example.com", "segredo1")
	require.NoError(t, err)

	sessions := NewSessions(db.Storage, time.Hour)
	session, err := sessions.Issue(ctx, id)
	require.NoError(t, err)

	assert.ErrorIs(t, p.UpdatePassword(ctx, id, "123"), common.ErrInvalidInput)
	require.NoError(t, p.UpdatePassword(ctx, id, "novasenha"))

	_, err = p.Authenticate(ctx, "bia@example.com", "segredo1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = p.Authenticate(ctx, "bia@example.com", "novasenha")
	require.NoError(t, err)

	_, err = sessions.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	assert.ErrorIs(t, p.UpdatePassword(ctx, "unknown", "novasenha"), common.ErrNotFound)
}

func TestLocalProvider_DeleteIdentity(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, "caio@example.com", "segredo1")
	require.NoError(t, err)

	require.NoError(t, p.DeleteIdentity(ctx, id))
	_, err = p.Authenticate(ctx, "caio@example.com", "segredo1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.ErrorIs(t, p.DeleteIdentity(ctx, ""), common.ErrMissingField)
}

func TestSessions(t *testing.T) {
	p, db := newProvider(t)
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, "duda@example.com", "segredo1")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(db.Storage, time.Hour)
	s.now = func() time.Time { return now }

	session, err := s.Issue(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), session.ExpiresAt)

	got, err := s.Validate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got.IdentityID)

	_, err = s.Validate(ctx, "")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = s.Validate(ctx, "bogus")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	now = now.Add(2 * time.Hour)
	_, err = s.Validate(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	other, err := s.Issue(ctx, id)
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, other.Token))
	_, err = s.Validate(ctx, other.Token)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	stale, err := s.Issue(ctx, id)
	require.NoError(t, err)
	now = now.Add(2 * time.Hour)
	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = db.Storage.GetSession(ctx, stale.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
