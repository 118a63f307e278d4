// Package auth provides the local identity provider and login sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Provider manages login identities. Users reference an identity through
// their ExternalID.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	DeleteIdentity(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, password string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// Options tunes the local provider.
type Options struct {
	MinPasswordLength int
	BcryptCost        int
}

// DefaultOptions returns the provider defaults.
func DefaultOptions() Options {
	return Options{
		MinPasswordLength: 6,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// LocalProvider stores bcrypt password hashes in the application database.
type LocalProvider struct {
	store  service.Storage
	logger *slog.Logger
	opts   Options
}

// NewLocalProvider creates a provider backed by store.
func NewLocalProvider(store service.Storage, opts Options, logger *slog.Logger) *LocalProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultOptions().MinPasswordLength
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &LocalProvider{store: store, opts: opts, logger: logger}
}

func (p *LocalProvider) hash(password string) (string, error) {
	if len(password) < p.opts.MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", common.ErrInvalidInput, p.opts.MinPasswordLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// CreateIdentity registers email with password and returns the identity id.
func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", common.MissingField("email", "password")
	}
	if !common.ValidEmail(email) {
		return "", fmt.Errorf("%w: malformed email %q", common.ErrInvalidInput, email)
	}

	h, err := p.hash(password)
	if err != nil {
		return "", err
	}

	id := &model.Identity{Email: email, PasswordHash: h}
	if err := p.store.CreateIdentity(ctx, id); err != nil {
		return "", fmt.Errorf("failed to create identity: %w", err)
	}

	p.logger.Debug("identity created", "identity_id", id.ID)
	return id.ID, nil
}

// DeleteIdentity removes an identity and every session it holds.
func (p *LocalProvider) DeleteIdentity(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return common.MissingField("identity id")
	}
	if err := p.store.DeleteIdentity(ctx, id); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password of identity id and revokes its sessions.
func (p *LocalProvider) UpdatePassword(ctx context.Context, id, password string) error {
	if strings.TrimSpace(id) == "" || password == "" {
		return common.MissingField("identity id", "password")
	}

	h, err := p.hash(password)
	if err != nil {
		return err
	}

	if err := p.store.UpdateIdentityPassword(ctx, id, h); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := p.store.DeleteSessionsByIdentity(ctx, id); err != nil {
		p.logger.Warn("failed to revoke sessions after password change", "identity_id", id, "error", err)
	}
	return nil
}

// Authenticate checks credentials and returns the identity id. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = common.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", common.MissingField("email", "password")
	}

	id, err := p.store.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrInvalidCredentials
	}
	return id.ID, nil
}
