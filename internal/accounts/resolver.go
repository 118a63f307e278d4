// Package accounts implements client lifecycle operations and the
// management of the categories each client tracks.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
)

// Resolver finds a user from an identifier that may be either the user's
// primary key or the id assigned by the identity provider. Callers that hold
// an identifier from an untrusted source must resolve it before writing, and
// write against the returned user's ID only.
type Resolver struct {
	store  service.Storage
	logger *slog.Logger
}

// NewResolver creates a resolver reading from store.
func NewResolver(store service.Storage, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve looks identifier up as a primary key first and as an external
// identity id second. It fails with common.ErrUserNotFound when neither
// matches.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, common.MissingField("user_id")
	}

	u, err := r.store.GetUserByID(ctx, identifier)
	switch {
	case err == nil:
		return u, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user by id: %w", err)
	}

	u, err = r.store.GetUserByExternalID(ctx, identifier)
	switch {
	case err == nil:
		r.logger.Debug("resolved user by external id", "external_id", identifier, "user_id", u.ID)
		return u, nil
	case errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", common.ErrUserNotFound, identifier)
	default:
		return nil, fmt.Errorf("failed to look up user by external id: %w", err)
	}
}
