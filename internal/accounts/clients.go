package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/auth"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
)

// NewClient holds what is needed to register a client business.
type NewClient struct {
	Name           string
	Email          string
	Password       string
	BusinessName   string
	BusinessTypeID string
	Plan           string
	Categories     model.CategorySelection
	// Admin creates an administrator. Only the command line sets it.
	Admin bool
}

func (n NewClient) missing() []string {
	var fields []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", n.Name},
		{"email", n.Email},
		{"password", n.Password},
		{"business_name", n.BusinessName},
		{"business_type_id", n.BusinessTypeID},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, f.name)
		}
	}
	return fields
}

// LoginResult is a successful login: the user, where to send them and the
// session that proves it.
type LoginResult struct {
	User    *model.User    `json:"user"`
	Session *model.Session `json:"session"`
	Route   string         `json:"route"`
}

// Clients manages client accounts across the user table and the identity
// provider.
type Clients struct {
	store    service.Storage
	provider auth.Provider
	sessions *auth.Sessions
	resolver *Resolver
	replacer *CategoryReplacer
	logger   *slog.Logger
	now      func() time.Time
}

// NewClients wires the account service.
func NewClients(store service.Storage, provider auth.Provider, sessions *auth.Sessions, logger *slog.Logger) *Clients {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clients{
		store:    store,
		provider: provider,
		sessions: sessions,
		resolver: NewResolver(store, logger),
		replacer: NewCategoryReplacer(store, logger),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Categories returns the category replacer used by the service.
func (c *Clients) Categories() *CategoryReplacer {
	return c.replacer
}

// CreateClient registers the identity and the user row. The user row is
// never left without an identity: if it cannot be written the identity is
// removed again. The initial category selection is best effort.
func (c *Clients) CreateClient(ctx context.Context, nc NewClient) (*model.User, error) {
	if fields := nc.missing(); len(fields) > 0 {
		return nil, common.MissingField(fields...)
	}

	if _, err := c.store.GetBusinessType(ctx, nc.BusinessTypeID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown business type %q", common.ErrInvalidInput, nc.BusinessTypeID)
		}
		return nil, fmt.Errorf("failed to load business type: %w", err)
	}

	email := common.NormalizeEmail(nc.Email)
	identityID, err := c.provider.CreateIdentity(ctx, email, nc.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	plan := model.ParsePlan(nc.Plan)
	u := &model.User{
		ExternalID:     identityID,
		Name:           strings.TrimSpace(nc.Name),
		Email:          email,
		BusinessName:   strings.TrimSpace(nc.BusinessName),
		BusinessTypeID: nc.BusinessTypeID,
		Plan:           plan,
		PaymentStatus:  model.PaymentActive,
		ExpiresAt:      plan.ExpiresAt(c.now()),
		IsAdmin:        nc.Admin,
	}
	if err := c.store.CreateUser(ctx, u); err != nil {
		if derr := c.provider.DeleteIdentity(ctx, identityID); derr != nil {
			c.logger.Error("failed to remove orphaned identity", "identity_id", identityID, "error", derr)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if nc.Categories.Len() > 0 {
		if _, err := c.replacer.ReplaceCategories(ctx, u.ID, nc.Categories); err != nil {
			c.logger.Warn("client created without initial categories", "user_id", u.ID, "error", err)
		}
	}

	c.logger.Info("client created",
		"user_id", u.ID,
		"business_type_id", u.BusinessTypeID,
		"plan", u.Plan,
		"expires_at", u.ExpiresAt.Format("2006-01-02"))
	return u, nil
}

// DeleteClient removes the client registered under email.
func (c *Clients) DeleteClient(ctx context.Context, email string) (*model.User, error) {
	email = common.NormalizeEmail(email)
	if email == "" {
		return nil, common.MissingField("email")
	}

	u, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return u, c.remove(ctx, u)
}

// DeleteClientByIdentifier removes the client with the given primary key or
// external identity id.
func (c *Clients) DeleteClientByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	u, err := c.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return u, c.remove(ctx, u)
}

// remove deletes the associations, the user row and the identity, in that
// order. Only the user row is mandatory; the other steps are logged on
// failure. Administrators are refused before anything is touched.
func (c *Clients) remove(ctx context.Context, u *model.User) error {
	if u.IsAdmin {
		return fmt.Errorf("%w: %s", common.ErrProtectedAccount, u.Email)
	}

	if n, err := c.store.DeleteActiveCategories(ctx, u.ID); err != nil {
		c.logger.Warn("failed to delete client categories", "user_id", u.ID, "error", err)
	} else {
		c.logger.Debug("client categories deleted", "user_id", u.ID, "count", n)
	}

	if err := c.store.DeleteUser(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := c.provider.DeleteIdentity(ctx, u.ExternalID); err != nil {
		c.logger.Warn("user deleted but identity remains", "user_id", u.ID, "identity_id", u.ExternalID, "error", err)
	}

	c.logger.Info("client deleted", "user_id", u.ID, "email", u.Email)
	return nil
}

// ChangePassword sets a new password for the client registered under email.
func (c *Clients) ChangePassword(ctx context.Context, email, newPassword string) error {
	email = common.NormalizeEmail(email)
	if email == "" || newPassword == "" {
		return common.MissingField("email", "new_password")
	}

	u, err := c.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: %s", common.ErrUserNotFound, email)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := c.provider.UpdatePassword(ctx, u.ExternalID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	c.logger.Info("password changed", "user_id", u.ID)
	return nil
}

// ChangeOwnPassword lets a signed-in user change their password after
// proving they know the current one.
func (c *Clients) ChangeOwnPassword(ctx context.Context, u *model.User, current, next string) error {
	if current == "" || next == "" {
		return common.MissingField("current_password", "new_password")
	}
	if _, err := c.provider.Authenticate(ctx, u.Email, current); err != nil {
		return err
	}
	if err := c.provider.UpdatePassword(ctx, u.ExternalID, next); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	c.logger.Info("password changed by owner", "user_id", u.ID)
	return nil
}

// Login checks credentials, opens a session and picks the landing route.
func (c *Clients) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identityID, err := c.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	u, err := c.store.GetUserByExternalID(ctx, identityID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account for this login", common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	types, err := c.store.ListBusinessTypes(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load business types: %w", err)
	}

	session, err := c.sessions.Issue(ctx, identityID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:    u,
		Session: session,
		Route:   model.HomeRoute(u, types),
	}, nil
}

// Logout ends the session behind token.
func (c *Clients) Logout(ctx context.Context, token string) error {
	return c.sessions.Revoke(ctx, token)
}

// Me returns the user signed in with token. Unknown or expired tokens fail
// with common.ErrUnauthorized.
func (c *Clients) Me(ctx context.Context, token string) (*model.User, error) {
	session, err := c.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := c.store.GetUserByExternalID(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// ListClients returns every account, newest first.
func (c *Clients) ListClients(ctx context.Context) ([]model.User, error) {
	users, err := c.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
