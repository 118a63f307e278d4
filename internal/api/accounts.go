package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/accounts"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
	Route     string      `json:"route"`
	Token     string      `json:"token"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	res, err := s.clients.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		s.metrics.logins.WithLabelValues("ok").Inc()
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrUserNotFound):
		s.metrics.logins.WithLabelValues("denied").Inc()
		if errors.Is(err, common.ErrUserNotFound) {
			return fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
		}
		return err
	default:
		s.metrics.logins.WithLabelValues("error").Inc()
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		User:      res.User,
		Route:     res.Route,
		Token:     res.Session.Token,
		ExpiresAt: res.Session.ExpiresAt,
	})
}

func (s *Server) logout(c echo.Context) error {
	token, _ := c.Get(tokenKey).(string)
	if err := s.clients.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

type ownPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) changeOwnPassword(c echo.Context) error {
	var req ownPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	err := s.clients.ChangeOwnPassword(c.Request().Context(), currentUser(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Senha alterada"})
}

// selectedPair is one row of the create-user category picker. Either side
// may be empty.
type selectedPair struct {
	RevenueID string `json:"revenue_id"`
	ExpenseID string `json:"expense_id"`
}

type createUserRequest struct {
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Password           string         `json:"password"`
	BusinessName       string         `json:"business_name"`
	BusinessTypeID     string         `json:"business_type_id"`
	Plan               string         `json:"plan"`
	SelectedCategories []selectedPair `json:"selected_categories"`
}

func (r createUserRequest) selection() model.CategorySelection {
	sel := model.CategorySelection{}
	for _, p := range r.SelectedCategories {
		if id := strings.TrimSpace(p.RevenueID); id != "" {
			sel.Revenue = append(sel.Revenue, id)
		}
		if id := strings.TrimSpace(p.ExpenseID); id != "" {
			sel.Expense = append(sel.Expense, id)
		}
	}
	return sel
}

func (s *Server) createUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	u, err := s.clients.CreateClient(c.Request().Context(), accounts.NewClient{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		BusinessName:   req.BusinessName,
		BusinessTypeID: req.BusinessTypeID,
		Plan:           req.Plan,
		Categories:     req.selection(),
	})
	if err != nil {
		return err
	}
	s.metrics.clients.WithLabelValues("created").Inc()

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Usuário criado com sucesso",
		"user":    u,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (s *Server) deleteUser(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	return s.deleteByEmail(c, req.Email)
}

func (s *Server) adminDeleteUser(c echo.Context) error {
	return s.deleteByEmail(c, c.QueryParam("email"))
}

func (s *Server) deleteByEmail(c echo.Context, email string) error {
	u, err := s.clients.DeleteClient(c.Request().Context(), email)
	if err != nil {
		return err
	}
	s.metrics.clients.WithLabelValues("deleted").Inc()

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Usuário deletado com sucesso",
		"user_id": u.ID,
	})
}

type passwordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (s *Server) updateUserPassword(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := s.clients.ChangePassword(c.Request().Context(), req.Email, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Senha atualizada com sucesso"})
}

func (s *Server) listUsers(c echo.Context) error {
	users, err := s.clients.ListClients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// activeCategories returns the categories a user tracks. Clients may only
// ask about themselves; administrators may ask about anyone.
func (s *Server) activeCategories(c echo.Context) error {
	me := currentUser(c)
	identifier := c.QueryParam("user_id")
	if identifier == "" {
		identifier = me.ID
	}
	// Refused before any lookup, so unknown and foreign ids answer alike.
	if !me.IsAdmin && identifier != me.ID && identifier != me.ExternalID {
		return fmt.Errorf("%w: categories of another user", common.ErrForbidden)
	}

	res, err := s.clients.Categories().ActiveCategories(c.Request().Context(), identifier)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
