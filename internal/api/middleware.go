package api

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/labstack/echo/v4"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// logRequests logs one line per request and records the HTTP metrics. The
// error is handled here so the final status is known.
func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req, res := c.Request(), c.Response()
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		latency := time.Since(start)
		s.metrics.observe(req.Method, route, res.Status, latency)

		attrs := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"route", route,
			"status", res.Status,
			"latency", latency,
			"request_id", res.Header().Get(echo.HeaderXRequestID),
		}
		if u, ok := c.Get(userKey).(*model.User); ok {
			attrs = append(attrs, "user_id", u.ID)
		}

		switch {
		case res.Status >= 500:
			s.logger.Error("request failed", append(attrs, "error", err)...)
		case err != nil:
			s.logger.Warn("request rejected", append(attrs, "error", err)...)
		default:
			s.logger.Info("request", attrs...)
		}
		return nil
	}
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// requireSession resolves the bearer token to the signed-in user.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return fmt.Errorf("%w: missing bearer token", common.ErrUnauthorized)
		}
		u, err := s.clients.Me(c.Request().Context(), token)
		if err != nil {
			return err
		}
		c.Set(userKey, u)
		c.Set(tokenKey, token)
		return next(c)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !currentUser(c).IsAdmin {
			return fmt.Errorf("%w: administrator access required", common.ErrForbidden)
		}
		return next(c)
	}
}

// currentUser returns the user set by requireSession.
func currentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	if u == nil {
		return &model.User{}
	}
	return u
}

// requestLogger returns the server logger tagged with the request id.
func (s *Server) requestLogger(c echo.Context) *slog.Logger {
	return s.logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
}
