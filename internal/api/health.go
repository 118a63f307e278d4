package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// status pings the database.
func (s *Server) status(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.requestLogger(c).Error("failed to check db connection", "error", err)
		return c.String(http.StatusInternalServerError, "DB error")
	}
	return c.String(http.StatusOK, "OK")
}

type healthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Success:   true,
		Message:   "API funcionando",
		Timestamp: time.Now().UTC(),
	})
}

// healthDB reads a few business types to prove the schema is usable.
func (s *Server) healthDB(c echo.Context) error {
	types, err := s.catalog.ListBusinessTypes(c.Request().Context(), 5)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Conexão com o banco funcionando",
		"business_types": types,
		"count":          len(types),
	})
}

func (s *Server) listBusinessTypes(c echo.Context) error {
	types, err := s.catalog.ListBusinessTypes(c.Request().Context(), 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types)
}
