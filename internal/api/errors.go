package api

import (
	"errors"
	"net/http"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/labstack/echo/v4"
)

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, common.ErrMissingField),
		errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrForeignKey):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrProtectedAccount),
		errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateEntry):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// errorResponse builds the body for err. Internal failures hide their cause
// unless the server runs in devel mode.
func (s *Server) errorResponse(err error, status int) errorBody {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return errorBody{Error: msg}
		}
		return errorBody{Error: http.StatusText(he.Code)}
	}

	var ue *common.UserError
	if errors.As(err, &ue) {
		return errorBody{Error: ue.UserMessage}
	}

	if status == http.StatusInternalServerError {
		body := errorBody{Error: "internal server error"}
		if s.opts.IsDevel {
			body.Details = err.Error()
		}
		return body
	}
	return errorBody{Error: err.Error()}
}

// handleError is the echo error handler.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := statusFor(err)
	body := s.errorResponse(err, status)

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		s.logger.Error("failed to write error response", "error", werr)
	}
}
