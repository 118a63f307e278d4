package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/ledger"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// entryKinds maps the entry collections to their kind.
var entryKinds = map[string]model.CategoryType{
	"revenues": model.CategoryTypeRevenue,
	"expenses": model.CategoryTypeExpense,
}

const dateLayout = "2006-01-02"

// periodAll disables the date filter.
const periodAll = "all"

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", common.ErrInvalidInput, field)
	}
	return t, nil
}

// filter reads period, start, end, category_id and payment_method. The
// period defaults to the current month.
func (s *Server) filter(c echo.Context) (ledger.Filter, error) {
	f := ledger.Filter{
		CategoryID:    strings.TrimSpace(c.QueryParam("category_id")),
		PaymentMethod: strings.TrimSpace(c.QueryParam("payment_method")),
	}

	kind := strings.TrimSpace(c.QueryParam("period"))
	if kind == periodAll {
		return f, nil
	}

	start, err := parseDate("start", c.QueryParam("start"))
	if err != nil {
		return f, err
	}
	end, err := parseDate("end", c.QueryParam("end"))
	if err != nil {
		return f, err
	}

	f.Period, err = model.NewPeriod(model.PeriodKind(kind), s.books.Now(), start, end)
	if err != nil {
		return f, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return f, nil
}

type noteRequest struct {
	Date      string  `json:"date"`
	Category  *string `json:"category"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Important bool    `json:"important"`
}

func (r noteRequest) input() (ledger.NoteInput, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return ledger.NoteInput{}, err
	}
	return ledger.NoteInput{
		Date:      date,
		Category:  r.Category,
		Title:     r.Title,
		Body:      r.Body,
		Important: r.Important,
	}, nil
}

func (s *Server) listNotes(c echo.Context) error {
	notes, err := s.books.ListNotes(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

func (s *Server) createNote(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	n, err := s.books.CreateNote(c.Request().Context(), currentUser(c).ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

func (s *Server) updateNote(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	n, err := s.books.UpdateNote(c.Request().Context(), currentUser(c).ID, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

func (s *Server) deleteNote(c echo.Context) error {
	if err := s.books.DeleteNote(c.Request().Context(), currentUser(c).ID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type entryRequest struct {
	Date          string          `json:"date"`
	CategoryID    *string         `json:"category_id"`
	Notes         *string         `json:"notes"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r entryRequest) input() (ledger.EntryInput, error) {
	date, err := parseDate("date", r.Date)
	if err != nil {
		return ledger.EntryInput{}, err
	}
	return ledger.EntryInput{
		Date:          date,
		CategoryID:    r.CategoryID,
		Notes:         r.Notes,
		PaymentMethod: r.PaymentMethod,
		Amount:        r.Amount,
	}, nil
}

func (s *Server) listEntries(kind model.CategoryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := s.filter(c)
		if err != nil {
			return err
		}
		entries, err := s.books.ListEntries(c.Request().Context(), kind, currentUser(c).ID, f)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, entries)
	}
}

func (s *Server) createEntry(kind model.CategoryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req entryRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		e, err := s.books.CreateEntry(c.Request().Context(), kind, currentUser(c).ID, in)
		if err != nil {
			return err
		}
		s.metrics.entries.WithLabelValues(string(kind), "create").Inc()
		return c.JSON(http.StatusCreated, e)
	}
}

func (s *Server) updateEntry(kind model.CategoryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req entryRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		in, err := req.input()
		if err != nil {
			return err
		}
		e, err := s.books.UpdateEntry(c.Request().Context(), kind, currentUser(c).ID, c.Param("id"), in)
		if err != nil {
			return err
		}
		s.metrics.entries.WithLabelValues(string(kind), "update").Inc()
		return c.JSON(http.StatusOK, e)
	}
}

func (s *Server) deleteEntry(kind model.CategoryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := s.books.DeleteEntry(c.Request().Context(), kind, currentUser(c).ID, c.Param("id")); err != nil {
			return err
		}
		s.metrics.entries.WithLabelValues(string(kind), "delete").Inc()
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *Server) entrySummary(kind model.CategoryType) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := s.filter(c)
		if err != nil {
			return err
		}
		sum, err := s.books.Summary(c.Request().Context(), kind, currentUser(c).ID, f)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, sum)
	}
}
