// Package ledger keeps each client's books: revenue and expense entries,
// free-text notes, and the period summaries shown on the dashboard.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/service"
)

// Service operates on the books of one user at a time. Every call is scoped
// by the user id; records of other users are reported as not found.
type Service struct {
	store  service.Storage
	logger *slog.Logger
	now    func() time.Time
}

// New creates a ledger service.
func New(store service.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// NoteInput is the editable part of a note. A zero Date means today.
type NoteInput struct {
	Date      time.Time `json:"date"`
	Category  *string   `json:"category"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Important bool      `json:"important"`
}

func (in NoteInput) apply(n *model.Note, today time.Time) error {
	if strings.TrimSpace(in.Title) == "" {
		return common.MissingField("title")
	}
	n.Title = strings.TrimSpace(in.Title)
	n.Body = in.Body
	n.Important = in.Important
	n.Category = nil
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		c := strings.TrimSpace(*in.Category)
		n.Category = &c
	}
	n.Date = in.Date
	if n.Date.IsZero() {
		n.Date = today
	}
	return nil
}

// ListNotes returns the user's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, userID string) ([]model.Note, error) {
	notes, err := s.store.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// CreateNote adds a note for userID.
func (s *Service) CreateNote(ctx context.Context, userID string, in NoteInput) (*model.Note, error) {
	n := &model.Note{UserID: userID}
	if err := in.apply(n, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return n, nil
}

// UpdateNote rewrites a note owned by userID.
func (s *Service) UpdateNote(ctx context.Context, userID, id string, in NoteInput) (*model.Note, error) {
	n, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if err := in.apply(n, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateNote(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return n, nil
}

// DeleteNote removes a note owned by userID.
func (s *Service) DeleteNote(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteNote(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
