package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/model"
	"github.com/Veraticus/shopkeep/internal/ofx"
)

// ImportResult counts what a statement import did.
type ImportResult struct {
	Revenues   int `json:"revenues"`
	Expenses   int `json:"expenses"`
	Duplicates int `json:"duplicates"`
}

// Imported is the number of new entries written.
func (r ImportResult) Imported() int {
	return r.Revenues + r.Expenses
}

// Import writes statement lines as uncategorized entries of userID. Lines
// already imported are recognized by their reference and skipped, so the
// same file can be imported twice safely. progress, when set, is called
// after each line.
func (s *Service) Import(ctx context.Context, userID string, lines []ofx.Line, progress func()) (*ImportResult, error) {
	result := &ImportResult{}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e := line.Entry(userID)
		err := s.store.CreateEntry(ctx, &e)
		switch {
		case err == nil:
			if e.Type == model.CategoryTypeRevenue {
				result.Revenues++
			} else {
				result.Expenses++
			}
		case errors.Is(err, common.ErrDuplicateEntry):
			result.Duplicates++
		default:
			return result, fmt.Errorf("failed to import line %s: %w", line.FitID, err)
		}

		if progress != nil {
			progress()
		}
	}

	s.logger.Info("statement imported",
		"user_id", userID,
		"revenues", result.Revenues,
		"expenses", result.Expenses,
		"duplicates", result.Duplicates)
	return result, nil
}
