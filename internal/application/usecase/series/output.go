// Package series contains recurring-series use cases: creation, listing and
// temporally-scoped edits and deletes.
package series

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// SeriesOutput represents a recurring series in use-case outputs.
type SeriesOutput struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CategoryID     uuid.UUID
	Amount         decimal.Decimal
	Kind           entity.EntryKind
	Description    string
	Frequency      entity.Frequency
	StartDate      valueobject.Date
	EndDate        *valueobject.Date
	NextOccurrence *valueobject.Date
	IsActive       bool
	CreatedAt      time.Time
}

// ToSeriesOutput converts a series entity to its output representation.
func ToSeriesOutput(s *entity.RecurringSeries) *SeriesOutput {
	return &SeriesOutput{
		ID:             s.ID,
		UserID:         s.UserID,
		CategoryID:     s.CategoryID,
		Amount:         s.Amount,
		Kind:           s.Kind,
		Description:    s.Description,
		Frequency:      s.Frequency,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		NextOccurrence: s.NextOccurrence,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
	}
}
