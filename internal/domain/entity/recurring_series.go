// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// Frequency represents how often a recurring series fires.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// IsValid reports whether the frequency is one of the four supported values.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// RecurringSeries describes a repeating ledger entry: a rule plus a cursor.
//
// NextOccurrence is the materialization cursor. It is advanced only by the
// generation engine; series edits may leave it pointing at a date that is no
// longer a valid occurrence, and the engine re-validates it on read.
// StartDate <= NextOccurrence holds whenever the cursor is present; a nil
// cursor means the series window is exhausted.
type RecurringSeries struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CategoryID     uuid.UUID
	Amount         decimal.Decimal
	Kind           EntryKind
	Description    string
	Frequency      Frequency
	StartDate      valueobject.Date
	EndDate        *valueobject.Date // inclusive; nil means no end
	NextOccurrence *valueobject.Date
	IsActive       bool
	CreatedAt      time.Time
}

// NewRecurringSeries creates a new RecurringSeries entity. The materialization
// cursor starts at the series start date.
func NewRecurringSeries(
	userID uuid.UUID,
	categoryID uuid.UUID,
	amount decimal.Decimal,
	kind EntryKind,
	description string,
	frequency Frequency,
	startDate valueobject.Date,
	endDate *valueobject.Date,
) *RecurringSeries {
	next := startDate

	return &RecurringSeries{
		ID:             uuid.New(),
		UserID:         userID,
		CategoryID:     categoryID,
		Amount:         amount,
		Kind:           kind,
		Description:    description,
		Frequency:      frequency,
		StartDate:      startDate,
		EndDate:        endDate,
		NextOccurrence: &next,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
}

// WindowContains reports whether the given date lies within the series'
// [StartDate, EndDate] window.
func (s *RecurringSeries) WindowContains(d valueobject.Date) bool {
	if d.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && d.After(*s.EndDate) {
		return false
	}
	return true
}
