package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// EntryKind represents the direction of a ledger entry (expense or income).
type EntryKind string

const (
	EntryKindExpense EntryKind = "expense"
	EntryKindIncome  EntryKind = "income"
)

// IsValid reports whether the kind is a supported value.
func (k EntryKind) IsValid() bool {
	return k == EntryKindExpense || k == EntryKindIncome
}

// LedgerEntry represents a concrete dated transaction.
//
// SeriesID is a weak back-reference to the recurring series that produced the
// entry: it is used for existence lookups only, never for ownership. When a
// series is deleted with scope "all" the reference is cleared and the entry
// survives. IsOverride marks an entry that was edited for a single occurrence
// date; it takes precedence over a generated entry for the same
// (series, date) pair, and the generation engine never overwrites it.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Kind        EntryKind
	Description string
	Date        valueobject.Date
	SeriesID    *uuid.UUID
	IsOverride  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // Soft-delete support
}

// NewLedgerEntry creates a new LedgerEntry entity.
func NewLedgerEntry(
	userID uuid.UUID,
	categoryID uuid.UUID,
	amount decimal.Decimal,
	kind EntryKind,
	description string,
	date valueobject.Date,
	seriesID *uuid.UUID,
	isOverride bool,
) *LedgerEntry {
	now := time.Now().UTC()

	return &LedgerEntry{
		ID:          uuid.New(),
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		Date:        date,
		SeriesID:    seriesID,
		IsOverride:  isOverride,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EntryFromSeries materializes a ledger entry for one occurrence of a series,
// carrying the series' current financial fields.
func EntryFromSeries(s *RecurringSeries, date valueobject.Date, isOverride bool) *LedgerEntry {
	seriesID := s.ID
	return NewLedgerEntry(
		s.UserID,
		s.CategoryID,
		s.Amount,
		s.Kind,
		s.Description,
		date,
		&seriesID,
		isOverride,
	)
}
