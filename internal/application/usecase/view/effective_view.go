// Package view contains the read-only merged view of persisted and projected
// ledger entries.
package view

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/schedule"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// virtualIDNamespace is the UUIDv5 namespace for synthetic entry identifiers,
// so a projected occurrence keeps the same ID across calls without ever being
// persisted.
var virtualIDNamespace = uuid.MustParse("9a175e19-3c72-4a5b-8e44-bd1d5f6c2a07")

// maxVirtualPerSeries caps projection per series on very large ranges.
// Hitting the cap truncates silently; the view is advisory, not history.
const maxVirtualPerSeries = 1000

// EffectiveViewInput represents the input for building an effective view.
type EffectiveViewInput struct {
	UserID    uuid.UUID
	StartDate valueobject.Date
	EndDate   valueobject.Date
}

// EntryOutput represents one entry of the effective view. Virtual entries are
// display-only projections of not-yet-materialized occurrences; they carry a
// synthetic ID derived from (series, date) and must never be written back.
type EntryOutput struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Kind        entity.EntryKind
	Description string
	Date        valueobject.Date
	SeriesID    *uuid.UUID
	IsOverride  bool
	IsVirtual   bool
	CreatedAt   time.Time
}

// EffectiveViewOutput represents the merged view, date descending.
type EffectiveViewOutput struct {
	Entries []*EntryOutput
}

// EffectiveViewUseCase merges persisted ledger entries with virtual projected
// occurrences of the user's active series. It is read-only and lock-free: it
// may observe a state mid-generation, which is acceptable for a display view.
// It deliberately shares the exact occurrence policy used by generation, so
// the projection can never disagree with what generation would materialize.
type EffectiveViewUseCase struct {
	seriesRepo adapter.SeriesRepository
	entryRepo  adapter.EntryRepository
	policy     schedule.Policy
}

// NewEffectiveViewUseCase creates a new EffectiveViewUseCase instance.
func NewEffectiveViewUseCase(
	seriesRepo adapter.SeriesRepository,
	entryRepo adapter.EntryRepository,
	policy schedule.Policy,
) *EffectiveViewUseCase {
	return &EffectiveViewUseCase{
		seriesRepo: seriesRepo,
		entryRepo:  entryRepo,
		policy:     policy,
	}
}

// Execute builds the effective view for the user and date range.
func (uc *EffectiveViewUseCase) Execute(ctx context.Context, input EffectiveViewInput) (*EffectiveViewOutput, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidDate,
			"range end precedes range start",
			domainerror.ErrInvalidDate,
		)
	}

	persisted, err := uc.entryRepo.FindByUserAndRange(ctx, input.UserID, input.StartDate, input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted entries: %w", err)
	}

	// Occurrence dates already covered by a persisted entry, override or
	// generated, produce no virtual counterpart.
	covered := make(map[string]bool, len(persisted))
	entries := make([]*EntryOutput, 0, len(persisted))
	for _, e := range persisted {
		entries = append(entries, persistedOutput(e))
		if e.SeriesID != nil {
			covered[occurrenceKey(*e.SeriesID, e.Date)] = true
		}
	}

	active, err := uc.seriesRepo.FindActiveByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active series: %w", err)
	}

	for _, s := range active {
		entries = append(entries, uc.projectSeries(s, input.StartDate, input.EndDate, covered)...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].Date.Compare(entries[j].Date); c != 0 {
			return c > 0
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return &EffectiveViewOutput{Entries: entries}, nil
}

// projectSeries yields a virtual entry for each valid occurrence of the
// series within the range that no persisted entry covers yet.
func (uc *EffectiveViewUseCase) projectSeries(
	s *entity.RecurringSeries,
	start, end valueobject.Date,
	covered map[string]bool,
) []*EntryOutput {
	limit := end
	if s.EndDate != nil && s.EndDate.Before(limit) {
		limit = *s.EndDate
	}

	var virtual []*EntryOutput

	cur, ok := uc.policy.FindNextValidOccurrence(start, s)
	for ok && !cur.After(limit) && len(virtual) < maxVirtualPerSeries {
		if !covered[occurrenceKey(s.ID, cur)] {
			virtual = append(virtual, virtualOutput(s, cur))
		}
		cur, ok = uc.policy.FindNextValidOccurrence(
			uc.policy.NextOccurrence(cur, s.Frequency),
			s,
		)
	}

	return virtual
}

func persistedOutput(e *entity.LedgerEntry) *EntryOutput {
	return &EntryOutput{
		ID:          e.ID,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Kind:        e.Kind,
		Description: e.Description,
		Date:        e.Date,
		SeriesID:    e.SeriesID,
		IsOverride:  e.IsOverride,
		IsVirtual:   false,
		CreatedAt:   e.CreatedAt,
	}
}

func virtualOutput(s *entity.RecurringSeries, date valueobject.Date) *EntryOutput {
	seriesID := s.ID
	return &EntryOutput{
		ID:          VirtualEntryID(s.ID, date),
		UserID:      s.UserID,
		CategoryID:  s.CategoryID,
		Amount:      s.Amount,
		Kind:        s.Kind,
		Description: s.Description,
		Date:        date,
		SeriesID:    &seriesID,
		IsOverride:  false,
		IsVirtual:   true,
	}
}

// VirtualEntryID derives the stable synthetic identifier of a projected
// occurrence from its (series, date) pair.
func VirtualEntryID(seriesID uuid.UUID, date valueobject.Date) uuid.UUID {
	return uuid.NewSHA1(virtualIDNamespace, []byte(occurrenceKey(seriesID, date)))
}

func occurrenceKey(seriesID uuid.UUID, date valueobject.Date) string {
	return seriesID.String() + "/" + date.String()
}
