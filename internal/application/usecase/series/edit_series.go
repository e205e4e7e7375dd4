package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
	"github.com/recurrent-ledger/backend/internal/application/lock"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/schedule"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// SeriesUpdates carries the partial field updates of a scoped edit. Nil
// fields keep their current value.
type SeriesUpdates struct {
	CategoryID  *uuid.UUID
	Amount      *decimal.Decimal
	Kind        *entity.EntryKind
	Description *string
	Frequency   *entity.Frequency
	EndDate     *valueobject.Date
}

// EditSeriesInput represents the input for a scoped series edit.
type EditSeriesInput struct {
	UserID        uuid.UUID
	SeriesID      uuid.UUID
	EffectiveDate valueobject.Date
	Scope         valueobject.EditScope
	Updates       SeriesUpdates
}

// EditSeriesOutput represents the output of a scoped series edit.
// NewSeries is set only for the future scope, which splits the series.
type EditSeriesOutput struct {
	Series    *SeriesOutput
	NewSeries *SeriesOutput
}

// EditSeriesUseCase applies temporally-scoped edits to a recurring series:
// one occurrence, all future occurrences, or the whole series. Historical
// ledger entries are never rewritten by any scope.
type EditSeriesUseCase struct {
	seriesRepo   adapter.SeriesRepository
	entryRepo    adapter.EntryRepository
	categoryRepo adapter.CategoryRepository
	policy       schedule.Policy
	locker       *lock.SeriesLocker
}

// NewEditSeriesUseCase creates a new EditSeriesUseCase instance.
func NewEditSeriesUseCase(
	seriesRepo adapter.SeriesRepository,
	entryRepo adapter.EntryRepository,
	categoryRepo adapter.CategoryRepository,
	policy schedule.Policy,
	locker *lock.SeriesLocker,
) *EditSeriesUseCase {
	return &EditSeriesUseCase{
		seriesRepo:   seriesRepo,
		entryRepo:    entryRepo,
		categoryRepo: categoryRepo,
		policy:       policy,
		locker:       locker,
	}
}

// Execute performs the scoped edit. All validation happens before any
// mutation; the series lock is held for the duration of the write path.
func (uc *EditSeriesUseCase) Execute(ctx context.Context, input EditSeriesInput) (*EditSeriesOutput, error) {
	if err := uc.validateUpdates(ctx, input.UserID, input.Updates); err != nil {
		return nil, err
	}

	s, err := uc.seriesRepo.FindByID(ctx, input.SeriesID)
	if err != nil {
		return nil, err
	}
	if s.UserID != input.UserID {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeNotAuthorized,
			"series does not belong to user",
			domainerror.ErrNotAuthorizedForSeries,
		)
	}

	if !s.WindowContains(input.EffectiveDate) {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeDateOutsideWindow,
			fmt.Sprintf("effective date %s is outside the series window", input.EffectiveDate),
			domainerror.ErrDateOutsideWindow,
		)
	}

	uc.locker.Lock(s.ID)
	defer uc.locker.Unlock(s.ID)

	switch input.Scope {
	case valueobject.ScopeSingle:
		return uc.editSingle(ctx, s, input.EffectiveDate, input.Updates)
	case valueobject.ScopeFuture:
		return uc.splitFuture(ctx, s, input.EffectiveDate, input.Updates)
	case valueobject.ScopeAll:
		return uc.editAll(ctx, s, input.Updates)
	default:
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidScope,
			fmt.Sprintf("unknown edit scope %v", input.Scope),
			domainerror.ErrInvalidScope,
		)
	}
}

// editSingle finds or creates the override entry for one occurrence date.
// The series itself is untouched; the override takes precedence over any
// generated entry for the same date from then on.
func (uc *EditSeriesUseCase) editSingle(
	ctx context.Context,
	s *entity.RecurringSeries,
	date valueobject.Date,
	updates SeriesUpdates,
) (*EditSeriesOutput, error) {
	existing, err := uc.entryRepo.FindBySeriesAndDate(ctx, s.ID, date)
	if err != nil && !errors.Is(err, domainerror.ErrEntryNotFound) {
		return nil, fmt.Errorf("failed to look up entry for override: %w", err)
	}

	if existing != nil {
		// Promote the covering entry to an override and apply the updates.
		existing.IsOverride = true
		applyEntryUpdates(existing, updates)
		existing.UpdatedAt = time.Now().UTC()
		if err := uc.entryRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update override entry: %w", err)
		}
		return &EditSeriesOutput{Series: ToSeriesOutput(s)}, nil
	}

	entry := entity.EntryFromSeries(s, date, true)
	applyEntryUpdates(entry, updates)
	if err := uc.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create override entry: %w", err)
	}

	return &EditSeriesOutput{Series: ToSeriesOutput(s)}, nil
}

// splitFuture ends the existing series the day before the effective date and
// starts a new series at it, inheriting every field the update leaves unset.
// Historical entries stay tied to the original series.
func (uc *EditSeriesUseCase) splitFuture(
	ctx context.Context,
	s *entity.RecurringSeries,
	effective valueobject.Date,
	updates SeriesUpdates,
) (*EditSeriesOutput, error) {
	newEnd := effective.AddDays(-1)
	oldEnd := s.EndDate

	s.EndDate = &newEnd
	if s.NextOccurrence != nil && s.NextOccurrence.After(newEnd) {
		s.NextOccurrence = nil
	}
	if newEnd.Before(s.StartDate) {
		// Splitting at the very first day leaves the original with an empty
		// window; it can never fire again.
		s.IsActive = false
		s.NextOccurrence = nil
	}

	successor := entity.NewRecurringSeries(
		s.UserID,
		pick(updates.CategoryID, s.CategoryID),
		pick(updates.Amount, s.Amount),
		pick(updates.Kind, s.Kind),
		pick(updates.Description, s.Description),
		pick(updates.Frequency, s.Frequency),
		effective,
		pickPtr(updates.EndDate, oldEnd),
	)
	if next, ok := uc.policy.FindNextValidOccurrence(effective, successor); ok {
		successor.NextOccurrence = &next
	} else {
		successor.NextOccurrence = nil
	}

	if err := uc.seriesRepo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to end original series: %w", err)
	}
	if err := uc.seriesRepo.Create(ctx, successor); err != nil {
		return nil, fmt.Errorf("failed to create successor series: %w", err)
	}

	return &EditSeriesOutput{
		Series:    ToSeriesOutput(s),
		NewSeries: ToSeriesOutput(successor),
	}, nil
}

// editAll updates the series' mutable fields in place. Past ledger entries
// are never modified; history is immutable. A frequency change recomputes the
// cursor from its current position, preserving cadence continuity rather than
// restarting from the series start.
func (uc *EditSeriesUseCase) editAll(
	ctx context.Context,
	s *entity.RecurringSeries,
	updates SeriesUpdates,
) (*EditSeriesOutput, error) {
	frequencyChanged := updates.Frequency != nil && *updates.Frequency != s.Frequency

	s.CategoryID = pick(updates.CategoryID, s.CategoryID)
	s.Amount = pick(updates.Amount, s.Amount)
	s.Kind = pick(updates.Kind, s.Kind)
	s.Description = pick(updates.Description, s.Description)
	s.Frequency = pick(updates.Frequency, s.Frequency)
	if updates.EndDate != nil {
		if updates.EndDate.Before(s.StartDate) {
			return nil, domainerror.NewRecurrenceError(
				domainerror.ErrCodeEndBeforeStart,
				"end date must not precede start date",
				domainerror.ErrEndBeforeStart,
			)
		}
		s.EndDate = updates.EndDate
	}

	if s.NextOccurrence != nil && (frequencyChanged || updates.EndDate != nil) {
		if next, ok := uc.policy.FindNextValidOccurrence(*s.NextOccurrence, s); ok {
			s.NextOccurrence = &next
		} else {
			s.NextOccurrence = nil
		}
	}

	if err := uc.seriesRepo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to update series: %w", err)
	}

	return &EditSeriesOutput{Series: ToSeriesOutput(s)}, nil
}

// validateUpdates rejects malformed partial updates before any mutation.
func (uc *EditSeriesUseCase) validateUpdates(ctx context.Context, userID uuid.UUID, updates SeriesUpdates) error {
	if updates.Amount != nil && !updates.Amount.IsPositive() {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidAmount,
			"amount must be a positive decimal",
			domainerror.ErrInvalidAmount,
		)
	}
	if updates.Kind != nil && !updates.Kind.IsValid() {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidEntryKind,
			"kind must be 'expense' or 'income'",
			domainerror.ErrInvalidEntryKind,
		)
	}
	if updates.Frequency != nil && !updates.Frequency.IsValid() {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidFrequency,
			"frequency must be 'daily', 'weekly', 'monthly' or 'yearly'",
			domainerror.ErrInvalidFrequency,
		)
	}
	if updates.Description != nil && len(*updates.Description) > MaxDescriptionLength {
		return domainerror.NewRecurrenceError(
			domainerror.ErrCodeMissingFields,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			nil,
		)
	}
	if updates.CategoryID != nil {
		category, err := uc.categoryRepo.FindByID(ctx, *updates.CategoryID)
		if err != nil || category.UserID != userID {
			return domainerror.NewRecurrenceError(
				domainerror.ErrCodeCategoryRefNotFound,
				"category not found",
				domainerror.ErrCategoryRefNotFound,
			)
		}
	}
	return nil
}

// applyEntryUpdates copies the set fields of a partial update onto an entry.
// Frequency and end date do not apply to a single occurrence.
func applyEntryUpdates(e *entity.LedgerEntry, updates SeriesUpdates) {
	e.CategoryID = pick(updates.CategoryID, e.CategoryID)
	e.Amount = pick(updates.Amount, e.Amount)
	e.Kind = pick(updates.Kind, e.Kind)
	e.Description = pick(updates.Description, e.Description)
}

// pick returns the update value when set, the current value otherwise.
func pick[T any](update *T, current T) T {
	if update != nil {
		return *update
	}
	return current
}

// pickPtr returns the update pointer when set, the current pointer otherwise.
func pickPtr[T any](update, current *T) *T {
	if update != nil {
		return update
	}
	return current
}
