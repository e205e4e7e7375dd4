package series

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
	"github.com/recurrent-ledger/backend/internal/application/lock"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// DeleteSeriesInput represents the input for a scoped series delete.
type DeleteSeriesInput struct {
	UserID        uuid.UUID
	SeriesID      uuid.UUID
	EffectiveDate valueobject.Date
	Scope         valueobject.EditScope
}

// DeleteSeriesOutput represents the output of a scoped series delete.
// For the single scope Deleted reports whether an entry actually existed at
// the effective date; for the other scopes it reports that the operation
// took effect.
type DeleteSeriesOutput struct {
	Deleted bool
}

// DeleteSeriesUseCase applies temporally-scoped deletes to a recurring
// series. The all scope removes the series row itself but keeps every ledger
// entry it generated, clearing their weak back-references: entries outlive
// the series that produced them.
type DeleteSeriesUseCase struct {
	seriesRepo adapter.SeriesRepository
	entryRepo  adapter.EntryRepository
	locker     *lock.SeriesLocker
}

// NewDeleteSeriesUseCase creates a new DeleteSeriesUseCase instance.
func NewDeleteSeriesUseCase(
	seriesRepo adapter.SeriesRepository,
	entryRepo adapter.EntryRepository,
	locker *lock.SeriesLocker,
) *DeleteSeriesUseCase {
	return &DeleteSeriesUseCase{
		seriesRepo: seriesRepo,
		entryRepo:  entryRepo,
		locker:     locker,
	}
}

// Execute performs the scoped delete.
func (uc *DeleteSeriesUseCase) Execute(ctx context.Context, input DeleteSeriesInput) (*DeleteSeriesOutput, error) {
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

	if input.Scope != valueobject.ScopeAll && !s.WindowContains(input.EffectiveDate) {
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
		return uc.deleteSingle(ctx, s, input.EffectiveDate)
	case valueobject.ScopeFuture:
		return uc.deleteFuture(ctx, s, input.EffectiveDate)
	case valueobject.ScopeAll:
		return uc.deleteAll(ctx, s)
	default:
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidScope,
			fmt.Sprintf("unknown edit scope %v", input.Scope),
			domainerror.ErrInvalidScope,
		)
	}
}

// deleteSingle removes the entry covering one occurrence date, if any.
// Absence is not an error and the series stays active either way.
func (uc *DeleteSeriesUseCase) deleteSingle(
	ctx context.Context,
	s *entity.RecurringSeries,
	date valueobject.Date,
) (*DeleteSeriesOutput, error) {
	removed, err := uc.entryRepo.DeleteBySeriesAndDate(ctx, s.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to delete occurrence entry: %w", err)
	}
	return &DeleteSeriesOutput{Deleted: removed}, nil
}

// deleteFuture soft-stops the series the day before the effective date.
// The series row is retained and no entries are touched.
func (uc *DeleteSeriesUseCase) deleteFuture(
	ctx context.Context,
	s *entity.RecurringSeries,
	effective valueobject.Date,
) (*DeleteSeriesOutput, error) {
	newEnd := effective.AddDays(-1)
	s.EndDate = &newEnd
	if s.NextOccurrence != nil && s.NextOccurrence.After(newEnd) {
		s.NextOccurrence = nil
	}
	if newEnd.Before(s.StartDate) {
		s.IsActive = false
		s.NextOccurrence = nil
	}

	if err := uc.seriesRepo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to end series: %w", err)
	}
	return &DeleteSeriesOutput{Deleted: true}, nil
}

// deleteAll hard-deletes the series. Existing entries are retained with
// their back-reference cleared, never cascaded.
func (uc *DeleteSeriesUseCase) deleteAll(ctx context.Context, s *entity.RecurringSeries) (*DeleteSeriesOutput, error) {
	detached, err := uc.entryRepo.ClearSeriesRef(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to detach series entries: %w", err)
	}

	if err := uc.seriesRepo.Delete(ctx, s.ID); err != nil {
		return nil, fmt.Errorf("failed to delete series: %w", err)
	}

	slog.Info("Deleted recurring series",
		"series_id", s.ID,
		"detached_entries", detached,
	)

	return &DeleteSeriesOutput{Deleted: true}, nil
}
