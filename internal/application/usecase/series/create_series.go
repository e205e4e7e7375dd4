package series

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// MaxDescriptionLength is the maximum allowed length for series descriptions.
const MaxDescriptionLength = 255

// CreateSeriesInput represents the input for series creation.
type CreateSeriesInput struct {
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Kind        entity.EntryKind
	Description string
	Frequency   entity.Frequency
	StartDate   valueobject.Date
	EndDate     *valueobject.Date
}

// CreateSeriesOutput represents the output of series creation.
type CreateSeriesOutput struct {
	Series *SeriesOutput
}

// CreateSeriesUseCase handles recurring-series creation.
type CreateSeriesUseCase struct {
	seriesRepo   adapter.SeriesRepository
	categoryRepo adapter.CategoryRepository
}

// NewCreateSeriesUseCase creates a new CreateSeriesUseCase instance.
func NewCreateSeriesUseCase(
	seriesRepo adapter.SeriesRepository,
	categoryRepo adapter.CategoryRepository,
) *CreateSeriesUseCase {
	return &CreateSeriesUseCase{
		seriesRepo:   seriesRepo,
		categoryRepo: categoryRepo,
	}
}

// Execute performs the series creation.
func (uc *CreateSeriesUseCase) Execute(ctx context.Context, input CreateSeriesInput) (*CreateSeriesOutput, error) {
	if !input.Frequency.IsValid() {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidFrequency,
			"frequency must be 'daily', 'weekly', 'monthly' or 'yearly'",
			domainerror.ErrInvalidFrequency,
		)
	}

	if !input.Kind.IsValid() {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidEntryKind,
			"kind must be 'expense' or 'income'",
			domainerror.ErrInvalidEntryKind,
		)
	}

	if !input.Amount.IsPositive() {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeInvalidAmount,
			"amount must be a positive decimal",
			domainerror.ErrInvalidAmount,
		)
	}

	if len(input.Description) > MaxDescriptionLength {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeMissingFields,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			nil,
		)
	}

	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeEndBeforeStart,
			"end date must not precede start date",
			domainerror.ErrEndBeforeStart,
		)
	}

	category, err := uc.categoryRepo.FindByID(ctx, input.CategoryID)
	if err != nil {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeCategoryRefNotFound,
			"category not found",
			domainerror.ErrCategoryRefNotFound,
		)
	}
	if category.UserID != input.UserID {
		return nil, domainerror.NewRecurrenceError(
			domainerror.ErrCodeCategoryRefNotFound,
			"category does not belong to user",
			domainerror.ErrCategoryRefNotFound,
		)
	}

	s := entity.NewRecurringSeries(
		input.UserID,
		input.CategoryID,
		input.Amount,
		input.Kind,
		input.Description,
		input.Frequency,
		input.StartDate,
		input.EndDate,
	)

	if err := uc.seriesRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create series: %w", err)
	}

	return &CreateSeriesOutput{Series: ToSeriesOutput(s)}, nil
}
