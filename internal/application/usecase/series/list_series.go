package series

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
)

// ListSeriesInput represents the input for listing a user's series.
type ListSeriesInput struct {
	UserID uuid.UUID
}

// ListSeriesOutput represents the output of listing series.
type ListSeriesOutput struct {
	Series []*SeriesOutput
}

// ListSeriesUseCase handles listing recurring series.
type ListSeriesUseCase struct {
	seriesRepo adapter.SeriesRepository
}

// NewListSeriesUseCase creates a new ListSeriesUseCase instance.
func NewListSeriesUseCase(seriesRepo adapter.SeriesRepository) *ListSeriesUseCase {
	return &ListSeriesUseCase{seriesRepo: seriesRepo}
}

// Execute retrieves all series belonging to the user.
func (uc *ListSeriesUseCase) Execute(ctx context.Context, input ListSeriesInput) (*ListSeriesOutput, error) {
	all, err := uc.seriesRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	output := &ListSeriesOutput{
		Series: make([]*SeriesOutput, len(all)),
	}
	for i, s := range all {
		output.Series[i] = ToSeriesOutput(s)
	}
	return output, nil
}
