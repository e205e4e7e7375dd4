// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// SeriesRepository defines the interface for recurring-series persistence
// operations.
type SeriesRepository interface {
	// Create creates a new recurring series in the database.
	Create(ctx context.Context, series *entity.RecurringSeries) error

	// FindByID retrieves a series by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RecurringSeries, error)

	// FindByUser retrieves all series for a given user, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RecurringSeries, error)

	// FindActiveByUser retrieves the user's active series.
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RecurringSeries, error)

	// FindDue retrieves every active series whose materialization cursor is
	// set and not after the target date, and whose window has started.
	FindDue(ctx context.Context, target valueobject.Date) ([]*entity.RecurringSeries, error)

	// Update updates an existing series in the database.
	Update(ctx context.Context, series *entity.RecurringSeries) error

	// Delete hard-deletes a series. Ledger entries referencing it are not
	// touched; callers clear the weak references first.
	Delete(ctx context.Context, id uuid.UUID) error
}
