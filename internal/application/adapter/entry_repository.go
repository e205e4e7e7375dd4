package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// EntryRepository defines the interface for ledger-entry persistence operations.
type EntryRepository interface {
	// Create creates a new ledger entry in the database.
	Create(ctx context.Context, entry *entity.LedgerEntry) error

	// FindByID retrieves an entry by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LedgerEntry, error)

	// FindBySeriesAndDate retrieves the entry covering one occurrence of a
	// series. When both an override and a generated entry exist for the pair
	// the override is returned; returns ErrEntryNotFound when neither exists.
	FindBySeriesAndDate(ctx context.Context, seriesID uuid.UUID, date valueobject.Date) (*entity.LedgerEntry, error)

	// FindByUserAndRange retrieves all entries for the user within the
	// inclusive date range, date descending.
	FindByUserAndRange(ctx context.Context, userID uuid.UUID, start, end valueobject.Date) ([]*entity.LedgerEntry, error)

	// Update updates an existing entry in the database.
	Update(ctx context.Context, entry *entity.LedgerEntry) error

	// Delete deletes an entry by ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBySeriesAndDate deletes the entry covering one occurrence of a
	// series, if any. Reports whether an entry was removed; absence is not
	// an error.
	DeleteBySeriesAndDate(ctx context.Context, seriesID uuid.UUID, date valueobject.Date) (bool, error)

	// ClearSeriesRef detaches all entries from a series by setting their
	// back-reference to absent. Entries themselves are retained. Returns the
	// number of entries detached.
	ClearSeriesRef(ctx context.Context, seriesID uuid.UUID) (int64, error)
}
