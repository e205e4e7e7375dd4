package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
)

// CategoryRepository defines the read-side interface to the externally
// managed category collection. The engine only checks references; category
// lifecycle belongs to another service.
type CategoryRepository interface {
	// FindByID retrieves a category by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// ExistsByID reports whether a category exists.
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
