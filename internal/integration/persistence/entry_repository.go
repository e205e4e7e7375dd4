package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recurrent-ledger/backend/internal/application/adapter"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
	"github.com/recurrent-ledger/backend/internal/integration/persistence/model"
)

// entryRepository implements the adapter.EntryRepository interface.
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository instance.
func NewEntryRepository(db *gorm.DB) adapter.EntryRepository {
	return &entryRepository{
		db: db,
	}
}

// Create creates a new ledger entry in the database.
func (r *entryRepository) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	entryModel := model.LedgerEntryFromEntity(entry)
	result := r.db.WithContext(ctx).Create(entryModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves an entry by its ID.
func (r *entryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LedgerEntry, error) {
	var entryModel model.LedgerEntryModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&entryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrEntryNotFound
		}
		return nil, result.Error
	}
	return entryModel.ToEntity(), nil
}

// FindBySeriesAndDate retrieves the entry covering one occurrence of a
// series, overrides first.
func (r *entryRepository) FindBySeriesAndDate(ctx context.Context, seriesID uuid.UUID, date valueobject.Date) (*entity.LedgerEntry, error) {
	var entryModel model.LedgerEntryModel
	result := r.db.WithContext(ctx).
		Where("series_id = ? AND date = ?", seriesID, date.ToTime()).
		Order("is_override DESC").
		First(&entryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrEntryNotFound
		}
		return nil, result.Error
	}
	return entryModel.ToEntity(), nil
}

// FindByUserAndRange retrieves all entries for the user within the inclusive
// date range, date descending.
func (r *entryRepository) FindByUserAndRange(ctx context.Context, userID uuid.UUID, start, end valueobject.Date) ([]*entity.LedgerEntry, error) {
	var entryModels []model.LedgerEntryModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("date >= ? AND date <= ?", start.ToTime(), end.ToTime()).
		Order("date DESC, created_at DESC").
		Find(&entryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]*entity.LedgerEntry, len(entryModels))
	for i, em := range entryModels {
		entries[i] = em.ToEntity()
	}
	return entries, nil
}

// Update updates an existing entry in the database.
func (r *entryRepository) Update(ctx context.Context, entry *entity.LedgerEntry) error {
	entryModel := model.LedgerEntryFromEntity(entry)
	result := r.db.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("id = ?", entry.ID).
		Select("user_id", "category_id", "amount", "kind", "description", "date", "series_id", "is_override", "updated_at").
		Updates(entryModel)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrEntryNotFound
	}
	return nil
}

// Delete soft-deletes an entry by ID.
func (r *entryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.LedgerEntryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrEntryNotFound
	}
	return nil
}

// DeleteBySeriesAndDate deletes the entry covering one occurrence of a
// series, if any. Absence is not an error.
func (r *entryRepository) DeleteBySeriesAndDate(ctx context.Context, seriesID uuid.UUID, date valueobject.Date) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("series_id = ? AND date = ?", seriesID, date.ToTime()).
		Delete(&model.LedgerEntryModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClearSeriesRef detaches all entries from a series, keeping the entries.
func (r *entryRepository) ClearSeriesRef(ctx context.Context, seriesID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.LedgerEntryModel{}).
		Where("series_id = ?", seriesID).
		Update("series_id", nil)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
