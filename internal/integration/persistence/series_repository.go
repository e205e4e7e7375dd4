// Package persistence implements repository interfaces for database operations.
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

// seriesRepository implements the adapter.SeriesRepository interface.
type seriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a new series repository instance.
func NewSeriesRepository(db *gorm.DB) adapter.SeriesRepository {
	return &seriesRepository{
		db: db,
	}
}

// Create creates a new recurring series in the database.
func (r *seriesRepository) Create(ctx context.Context, series *entity.RecurringSeries) error {
	seriesModel := model.RecurringSeriesFromEntity(series)
	result := r.db.WithContext(ctx).Create(seriesModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a series by its ID.
func (r *seriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RecurringSeries, error) {
	var seriesModel model.RecurringSeriesModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&seriesModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSeriesNotFound
		}
		return nil, result.Error
	}
	return seriesModel.ToEntity(), nil
}

// FindByUser retrieves all series for a given user, newest first.
func (r *seriesRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RecurringSeries, error) {
	var seriesModels []model.RecurringSeriesModel
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&seriesModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toSeriesEntities(seriesModels), nil
}

// FindActiveByUser retrieves the user's active series.
func (r *seriesRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.RecurringSeries, error) {
	var seriesModels []model.RecurringSeriesModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&seriesModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toSeriesEntities(seriesModels), nil
}

// FindDue retrieves every active series whose cursor is set and not after the
// target date, and whose window has started.
func (r *seriesRepository) FindDue(ctx context.Context, target valueobject.Date) ([]*entity.RecurringSeries, error) {
	var seriesModels []model.RecurringSeriesModel
	targetTime := target.ToTime()
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_occurrence IS NOT NULL AND next_occurrence <= ?", targetTime).
		Where("start_date <= ?", targetTime).
		Order("created_at ASC").
		Find(&seriesModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toSeriesEntities(seriesModels), nil
}

// Update updates an existing series in the database.
func (r *seriesRepository) Update(ctx context.Context, series *entity.RecurringSeries) error {
	seriesModel := model.RecurringSeriesFromEntity(series)
	// Save with Select("*") so nil-valued columns (cleared cursor, cleared
	// end date) are written out instead of being skipped as zero values.
	result := r.db.WithContext(ctx).
		Model(&model.RecurringSeriesModel{}).
		Where("id = ?", series.ID).
		Select("*").
		Updates(seriesModel)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrSeriesNotFound
	}
	return nil
}

// Delete hard-deletes a series.
func (r *seriesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.RecurringSeriesModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrSeriesNotFound
	}
	return nil
}

func toSeriesEntities(models []model.RecurringSeriesModel) []*entity.RecurringSeries {
	series := make([]*entity.RecurringSeries, len(models))
	for i, m := range models {
		series[i] = m.ToEntity()
	}
	return series
}
