// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// RecurringSeriesModel represents the recurring_series table in the database.
// Series rows are hard-deleted; entries keep living through their weak
// back-reference.
type RecurringSeriesModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID     uuid.UUID       `gorm:"type:uuid;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Kind           string          `gorm:"type:varchar(10);not null"`
	Description    string          `gorm:"type:varchar(255)"`
	Frequency      string          `gorm:"type:varchar(10);not null"`
	StartDate      time.Time       `gorm:"type:date;not null"`
	EndDate        *time.Time      `gorm:"type:date"`
	NextOccurrence *time.Time      `gorm:"type:date;index"`
	IsActive       bool            `gorm:"default:true;index"`
	CreatedAt      time.Time       `gorm:"not null"`

	// Relationships (not loaded by default, use Preload)
	Category *CategoryModel `gorm:"foreignKey:CategoryID;references:ID"`
	User     *UserModel     `gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the table name for the RecurringSeriesModel.
func (RecurringSeriesModel) TableName() string {
	return "recurring_series"
}

// ToEntity converts a RecurringSeriesModel to a domain RecurringSeries entity.
func (m *RecurringSeriesModel) ToEntity() *entity.RecurringSeries {
	return &entity.RecurringSeries{
		ID:             m.ID,
		UserID:         m.UserID,
		CategoryID:     m.CategoryID,
		Amount:         m.Amount,
		Kind:           entity.EntryKind(m.Kind),
		Description:    m.Description,
		Frequency:      entity.Frequency(m.Frequency),
		StartDate:      valueobject.FromTime(m.StartDate),
		EndDate:        dateFromTimePtr(m.EndDate),
		NextOccurrence: dateFromTimePtr(m.NextOccurrence),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
}

// RecurringSeriesFromEntity creates a RecurringSeriesModel from a domain entity.
func RecurringSeriesFromEntity(s *entity.RecurringSeries) *RecurringSeriesModel {
	return &RecurringSeriesModel{
		ID:             s.ID,
		UserID:         s.UserID,
		CategoryID:     s.CategoryID,
		Amount:         s.Amount,
		Kind:           string(s.Kind),
		Description:    s.Description,
		Frequency:      string(s.Frequency),
		StartDate:      s.StartDate.ToTime(),
		EndDate:        dateToTimePtr(s.EndDate),
		NextOccurrence: dateToTimePtr(s.NextOccurrence),
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
	}
}

// dateFromTimePtr converts an optional SQL date into an optional calendar date.
func dateFromTimePtr(t *time.Time) *valueobject.Date {
	if t == nil {
		return nil
	}
	d := valueobject.FromTime(*t)
	return &d
}

// dateToTimePtr converts an optional calendar date into an optional SQL date.
func dateToTimePtr(d *valueobject.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.ToTime()
	return &t
}
