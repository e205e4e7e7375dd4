package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/application/usecase/series"
	"github.com/recurrent-ledger/backend/internal/application/usecase/view"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// CreateSeriesRequest represents the request body for creating a series.
type CreateSeriesRequest struct {
	CategoryID  string `json:"category_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	Description string `json:"description"`
	Frequency   string `json:"frequency" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date"`
}

// EditSeriesRequest represents the request body for a scoped series edit.
type EditSeriesRequest struct {
	EffectiveDate string             `json:"effective_date" binding:"required"`
	Scope         string             `json:"scope" binding:"required"`
	Updates       SeriesUpdatesInput `json:"updates"`
}

// SeriesUpdatesInput carries the partial field updates of a scoped edit.
type SeriesUpdatesInput struct {
	CategoryID  *string `json:"category_id"`
	Amount      *string `json:"amount"`
	Kind        *string `json:"kind"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
	EndDate     *string `json:"end_date"`
}

// GenerateRequest represents the request body for triggering generation.
type GenerateRequest struct {
	TargetDate     string `json:"target_date"`
	MaxCatchUpDays int    `json:"max_catch_up_days"`
}

// GenerateResponse represents the aggregate result of a generation run.
type GenerateResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// SeriesResponse represents a recurring series.
type SeriesResponse struct {
	ID             string    `json:"id"`
	CategoryID     string    `json:"category_id"`
	Amount         string    `json:"amount"`
	Kind           string    `json:"kind"`
	Description    string    `json:"description"`
	Frequency      string    `json:"frequency"`
	StartDate      string    `json:"start_date"`
	EndDate        *string   `json:"end_date,omitempty"`
	NextOccurrence *string   `json:"next_occurrence,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// EditSeriesResponse represents the result of a scoped edit. NewSeries is set
// only when the edit split the series.
type EditSeriesResponse struct {
	Series    SeriesResponse  `json:"series"`
	NewSeries *SeriesResponse `json:"new_series,omitempty"`
}

// DeleteSeriesResponse represents the result of a scoped delete.
type DeleteSeriesResponse struct {
	Deleted bool `json:"deleted"`
}

// SeriesListResponse represents a list of series.
type SeriesListResponse struct {
	Series []SeriesResponse `json:"series"`
}

// EffectiveEntryResponse represents one entry of the effective view.
type EffectiveEntryResponse struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"category_id"`
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	SeriesID    *string `json:"series_id,omitempty"`
	IsOverride  bool    `json:"is_override"`
	IsVirtual   bool    `json:"is_virtual"`
}

// EffectiveViewResponse represents the merged effective view.
type EffectiveViewResponse struct {
	Entries []EffectiveEntryResponse `json:"entries"`
}

// ToSeriesResponse converts a use-case series output to its DTO.
func ToSeriesResponse(s *series.SeriesOutput) SeriesResponse {
	return SeriesResponse{
		ID:             s.ID.String(),
		CategoryID:     s.CategoryID.String(),
		Amount:         s.Amount.String(),
		Kind:           string(s.Kind),
		Description:    s.Description,
		Frequency:      string(s.Frequency),
		StartDate:      s.StartDate.String(),
		EndDate:        dateString(s.EndDate),
		NextOccurrence: dateString(s.NextOccurrence),
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
	}
}

// ToEffectiveViewResponse converts a use-case view output to its DTO.
func ToEffectiveViewResponse(output *view.EffectiveViewOutput) EffectiveViewResponse {
	entries := make([]EffectiveEntryResponse, len(output.Entries))
	for i, e := range output.Entries {
		var seriesID *string
		if e.SeriesID != nil {
			s := e.SeriesID.String()
			seriesID = &s
		}
		entries[i] = EffectiveEntryResponse{
			ID:          e.ID.String(),
			CategoryID:  e.CategoryID.String(),
			Amount:      e.Amount.String(),
			Kind:        string(e.Kind),
			Description: e.Description,
			Date:        e.Date.String(),
			SeriesID:    seriesID,
			IsOverride:  e.IsOverride,
			IsVirtual:   e.IsVirtual,
		}
	}
	return EffectiveViewResponse{Entries: entries}
}

// ToSeriesUpdates parses the partial update payload into use-case updates.
func (in SeriesUpdatesInput) ToSeriesUpdates() (series.SeriesUpdates, error) {
	var updates series.SeriesUpdates

	if in.CategoryID != nil {
		id, err := uuid.Parse(*in.CategoryID)
		if err != nil {
			return updates, err
		}
		updates.CategoryID = &id
	}
	if in.Amount != nil {
		amount, err := decimal.NewFromString(*in.Amount)
		if err != nil {
			return updates, err
		}
		updates.Amount = &amount
	}
	if in.Kind != nil {
		kind := entity.EntryKind(*in.Kind)
		updates.Kind = &kind
	}
	if in.Description != nil {
		updates.Description = in.Description
	}
	if in.Frequency != nil {
		frequency := entity.Frequency(*in.Frequency)
		updates.Frequency = &frequency
	}
	if in.EndDate != nil {
		end, err := valueobject.ParseDate(*in.EndDate)
		if err != nil {
			return updates, err
		}
		updates.EndDate = &end
	}

	return updates, nil
}

func dateString(d *valueobject.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
