package controller

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/recurrent-ledger/backend/internal/application/usecase/generation"
	"github.com/recurrent-ledger/backend/internal/application/usecase/series"
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/middleware"
)

// RecurringController handles recurring-series endpoints.
type RecurringController struct {
	createUseCase   *series.CreateSeriesUseCase
	listUseCase     *series.ListSeriesUseCase
	editUseCase     *series.EditSeriesUseCase
	deleteUseCase   *series.DeleteSeriesUseCase
	generateUseCase *generation.GenerateUseCase
}

// NewRecurringController creates a new recurring controller instance.
func NewRecurringController(
	createUseCase *series.CreateSeriesUseCase,
	listUseCase *series.ListSeriesUseCase,
	editUseCase *series.EditSeriesUseCase,
	deleteUseCase *series.DeleteSeriesUseCase,
	generateUseCase *generation.GenerateUseCase,
) *RecurringController {
	return &RecurringController{
		createUseCase:   createUseCase,
		listUseCase:     listUseCase,
		editUseCase:     editUseCase,
		deleteUseCase:   deleteUseCase,
		generateUseCase: generateUseCase,
	}
}

// Create handles POST /recurring requests.
func (c *RecurringController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthorized(ctx)
		return
	}

	var req dto.CreateSeriesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid category_id",
			Code:  string(domainerror.ErrCodeCategoryRefNotFound),
		})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid amount",
			Code:  string(domainerror.ErrCodeInvalidAmount),
		})
		return
	}

	startDate, err := valueobject.ParseDate(req.StartDate)
	if err != nil {
		respondInvalidDate(ctx, "start_date")
		return
	}

	var endDate *valueobject.Date
	if req.EndDate != "" {
		end, err := valueobject.ParseDate(req.EndDate)
		if err != nil {
			respondInvalidDate(ctx, "end_date")
			return
		}
		endDate = &end
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), series.CreateSeriesInput{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Kind:        entity.EntryKind(req.Kind),
		Description: req.Description,
		Frequency:   entity.Frequency(req.Frequency),
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSeriesResponse(output.Series))
}

// List handles GET /recurring requests.
func (c *RecurringController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthorized(ctx)
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), series.ListSeriesInput{UserID: userID})
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}

	response := dto.SeriesListResponse{
		Series: make([]dto.SeriesResponse, len(output.Series)),
	}
	for i, s := range output.Series {
		response.Series[i] = dto.ToSeriesResponse(s)
	}
	ctx.JSON(http.StatusOK, response)
}

// Edit handles PATCH /recurring/:id requests.
func (c *RecurringController) Edit(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthorized(ctx)
		return
	}

	seriesID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid series id",
			Code:  string(domainerror.ErrCodeSeriesNotFound),
		})
		return
	}

	var req dto.EditSeriesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	effectiveDate, err := valueobject.ParseDate(req.EffectiveDate)
	if err != nil {
		respondInvalidDate(ctx, "effective_date")
		return
	}

	scope, err := valueobject.ParseEditScope(req.Scope)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Scope must be 'single', 'future' or 'all'",
			Code:  string(domainerror.ErrCodeInvalidScope),
		})
		return
	}

	updates, err := req.Updates.ToSeriesUpdates()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid updates: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.editUseCase.Execute(ctx.Request.Context(), series.EditSeriesInput{
		UserID:        userID,
		SeriesID:      seriesID,
		EffectiveDate: effectiveDate,
		Scope:         scope,
		Updates:       updates,
	})
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}

	response := dto.EditSeriesResponse{
		Series: dto.ToSeriesResponse(output.Series),
	}
	if output.NewSeries != nil {
		newSeries := dto.ToSeriesResponse(output.NewSeries)
		response.NewSeries = &newSeries
	}
	ctx.JSON(http.StatusOK, response)
}

// Delete handles DELETE /recurring/:id requests. Effective date and scope
// arrive as query parameters.
func (c *RecurringController) Delete(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthorized(ctx)
		return
	}

	seriesID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid series id",
			Code:  string(domainerror.ErrCodeSeriesNotFound),
		})
		return
	}

	scope, err := valueobject.ParseEditScope(ctx.DefaultQuery("scope", "single"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Scope must be 'single', 'future' or 'all'",
			Code:  string(domainerror.ErrCodeInvalidScope),
		})
		return
	}

	effectiveDate := valueobject.FromTime(time.Now().UTC())
	if raw := ctx.Query("effective_date"); raw != "" {
		effectiveDate, err = valueobject.ParseDate(raw)
		if err != nil {
			respondInvalidDate(ctx, "effective_date")
			return
		}
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), series.DeleteSeriesInput{
		UserID:        userID,
		SeriesID:      seriesID,
		EffectiveDate: effectiveDate,
		Scope:         scope,
	})
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DeleteSeriesResponse{Deleted: output.Deleted})
}

// Generate handles POST /recurring/generate requests.
func (c *RecurringController) Generate(ctx *gin.Context) {
	if _, ok := middleware.GetUserIDFromContext(ctx); !ok {
		respondUnauthorized(ctx)
		return
	}

	var req dto.GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	targetDate := valueobject.FromTime(time.Now().UTC())
	if req.TargetDate != "" {
		var err error
		targetDate, err = valueobject.ParseDate(req.TargetDate)
		if err != nil {
			respondInvalidDate(ctx, "target_date")
			return
		}
	}

	output, err := c.generateUseCase.Execute(ctx.Request.Context(), generation.GenerateInput{
		TargetDate:     targetDate,
		MaxCatchUpDays: req.MaxCatchUpDays,
	})
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.GenerateResponse{
		Created: output.Created,
		Skipped: output.Skipped,
	})
}

func respondUnauthorized(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
	})
}

func respondInvalidDate(ctx *gin.Context, field string) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid " + field + ". Use YYYY-MM-DD",
		Code:  string(domainerror.ErrCodeInvalidDate),
	})
}

// respondUseCaseError maps domain error classes onto HTTP statuses:
// validation and reference failures are client errors, missing aggregates
// are 404s, everything else is a 500.
func respondUseCaseError(ctx *gin.Context, err error) {
	var recErr *domainerror.RecurrenceError
	code := ""
	if errors.As(err, &recErr) {
		code = string(recErr.Code)
	}

	switch {
	case domainerror.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
	case domainerror.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
	default:
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Internal server error",
		})
	}
}
