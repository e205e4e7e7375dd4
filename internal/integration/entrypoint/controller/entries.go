package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recurrent-ledger/backend/internal/application/usecase/view"
	domainerror "github.com/recurrent-ledger/backend/internal/domain/error"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/middleware"
)

// EntriesController handles effective-view endpoints.
type EntriesController struct {
	effectiveViewUseCase *view.EffectiveViewUseCase
}

// NewEntriesController creates a new entries controller instance.
func NewEntriesController(effectiveViewUseCase *view.EffectiveViewUseCase) *EntriesController {
	return &EntriesController{effectiveViewUseCase: effectiveViewUseCase}
}

// GetEffectiveView handles GET /entries/effective requests. The window is
// given by required start_date and end_date query parameters.
func (c *EntriesController) GetEffectiveView(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthorized(ctx)
		return
	}

	rawStart := ctx.Query("start_date")
	rawEnd := ctx.Query("end_date")
	if rawStart == "" || rawEnd == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "start_date and end_date query parameters are required",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	startDate, err := valueobject.ParseDate(rawStart)
	if err != nil {
		respondInvalidDate(ctx, "start_date")
		return
	}
	endDate, err := valueobject.ParseDate(rawEnd)
	if err != nil {
		respondInvalidDate(ctx, "end_date")
		return
	}

	output, err := c.effectiveViewUseCase.Execute(ctx.Request.Context(), view.EffectiveViewInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		respondUseCaseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToEffectiveViewResponse(output))
}
