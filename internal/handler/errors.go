package handler

import (
	"errors"
	"net/http"

	"erp-backend/internal/service"
	"erp-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// respondError maps service errors to HTTP status codes and writes the
// standard error envelope
func respondError(c *gin.Context, err error) {
	var missingErr *service.MissingFieldsError
	var remainingErr *service.QuantityExceedsRemainingError
	var availableErr *service.QuantityExceedsAvailableError
	var voidedErr *service.VoidedInvoiceError
	var cancelledErr *service.CancelledOrderError
	var batchErr *service.StockInBatchError

	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.As(err, &batchErr):
		c.JSON(http.StatusBadRequest, response.Response{
			Status:     "error",
			StatusCode: http.StatusBadRequest,
			Error:      batchErr.Error(),
			Data:       gin.H{"items": batchErr.Items},
		})
	case errors.As(err, &missingErr),
		errors.As(err, &remainingErr),
		errors.As(err, &availableErr),
		errors.As(err, &voidedErr),
		errors.As(err, &cancelledErr):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// currentUserID extracts the authenticated user's ID from the gin context.
// Returns nil when the value is absent or malformed.
func currentUserID(c *gin.Context) *uuid.UUID {
	raw := c.GetString("userID")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid id: must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
