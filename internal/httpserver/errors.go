package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorResponse is the body of every non-2xx API answer.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeError maps domain errors to status codes. Unknown errors are logged and
// answered without internal detail.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		upstream   *domain.UpstreamValidationError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "VALIDATION_ERROR",
			Message: validation.Message,
			Details: gin.H{"field": validation.Field},
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, errorResponse{
			Error:   "NOT_FOUND",
			Message: "item is no longer available",
			Details: gin.H{"id": notFound.ID},
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Message: "not found"})
	case errors.As(err, &upstream):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   "UPSTREAM_VALIDATION",
			Message: upstream.Error(),
			Details: gin.H{"errors": upstream.Messages},
		})
	case errors.Is(err, domain.ErrUpstreamTransport):
		logger.Warn("http: upstream unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse{
			Error:   "UPSTREAM_UNAVAILABLE",
			Message: "checkout could not be started, please try again",
		})
	default:
		logger.Error("http: internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL", Message: "internal error"})
	}
}

func badRequest(c *gin.Context, message string, details any) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "INVALID_INPUT", Message: message, Details: details})
}
