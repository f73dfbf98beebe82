package httpserver

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 65536

func (h *handlers) stripeWebhook(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "Unreadable body", nil)
		return
	}

	ack, err := h.deps.Webhook.Handle(c.Request.Context(), raw, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true, "state": ack.State})
	case errors.Is(err, domain.ErrAuthenticity):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "SIGNATURE_INVALID", Message: "signature verification failed"})
	case errors.Is(err, domain.ErrMalformedEvent):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "MALFORMED_EVENT", Message: "event could not be decoded"})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "WEBHOOK_FAILED", Message: "event not processed"})
	}
}
