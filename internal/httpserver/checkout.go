package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkoutLine struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// checkoutRequest is optional; without lines the cookie cart is checked out.
// Submitted prices are not accepted.
type checkoutRequest struct {
	Lines []checkoutLine `json:"lines"`
	Email string         `json:"email"`
}

func (h *handlers) initiateCheckout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	in := checkout.InitiateInput{
		CustomerID:    strings.TrimSpace(c.GetHeader(customerIDHeader)),
		CustomerEmail: strings.TrimSpace(req.Email),
	}
	if len(req.Lines) > 0 {
		for _, l := range req.Lines {
			in.Lines = append(in.Lines, domain.CartLine{ID: l.ID, Title: l.Title, Quantity: l.Quantity})
		}
	} else {
		in.Lines = h.openCart(c).Lines()
	}

	url, err := h.deps.Checkout.Initiate(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// checkoutSuccess clears the cart only once the provider reports the session
// paid for the caller.
func (h *handlers) checkoutSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	customerID := strings.TrimSpace(c.GetHeader(customerIDHeader))
	paid, err := h.deps.Checkout.ConfirmSuccess(c.Request.Context(), sessionID, customerID)
	if err != nil {
		writeError(c, h.log(c), err)
		return
	}
	if !paid {
		c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "paid": false, "cartCleared": false})
		return
	}
	if err := h.openCart(c).Clear(); err != nil {
		h.log(c).Warn("checkout: clear cart failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "paid": true, "cartCleared": true})
}
