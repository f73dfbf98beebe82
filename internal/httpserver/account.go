package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// accountOrders trusts the customer id set by the authenticating proxy.
func (h *handlers) accountOrders(c *gin.Context) {
	customerID := strings.TrimSpace(c.GetHeader(customerIDHeader))
	if customerID == "" {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHENTICATED", Message: "customer not identified"})
		return
	}
	views, err := h.deps.Account.ListOrders(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, h.log(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}
