package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/money"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	Lines         []domain.CartLine `json:"lines"`
	TotalQuantity int               `json:"totalQuantity"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	TotalDisplay  string            `json:"totalDisplay"`
}

type addItemRequest struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handlers) cartBody(s *cart.Store) cartResponse {
	total := s.TotalAmount()
	lines := s.Lines()
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		Lines:         lines,
		TotalQuantity: s.TotalQuantity(),
		TotalAmount:   total,
		TotalDisplay:  money.Format(h.opts.Currency, money.MajorUnits(total)),
	}
}

// itemID reads the catch-all id segment. Catalog ids such as
// gid://shop/ProductVariant/1 contain slashes.
func (h *handlers) itemID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(strings.TrimPrefix(c.Param("id"), "/"))
	if id == "" {
		writeError(c, h.log(c), domain.NewValidation("id", "item id required"))
		return "", false
	}
	return id, true
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartBody(h.openCart(c)))
}

func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	s := h.openCart(c)
	if err := s.AddItem(req.ID, req.Title, req.UnitPrice, req.Quantity); err != nil {
		writeError(c, h.log(c), err)
		return
	}
	c.JSON(http.StatusOK, h.cartBody(s))
}

func (h *handlers) setCartItemQuantity(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "Invalid request body", gin.H{"field": "quantity"})
		return
	}
	s := h.openCart(c)
	if err := s.SetQuantity(id, *req.Quantity); err != nil {
		writeError(c, h.log(c), err)
		return
	}
	c.JSON(http.StatusOK, h.cartBody(s))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	id, ok := h.itemID(c)
	if !ok {
		return
	}
	s := h.openCart(c)
	if err := s.RemoveItem(id); err != nil {
		writeError(c, h.log(c), err)
		return
	}
	c.JSON(http.StatusOK, h.cartBody(s))
}

func (h *handlers) clearCart(c *gin.Context) {
	s := h.openCart(c)
	if err := s.Clear(); err != nil {
		writeError(c, h.log(c), err)
		return
	}
	c.JSON(http.StatusOK, h.cartBody(s))
}
