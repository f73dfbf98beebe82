package httpserver

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	cartCookieMaxAge = 30 * 24 * 60 * 60
	// maxCartCookieBytes bounds name plus encoded value. Browsers drop
	// cookies past about 4096 bytes including attributes.
	maxCartCookieBytes = 4000
)

// cookieStorage keeps the cart snapshot in a single browser cookie. Values
// saved during a request shadow the request's cookie for later loads.
type cookieStorage struct {
	c       *gin.Context
	secure  bool
	written map[string][]byte
}

func newCookieStorage(c *gin.Context, secure bool) *cookieStorage {
	return &cookieStorage{c: c, secure: secure, written: make(map[string][]byte)}
}

func (s *cookieStorage) Load(key string) ([]byte, error) {
	if data, ok := s.written[key]; ok {
		return data, nil
	}
	value, err := s.c.Cookie(key)
	if err != nil || value == "" {
		return nil, cart.ErrNoData
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("cart cookie: %w", err)
	}
	return data, nil
}

// Save refuses snapshots the browser would silently discard.
func (s *cookieStorage) Save(key string, data []byte) error {
	value := base64.RawURLEncoding.EncodeToString(data)
	if len(key)+1+len(value) > maxCartCookieBytes {
		return domain.NewValidation("cart", "cart is too large to store, remove items first")
	}
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, cartCookieMaxAge, "/", "", s.secure, true)
	s.written[key] = append([]byte(nil), data...)
	return nil
}

func (h *handlers) openCart(c *gin.Context) *cart.Store {
	return cart.Open(newCookieStorage(c, h.opts.CartCookieSecure), h.opts.CartCookieName, h.log(c))
}
