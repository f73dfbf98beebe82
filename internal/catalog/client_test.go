package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
)

func TestLookup_ResolvesVariants(t *testing.T) {
	var gotToken string
	var gotIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Storefront-Access-Token")
		var req struct {
			Variables struct {
				IDs []string `json:"ids"`
			} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotIDs = req.Variables.IDs
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"nodes":[
			{"id":"gid://shop/ProductVariant/1","title":"Default Title","price":{"amount":"49.9","currencyCode":"CHF"},"product":{"title":"Kopfhörer"}},
			null,
			{"id":"gid://shop/ProductVariant/3","title":"Schwarz","price":{"amount":"19.00","currencyCode":"CHF"},"product":{"title":"Hülle"}}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", time.Second, nil)
	items, err := c.Lookup(context.Background(), []string{"gid://shop/ProductVariant/1", "gid://shop/ProductVariant/2", "gid://shop/ProductVariant/3"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gotToken != "secret-token" || len(gotIDs) != 3 {
		t.Fatalf("unexpected request token=%q ids=%v", gotToken, gotIDs)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	first := items["gid://shop/ProductVariant/1"]
	if first.Title != "Kopfhörer" || first.UnitPrice.StringFixed(2) != "49.90" || first.Currency != "chf" {
		t.Fatalf("unexpected item %+v", first)
	}
	if third := items["gid://shop/ProductVariant/3"]; third.Title != "Hülle – Schwarz" {
		t.Fatalf("unexpected title %q", third.Title)
	}
	if _, ok := items["gid://shop/ProductVariant/2"]; ok {
		t.Fatalf("unknown id must be absent")
	}
}

func TestLookup_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, nil)
	_, err := c.Lookup(context.Background(), []string{"x"})
	if !errors.Is(err, domain.ErrUpstreamTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestLookup_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Throttled"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, nil)
	_, err := c.Lookup(context.Background(), []string{"x"})
	if !errors.Is(err, domain.ErrUpstreamTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestLookup_EmptyIDsSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL, "", time.Second, nil).Lookup(context.Background(), nil)
	if err != nil || len(items) != 0 || called {
		t.Fatalf("expected no request, got items=%v err=%v called=%v", items, err, called)
	}
}
