// Package catalog resolves authoritative prices from the headless commerce
// storefront API over GraphQL.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Item is the catalog's view of one purchasable variant.
type Item struct {
	ID        string
	Title     string
	UnitPrice decimal.Decimal
	Currency  string
}

// Client queries the storefront GraphQL endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(endpoint, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

const variantsQuery = `query Variants($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on ProductVariant {
      id
      title
      price { amount currencyCode }
      product { title }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type variantNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price *struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currencyCode"`
	} `json:"price"`
	Product *struct {
		Title string `json:"title"`
	} `json:"product"`
}

type variantsResponse struct {
	Data struct {
		Nodes []*variantNode `json:"nodes"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Lookup resolves ids to catalog items. Ids the catalog does not know are
// absent from the result; transport and GraphQL failures wrap
// domain.ErrUpstreamTransport.
func (c *Client) Lookup(ctx context.Context, ids []string) (map[string]Item, error) {
	out := make(map[string]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	body, err := json.Marshal(graphQLRequest{Query: variantsQuery, Variables: map[string]any{"ids": ids}})
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog: request failed", zap.Error(err))
		return nil, fmt.Errorf("catalog: %w: %v", domain.ErrUpstreamTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w: read body: %v", domain.ErrUpstreamTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog: unexpected status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("catalog: %w: status %d", domain.ErrUpstreamTransport, resp.StatusCode)
	}

	var parsed variantsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("catalog: %w: decode: %v", domain.ErrUpstreamTransport, err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		c.logger.Warn("catalog: graphql errors", zap.Strings("errors", msgs))
		return nil, fmt.Errorf("catalog: %w: %s", domain.ErrUpstreamTransport, strings.Join(msgs, "; "))
	}

	for _, node := range parsed.Data.Nodes {
		// nodes() returns null for unknown ids and an empty object for non-variants
		if node == nil || node.ID == "" || node.Price == nil {
			continue
		}
		price, err := decimal.NewFromString(node.Price.Amount)
		if err != nil {
			c.logger.Warn("catalog: unparseable price", zap.String("id", node.ID), zap.String("amount", node.Price.Amount))
			continue
		}
		title := node.Title
		if node.Product != nil && node.Product.Title != "" {
			title = node.Product.Title
			if node.Title != "" && node.Title != "Default Title" {
				title += " – " + node.Title
			}
		}
		out[node.ID] = Item{
			ID:        node.ID,
			Title:     title,
			UnitPrice: price,
			Currency:  strings.ToLower(node.Price.CurrencyCode),
		}
	}
	c.logger.Debug("catalog: resolved", zap.Int("requested", len(ids)), zap.Int("found", len(out)))
	return out, nil
}
