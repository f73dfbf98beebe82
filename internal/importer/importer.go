// Package importer loads order exports of the legacy marketplace into the
// order store so they show up next to hosted checkout orders.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionPrefix marks session ids synthesised for marketplace orders.
const SessionPrefix = "mp_"

type OrderWriter interface {
	Upsert(ctx context.Context, o domain.Order) (*domain.Order, error)
}

// CSVImporter reads marketplace order exports. A row with an order_id starts
// an order; following rows without one add further items to it.
type CSVImporter struct {
	reader   *csv.Reader
	orders   OrderWriter
	currency string
	logger   *zap.Logger
}

func NewCSVImporter(r io.Reader, orders OrderWriter, defaultCurrency string, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		orders:   orders,
		currency: strings.ToLower(defaultCurrency),
		logger:   logger,
	}
}

type csvRow struct {
	OrderID   string
	Customer  string
	Email     string
	Currency  string
	Total     *decimal.Decimal
	Status    string
	CreatedAt string
	Items     []domain.LegacyItem
}

// Run parses CSV rows and upserts one order per order_id.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.OrderID != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows carry further items of the current order.
		if current != nil {
			current.Items = append(current.Items, row.Items...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("importer: done", zap.Int("orders", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return fmt.Errorf("invalid created_at for order %q: %w", row.OrderID, err)
	}
	currency := strings.ToLower(row.Currency)
	if currency == "" {
		currency = i.currency
	}

	o := domain.Order{
		SessionID:          SessionPrefix + row.OrderID,
		Source:             domain.SourceMarketplace,
		CustomerEmail:      row.Email,
		Currency:           currency,
		TotalAmountMajor:   row.Total,
		Status:             row.Status,
		MarketplaceOrderID: row.OrderID,
		LegacyItems:        row.Items,
		CreatedAt:          createdAt,
	}
	if row.Customer != "" {
		customer := row.Customer
		o.CustomerID = &customer
	}
	o.Tag()

	if _, err := i.orders.Upsert(ctx, o); err != nil {
		return fmt.Errorf("upsert order %q: %w", row.OrderID, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		OrderID:   pick(record, index, "order_id"),
		Customer:  pick(record, index, "customer_id"),
		Email:     pick(record, index, "customer_email"),
		Currency:  pick(record, index, "currency"),
		Total:     parseMajor(pick(record, index, "total_amount")),
		Status:    pick(record, index, "status"),
		CreatedAt: pick(record, index, "created_at"),
	}

	item := domain.LegacyItem{
		Title:    pick(record, index, "items.title"),
		Name:     pick(record, index, "items.name"),
		Quantity: parseQuantity(pick(record, index, "items.quantity")),
		Price:    parseMajor(pick(record, index, "items.price")),
	}
	hasItem := item.Title != "" || item.Name != "" || item.Quantity != nil || item.Price != nil
	if hasItem {
		row.Items = []domain.LegacyItem{item}
	}

	if row.OrderID == "" && !hasItem {
		return nil
	}
	return row
}

// parseMajor reads a legacy float amount. Blank, unparseable and non-finite
// values are absent.
func parseMajor(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, "'", ""), 64)
	if err != nil {
		return nil
	}
	return money.FromFloat(f).MajorPtr()
}

func parseQuantity(raw string) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", raw)
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
