// Package cart holds the client-owned shopping cart. A Store is an explicit
// object over an injected Storage; there is no package-level cart state.
package cart

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultKey is the storage key the storefront persists its cart under.
const DefaultKey = "cart"

// Store is an ordered collection of cart lines with at most one line per id.
// Every mutation writes the whole cart through to storage before it becomes
// visible to readers.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	key     string
	lines   []domain.CartLine
	logger  *zap.Logger
}

// Open loads the cart persisted under key. Missing or unreadable data yields an
// empty cart; the failure is logged and never returned.
func Open(storage Storage, key string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = DefaultKey
	}
	s := &Store{storage: storage, key: key, logger: logger}

	raw, err := storage.Load(key)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			logger.Warn("cart: load failed, starting empty", zap.String("key", key), zap.Error(err))
		}
		return s
	}
	lines, err := decode(raw)
	if err != nil {
		logger.Warn("cart: discarding unparseable snapshot", zap.String("key", key), zap.Error(err))
		return s
	}
	s.lines = lines
	return s
}

// AddItem merges into the existing line for id or appends a new one. The
// first title and unit price recorded for an id are kept. qty < 1 adds one.
func (s *Store) AddItem(id, title string, unitPrice decimal.Decimal, qty int) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.NewValidation("id", "item id required")
	}
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyLines()
	if i := indexOf(next, id); i >= 0 {
		next[i].Quantity += qty
	} else {
		next = append(next, domain.CartLine{ID: id, Title: title, UnitPrice: unitPrice, Quantity: qty})
	}
	return s.commit(next)
}

// RemoveItem deletes the line for id. Absent ids are a no-op.
func (s *Store) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, id)
	if i < 0 {
		return nil
	}
	next := s.copyLines()
	next = append(next[:i], next[i+1:]...)
	return s.commit(next)
}

// SetQuantity replaces the quantity for id in place. qty <= 0 removes the line.
func (s *Store) SetQuantity(id string, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, id)
	if i < 0 {
		return nil
	}
	next := s.copyLines()
	next[i].Quantity = qty
	return s.commit(next)
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(nil)
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLines()
}

// TotalQuantity is the sum of all quantities.
func (s *Store) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// TotalAmount is the sum of unit price × quantity.
func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Total())
	}
	return total
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// commit persists next and swaps it in. On failure the previous state stays visible.
func (s *Store) commit(next []domain.CartLine) error {
	raw, err := encode(next)
	if err != nil {
		return err
	}
	if err := s.storage.Save(s.key, raw); err != nil {
		s.logger.Error("cart: persist failed", zap.String("key", s.key), zap.Error(err))
		return err
	}
	s.lines = next
	return nil
}

func (s *Store) copyLines() []domain.CartLine {
	if len(s.lines) == 0 {
		return nil
	}
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func indexOf(lines []domain.CartLine, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func encode(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

func decode(raw []byte) ([]domain.CartLine, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	// Restore the one-line-per-id and quantity >= 1 invariants.
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		l.ID = strings.TrimSpace(l.ID)
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		if i := indexOf(out, l.ID); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
