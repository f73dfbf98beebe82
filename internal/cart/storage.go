package cart

import (
	"errors"
	"sync"
)

// ErrNoData is returned by Storage.Load when nothing has been stored under a key.
var ErrNoData = errors.New("cart: no stored data")

// Storage is the durable client-side record the cart serialises to.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// MemoryStorage keeps snapshots in process memory. Several stores may share one.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrNoData
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.data[key] = buf
	return nil
}
