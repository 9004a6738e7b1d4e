package cache

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// Memo holds values loaded once per key for the life of the process.
// Concurrent first calls for a key run the loader once.
type Memo[T any] struct {
	mu    sync.Mutex
	items *gocache.Cache
}

// NewMemo creates an empty memo that never expires entries
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{
		items: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the value for key, calling load on first use.
// Failed loads are not remembered.
func (m *Memo[T]) Get(key string, load func() (T, error)) (T, error) {
	if v, ok := m.items.Get(key); ok {
		return v.(T), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.items.Get(key); ok {
		return v.(T), nil
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	m.items.Set(key, v, gocache.NoExpiration)
	return v, nil
}

// Len returns the number of memoized keys
func (m *Memo[T]) Len() int {
	return m.items.ItemCount()
}
