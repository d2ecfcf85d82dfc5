package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// Backend is the store surface Memory wraps. *Store satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
}

// Memory layers an in-process map over a durable backend so concurrent tasks
// resolving the same key within one run never touch the database twice.
// Writes go through to the backend; the hot layer itself never expires
// because durable entries don't either.
type Memory struct {
	backend Backend
	hot     *gocache.Cache
}

// NewMemory wraps backend with a hot layer.
func NewMemory(backend Backend) *Memory {
	return &Memory{
		backend: backend,
		hot:     gocache.New(gocache.NoExpiration, 0),
	}
}

// Get consults the hot layer first, then the backend, populating the hot
// layer on a backend hit.
func (m *Memory) Get(ctx context.Context, key string) (*Entry, bool, error) {
	if cached, found := m.hot.Get(key); found {
		entry := cached.(Entry)
		return &entry, true, nil
	}
	entry, found, err := m.backend.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	m.hot.Set(key, *entry, gocache.NoExpiration)
	return entry, true, nil
}

// Put writes through to the backend and refreshes the hot layer.
func (m *Memory) Put(ctx context.Context, entry Entry) error {
	if err := m.backend.Put(ctx, entry); err != nil {
		return err
	}
	m.hot.Set(entry.Key, entry, gocache.NoExpiration)
	return nil
}

// Delete removes the entry from both layers.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := m.backend.Delete(ctx, key); err != nil {
		return err
	}
	m.hot.Delete(key)
	return nil
}
