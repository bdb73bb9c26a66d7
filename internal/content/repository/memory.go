package repository

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepo is the in-memory repository backing the content store.
// Records are cloned on the way in and on every read, slices included, so
// callers cannot change stored state except through Update.
type MemoryRepo[T any, PT Record[T]] struct {
	mu     sync.RWMutex
	store  map[int]T
	order  []int
	nextID int
}

func NewMemoryRepo[T any, PT Record[T]]() *MemoryRepo[T, PT] {
	return &MemoryRepo[T, PT]{store: make(map[int]T), nextID: 1}
}

func (m *MemoryRepo[T, PT]) Create(_ context.Context, rec *T) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := *PT(rec).Clone()
	PT(&v).SetID(m.nextID)
	m.nextID++
	m.store[PT(&v).GetID()] = v
	m.order = append(m.order, PT(&v).GetID())
	return PT(&v).Clone(), nil
}

func (m *MemoryRepo[T, PT]) Get(_ context.Context, id int) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return PT(&v).Clone(), nil
}

func (m *MemoryRepo[T, PT]) List(_ context.Context) ([]*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*T, 0, len(m.order))
	for _, id := range m.order {
		v := m.store[id]
		out = append(out, PT(&v).Clone())
	}
	return out, nil
}

// Update applies mutate to a copy of the record and stores the result. The
// id is restored after mutate runs, so a mutation cannot move a record.
func (m *MemoryRepo[T, PT]) Update(_ context.Context, id int, mutate func(*T)) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := *PT(&cur).Clone()
	mutate(&v)
	PT(&v).SetID(id)
	m.store[id] = v
	return PT(&v).Clone(), nil
}

func (m *MemoryRepo[T, PT]) Delete(_ context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return false, nil
	}
	delete(m.store, id)
	if i := slices.Index(m.order, id); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return true, nil
}

func (m *MemoryRepo[T, PT]) Truncate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[int]T)
	m.order = nil
	m.nextID = 1
	return nil
}

// Len reports the number of stored records.
func (m *MemoryRepo[T, PT]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
