package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps sessions in process. Used when neither Redis nor
// Mongo is configured; sessions do not survive a restart.
type MemoryRepository struct {
	mu   sync.Mutex
	byRT map[string]Session
	now  func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byRT: map[string]Session{}, now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}
	r.byRT[s.RefreshToken] = *s
	return nil
}

func (r *MemoryRepository) GetByRefresh(_ context.Context, refresh string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byRT[refresh]
	if !ok {
		return nil, nil
	}
	if s.expired(r.now().UTC()) {
		delete(r.byRT, refresh)
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) DeleteByRefresh(_ context.Context, refresh string) error {
	r.mu.Lock()
	delete(r.byRT, refresh)
	r.mu.Unlock()
	return nil
}
