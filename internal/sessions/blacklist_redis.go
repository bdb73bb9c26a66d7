package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:access:"

// Blacklist records access tokens revoked by logout until they would have
// expired anyway. With a Redis client the list is shared between replicas,
// otherwise it is kept in process.
type Blacklist struct {
	client redis.UniversalClient

	mu    sync.Mutex
	local map[string]time.Time
}

// NewBlacklist returns a blacklist on client; nil selects the in-process list.
func NewBlacklist(client redis.UniversalClient) *Blacklist {
	return &Blacklist{client: client, local: map[string]time.Time{}}
}

// BlacklistAccessToken stores the given token with TTL. Non-positive TTLs
// are ignored since the token is already expired.
func (b *Blacklist) BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if b.client != nil {
		return b.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
	}
	b.mu.Lock()
	b.local[token] = time.Now().Add(ttl)
	b.mu.Unlock()
	return nil
}

// IsAccessTokenBlacklisted returns true while the token is on the list.
func (b *Blacklist) IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if b.client != nil {
		exists, err := b.client.Exists(ctx, blacklistPrefix+token).Result()
		if err != nil {
			return false, err
		}
		return exists > 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.local[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(b.local, token)
		return false, nil
	}
	return true, nil
}
