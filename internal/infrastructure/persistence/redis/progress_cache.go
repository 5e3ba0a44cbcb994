package redis

import (
	"context"
	"errors"
	"time"

	"github.com/quest-coach/quest-coach-bot/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS CACHE
// Implements query.SnapshotCache and command.ProgressCache.
// ══════════════════════════════════════════════════════════════════════════════

// PrefixProgress is the key prefix for cached progress snapshots.
const PrefixProgress = "progress:"

// DefaultProgressTTL bounds staleness when an invalidation is lost.
const DefaultProgressTTL = 10 * time.Minute

// ProgressKey generates a cache key for a user's progress snapshot.
func ProgressKey(userID string) string {
	return PrefixProgress + userID
}

// ProgressCache stores per-user progress snapshots with a TTL.
type ProgressCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewProgressCache creates a ProgressCache. ttl <= 0 falls back to
// DefaultProgressTTL.
func NewProgressCache(cache *Cache, ttl time.Duration) *ProgressCache {
	if ttl <= 0 {
		ttl = DefaultProgressTTL
	}
	return &ProgressCache{cache: cache, ttl: ttl}
}

// Get returns the cached snapshot, or (nil, nil) on a cache miss.
func (p *ProgressCache) Get(ctx context.Context, userID string) (*query.ProgressSnapshot, error) {
	var snapshot query.ProgressSnapshot
	err := p.cache.Get(ctx, ProgressKey(userID), &snapshot)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// Set stores the snapshot under the user's key.
func (p *ProgressCache) Set(ctx context.Context, userID string, s *query.ProgressSnapshot) error {
	return p.cache.Set(ctx, ProgressKey(userID), s, p.ttl)
}

// Invalidate drops the user's cached snapshot. Commands call this after
// every write that changes XP, streaks or achievements.
func (p *ProgressCache) Invalidate(ctx context.Context, userID string) error {
	return p.cache.Delete(ctx, ProgressKey(userID))
}
