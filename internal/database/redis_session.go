// Redis-based trading session persistence. The session survives
// process restarts so daily caps and loss streaks cannot be reset by
// bouncing the service. When Redis is unavailable the store falls
// back to an in-memory copy and trading continues.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"signal-sniper/internal/reflex"
)

const (
	// SessionKey is the Redis key holding the serialized trading session
	SessionKey = "sniper:session"

	// SessionTTL keeps a stale session around long enough to survive a
	// same-day restart but not leak across days
	SessionTTL = 48 * time.Hour
)

// RedisSessionStore persists the trading session with an in-memory
// fallback when Redis is unavailable.
type RedisSessionStore struct {
	client *redis.Client

	mu             sync.RWMutex
	cached         *reflex.TradingSession
	redisAvailable atomic.Bool
}

// NewRedisSessionStore creates a session store. If client is nil, the
// store operates in memory-only mode.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	store := &RedisSessionStore{client: client}

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[REDIS-SESSION] Redis unavailable at startup: %v, using in-memory store", err)
			store.redisAvailable.Store(false)
		} else {
			log.Printf("[REDIS-SESSION] Redis connected successfully")
			store.redisAvailable.Store(true)
		}
	} else {
		log.Printf("[REDIS-SESSION] No Redis client provided, using in-memory store only")
		store.redisAvailable.Store(false)
	}

	return store
}

// SaveSession persists the session snapshot.
func (s *RedisSessionStore) SaveSession(ctx context.Context, session reflex.TradingSession) error {
	s.mu.Lock()
	copied := session
	s.cached = &copied
	s.mu.Unlock()

	if s.client == nil || !s.redisAvailable.Load() {
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, SessionKey, data, SessionTTL).Err(); err != nil {
		log.Printf("[REDIS-SESSION] Failed to save to Redis: %v, keeping in-memory copy", err)
		s.redisAvailable.Store(false)
	}
	return nil
}

// LoadSession returns the persisted session, or nil when none exists.
func (s *RedisSessionStore) LoadSession(ctx context.Context) (*reflex.TradingSession, error) {
	if s.client != nil && s.redisAvailable.Load() {
		data, err := s.client.Get(ctx, SessionKey).Result()
		if err == nil {
			session := &reflex.TradingSession{}
			if err := json.Unmarshal([]byte(data), session); err != nil {
				return nil, fmt.Errorf("failed to unmarshal session: %w", err)
			}
			return session, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Printf("[REDIS-SESSION] Redis read error: %v, using in-memory copy", err)
			s.redisAvailable.Store(false)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil {
		return nil, nil
	}
	copied := *s.cached
	return &copied, nil
}

// ClearSession removes the persisted session, used on daily reset.
func (s *RedisSessionStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if s.client == nil || !s.redisAvailable.Load() {
		return nil
	}
	if err := s.client.Del(ctx, SessionKey).Err(); err != nil {
		log.Printf("[REDIS-SESSION] Failed to clear Redis session: %v", err)
		s.redisAvailable.Store(false)
	}
	return nil
}

// Available reports whether Redis is currently reachable.
func (s *RedisSessionStore) Available() bool {
	return s.redisAvailable.Load()
}
