package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"agency-contact-api/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "contact:inflight:"

// InFlightGuard makes sure at most one request per identical submission is in flight.
// It uses Redis when a client is available and falls back to process memory.
type InFlightGuard struct {
	client *goredis.Client
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]time.Time
	now   func() time.Time
}

// NewInFlightGuard creates a guard; client may be nil. ttl caps how long a crashed request can hold a key.
func NewInFlightGuard(client *goredis.Client, ttl time.Duration) *InFlightGuard {
	return &InFlightGuard{
		client: client,
		ttl:    ttl,
		local:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// SubmissionKey derives the guard key from the normalized email and message
func SubmissionKey(form domain.SubmissionForm) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(form.Email)) + "|" + strings.TrimSpace(form.Message)))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Acquire returns false when an identical submission already holds the key
func (g *InFlightGuard) Acquire(ctx context.Context, key string) (bool, error) {
	if g.client != nil {
		ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
		if err == nil {
			return ok, nil
		}
		// Fall through to in-memory so a Redis outage doesn't block submissions
	}
	return g.acquireLocal(key), nil
}

// Release frees the key once the submission reached a terminal status
func (g *InFlightGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	delete(g.local, key)
	g.mu.Unlock()

	if g.client != nil {
		return g.client.Del(ctx, key).Err()
	}
	return nil
}

func (g *InFlightGuard) acquireLocal(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expires, ok := g.local[key]; ok && now.Before(expires) {
		return false
	}
	g.local[key] = now.Add(g.ttl)
	return true
}
