// internal/domain/checkout/identity.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdentityStore persists the guest contact fields between visits so a
// returning guest sees the form prefilled.
type IdentityStore interface {
	Save(ctx context.Context, sessionID string, identity GuestIdentity) error
	Load(ctx context.Context, sessionID string) (*GuestIdentity, error)
}

// RedisIdentityStore keeps guest identities in Redis alongside the
// guest cart, with the same TTL.
type RedisIdentityStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdentityStore creates a Redis-backed identity store
func NewRedisIdentityStore(client *redis.Client, ttl time.Duration) *RedisIdentityStore {
	return &RedisIdentityStore{client: client, ttl: ttl}
}

// Save stores the guest identity for the session
func (s *RedisIdentityStore) Save(ctx context.Context, sessionID string, identity GuestIdentity) error {
	if sessionID == "" {
		return fmt.Errorf("session ID required to save guest identity")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode guest identity: %w", err)
	}
	return s.client.Set(ctx, guestIdentityKey(sessionID), data, s.ttl).Err()
}

// Load returns the stored guest identity, or nil when none exists
func (s *RedisIdentityStore) Load(ctx context.Context, sessionID string) (*GuestIdentity, error) {
	if sessionID == "" {
		return nil, nil
	}

	data, err := s.client.Get(ctx, guestIdentityKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest identity: %w", err)
	}

	var identity GuestIdentity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return nil, fmt.Errorf("failed to decode guest identity: %w", err)
	}
	return &identity, nil
}

func guestIdentityKey(sessionID string) string {
	return fmt.Sprintf("guest:identity:%s", sessionID)
}
