package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReconcileCache implements ports.ReconcileCache using Redis. Completed
// reconciliation outcomes are cached so repeated verification triggers for
// the same tx_ref never reach the gateway again.
type ReconcileCache struct {
	client *goredis.Client
	prefix string
}

// NewReconcileCache creates a new Redis-backed reconciliation cache.
func NewReconcileCache(client *goredis.Client) *ReconcileCache {
	return &ReconcileCache{
		client: client,
		prefix: "reconcile:",
	}
}

// Get retrieves a cached reconciliation outcome by tx_ref.
// Returns nil, nil if the key does not exist.
func (c *ReconcileCache) Get(ctx context.Context, txRef string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+txRef).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis reconcile get: %w", err)
	}
	return val, nil
}

// Set stores a reconciliation outcome with TTL.
func (c *ReconcileCache) Set(ctx context.Context, txRef string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+txRef, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis reconcile set: %w", err)
	}
	return nil
}
