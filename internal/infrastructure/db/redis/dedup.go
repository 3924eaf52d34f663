package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks for the assignment feed.
// Key format: assign:<username>:<title>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this assignment event has already been processed.
func (d *DedupChecker) IsDuplicate(ctx context.Context, username, title string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(username, title)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this assignment has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, username, title string) error {
	return d.client.Set(ctx, d.key(username, title), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(username, title string) string {
	return fmt.Sprintf("assign:%s:%s", username, title)
}
