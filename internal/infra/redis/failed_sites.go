package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func queueKey(mode string) string {
	return fmt.Sprintf("failed_sites:%s", mode)
}

// PushSite records a site whose processing window failed. Scored by the
// time of first failure so the oldest entries list first; re-pushing an
// existing site keeps its original score.
func (c *Client) PushSite(ctx context.Context, mode, siteURL string) error {
	key := queueKey(mode)
	member := redis.Z{Score: float64(time.Now().Unix()), Member: siteURL}
	if err := c.rdb.ZAddNX(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	return nil
}

// Sites returns all failed sites for a mode, oldest first.
func (c *Client) Sites(ctx context.Context, mode string) ([]string, error) {
	return c.rdb.ZRange(ctx, queueKey(mode), 0, -1).Result()
}

// RemoveSite drops one site from the queue, e.g. after a successful re-run.
func (c *Client) RemoveSite(ctx context.Context, mode, siteURL string) error {
	return c.rdb.ZRem(ctx, queueKey(mode), siteURL).Err()
}

// Clear empties the queue for a mode.
func (c *Client) Clear(ctx context.Context, mode string) error {
	return c.rdb.Del(ctx, queueKey(mode)).Err()
}
