package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnreachable reports a Redis server that did not answer the startup ping.
var ErrUnreachable = errors.New("platform/cache: redis unreachable")

// New creates a Redis client and pings it. The client is returned even when
// the ping fails so that callers can keep running in a degraded mode.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return client, nil
}
