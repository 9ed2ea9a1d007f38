package redisstore

import (
	"context"
	"crypto/tls"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// NewClient connects to the Redis (or Dragonfly) instance at url and pings it.
// rediss:// URLs get TLS 1.2 or newer.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, oops.Code("REDIS_CONFIG_INVALID").Wrapf(err, "parse redis url")
	}
	opts.MaxRetries = 3
	if opts.TLSConfig != nil {
		opts.TLSConfig.MinVersion = tls.VersionTLS12
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_UNREACHABLE").Wrapf(err, "ping redis")
	}
	return client, nil
}

// Pinger adapts a client to the health checker.
type Pinger struct {
	Client redis.UniversalClient
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
