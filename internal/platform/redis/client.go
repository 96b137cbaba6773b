package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"sangham/internal/platform/config"
)

// Client is the session store connection. It is a UniversalClient so a
// comma-separated host list in REDIS_URL selects cluster mode.
type Client struct {
	redis.UniversalClient
}

// New connects to Redis and verifies the connection. Returns nil when no URL
// is configured, in which case callers fall back to in-process sessions.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := universalOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{UniversalClient: client}, nil
}

func universalOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	scheme, hosts, ok := strings.Cut(cfg.URL, "://")
	if !ok {
		return nil, fmt.Errorf("parse redis URL: missing scheme")
	}
	first, rest, _ := strings.Cut(hosts, ",")
	parsed, err := redis.ParseURL(scheme + "://" + first)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	addrs := []string{parsed.Addr}
	if rest != "" {
		for _, h := range strings.Split(rest, ",") {
			host, _, _ := strings.Cut(strings.TrimSpace(h), "/")
			if host != "" {
				addrs = append(addrs, host)
			}
		}
	}
	return &redis.UniversalOptions{
		Addrs:        addrs,
		Username:     parsed.Username,
		Password:     parsed.Password,
		DB:           parsed.DB,
		TLSConfig:    parsed.TLSConfig,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// Health pings the server, for the /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
