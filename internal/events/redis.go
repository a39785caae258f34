package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	owned   bool
}

// NewRedisPublisher connects to redisURL and publishes JSON events on channel.
func NewRedisPublisher(ctx context.Context, redisURL, channel string) (*RedisPublisher, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis publisher")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	p := NewRedisPublisherFromClient(rdb, channel)
	p.owned = true
	return p, nil
}

// NewRedisPublisherFromClient reuses an existing client; Close leaves it open.
func NewRedisPublisherFromClient(rdb *redis.Client, channel string) *RedisPublisher {
	ch := strings.TrimSpace(channel)
	if ch == "" {
		ch = "chess:events"
	}
	return &RedisPublisher{rdb: rdb, channel: ch}
}

func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil || !p.owned {
		return nil
	}
	return p.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: u.Host, Username: u.User.Username(), Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{ServerName: u.Hostname(), MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
