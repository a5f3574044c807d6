package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel announcing favorite set writes.
const DefaultChannel = "chalet:favorites"

// RedisCache stores the favorite set as a JSON string key, shared by every client pointed at the same Redis.
//
// Each write also publishes the writer's origin id on a channel; [RedisCache.Watch] turns
// messages from other origins into change signals.
type RedisCache struct {
	client  *redis.Client
	key     string
	channel string
	origin  string
	logger  *log.Logger
}

// NewRedisClient creates a client from configuration.
func NewRedisClient(cfg shared.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisCache creates a [RedisCache]. Empty key and channel fall back to [DefaultKey] and [DefaultChannel].
func NewRedisCache(client *redis.Client, key, channel string, logger *log.Logger) *RedisCache {
	if key == "" {
		key = DefaultKey
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &RedisCache{
		client:  client,
		key:     key,
		channel: channel,
		origin:  shared.GenerateID(),
		logger:  logger,
	}
}

func (c *RedisCache) Read(ctx context.Context) Set {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewSet()
	}
	if err != nil {
		c.logger.Debug("favorite cache unreachable", "key", c.key, "err", err)
		return NewSet()
	}
	return decodeOrEmpty(c.logger, c.key, data)
}

func (c *RedisCache) Write(ctx context.Context, s Set) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode favorite set: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key, data, 0)
		pipe.Publish(ctx, c.channel, c.origin)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write favorite set: %w", err)
	}
	return nil
}

// Watch subscribes to the change channel and calls fn for every write made by another origin.
func (c *RedisCache) Watch(ctx context.Context, fn func()) error {
	sub := c.client.Subscribe(ctx, c.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg.Payload == c.origin {
				continue
			}
			c.logger.Debug("favorite set changed remotely", "origin", msg.Payload)
			fn()
		}
	}
}
