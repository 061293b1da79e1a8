package redis

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger logger.Interface
	config *Config
	conn   redis.UniversalClient
}

// NewClient creates a new Redis client with the provided logger and configuration.
// Connect must be called before use.
func NewClient(log logger.Interface, config *Config) Client {
	return &client{
		logger: log,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	if err := c.config.Validate(); err != nil {
		return err
	}

	switch c.config.Mode {
	case Standalone:
		c.conn = redis.NewClient(&redis.Options{
			Addr:            c.config.Addrs[0],
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	case Cluster:
		c.conn = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	}

	if err := c.conn.Ping(ctx).Err(); err != nil {
		return errors.NewTracer("failed to connect to redis").Wrap(
			errors.NewErrorDetails(err.Error(), errors.RedisConnectionError, "connect"),
		)
	}
	return nil
}

func (c *client) Reconnect(ctx context.Context) bool {
	baseDelay := c.config.MinRetryBackoff
	maxDelay := c.config.MaxRetryBackoff

	for i := range c.config.ReconnectMaxRetries {
		backoff := min(baseDelay<<i, maxDelay)
		totalDelay := backoff + time.Duration(rand.IntN(1000))*time.Millisecond

		c.logger.InfoContext(ctx, "reconnecting to redis",
			logger.NewField("attempt", i+1),
			logger.NewField("delay", totalDelay),
		)

		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "reconnect cancelled", logger.NewField("reason", ctx.Err()))
			return false
		case <-time.After(totalDelay):
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Connect(connectCtx)
			cancel()
			if err == nil {
				c.logger.InfoContext(ctx, "reconnected to redis", logger.NewField("attempt", i+1))
				return true
			}
			c.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.NewField("attempt", i+1))
		}
	}

	return false
}

func (c *client) Disconnect(_ context.Context) error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return errors.NewErrorDetails(err.Error(), errors.RedisDisconnectionError, "disconnect")
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if c.conn == nil {
		return errors.NewErrorDetails("redis is not connected", errors.RedisPingError, "ping")
	}
	if err := c.conn.Ping(ctx).Err(); err != nil {
		return errors.NewErrorDetails("failed to ping redis", errors.RedisPingError, "ping").WithOperands(err.Error())
	}
	return nil
}

// Key joins parts with ':' behind the configured prefix.
func (c *client) Key(parts ...string) string {
	return c.config.PrefixKey + strings.Join(parts, ":")
}

// Set stores value; a zero expiration falls back to the configured default TTL.
func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if expiration == 0 {
		expiration = c.config.DefaultTTL
	}
	if err := c.conn.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewErrorDetails("failed to set value in redis", errors.RedisSetError, "set").WithOperands(key, err.Error())
	}
	return nil
}

// Publish returns the number of subscribers that received message. Zero subscribers is not an error.
func (c *client) Publish(ctx context.Context, channel string, message any) (int64, error) {
	received, err := c.conn.Publish(ctx, channel, message).Result()
	if err != nil {
		return 0, errors.NewErrorDetails("failed to publish to redis", errors.RedisPublishError, "publish").WithOperands(channel, err.Error())
	}
	return received, nil
}
