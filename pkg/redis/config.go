package redis

import (
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
)

// Mode represents the mode of the Redis client.
type Mode string

const (
	// Standalone Mode is for a single Redis instance.
	Standalone Mode = "standalone"
	// Cluster Mode is for a Redis cluster setup.
	Cluster Mode = "cluster"
)

// Config holds the configuration for the Redis client.
type Config struct {
	Mode     Mode   `env:"MODE" envDefault:"standalone"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`

	Addrs []string `env:"ADDRS" envSeparator:"," envDefault:"localhost:6379"`

	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	MaxRetries      int           `env:"MAX_RETRIES" envDefault:"3"`
	MinRetryBackoff time.Duration `env:"MIN_RETRY_BACKOFF" envDefault:"100ms"`
	MaxRetryBackoff time.Duration `env:"MAX_RETRY_BACKOFF" envDefault:"2s"`
	PoolSize        int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns    int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"10m"`
	PoolTimeout     time.Duration `env:"POOL_TIMEOUT" envDefault:"4s"`
	PrefixKey       string        `env:"PREFIX_KEY" envDefault:"sim:"`
	DefaultTTL      time.Duration `env:"DEFAULT_TTL" envDefault:"24h"`

	ReconnectMaxRetries int `env:"RECONNECT_MAX_RETRIES" envDefault:"3"`
}

// DefaultConfig returns a default configuration for the Redis client.
func DefaultConfig() *Config {
	return &Config{
		Mode:                Standalone,
		Addrs:               []string{"localhost:6379"},
		ConnectTimeout:      5 * time.Second,
		MaxRetries:          3,
		MinRetryBackoff:     100 * time.Millisecond,
		MaxRetryBackoff:     2 * time.Second,
		PoolSize:            10,
		MinIdleConns:        2,
		MaxIdleConns:        10,
		ConnMaxLifetime:     30 * time.Minute,
		ConnMaxIdleTime:     10 * time.Minute,
		PoolTimeout:         4 * time.Second,
		PrefixKey:           "sim:",
		DefaultTTL:          24 * time.Hour,
		ReconnectMaxRetries: 3,
	}
}

func configError(message, field string) *errors.ErrorDetails {
	return errors.NewErrorDetails(message, errors.RedisConfigError, field)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	if c == nil {
		return configError("redis config is nil", "config")
	}

	be := errors.NewBaseError()
	if len(c.Addrs) == 0 {
		be.AddErrorDetails(configError("redis addresses are empty", "addrs"))
	}
	if c.Mode != Standalone && c.Mode != Cluster {
		be.AddErrorDetails(configError("invalid redis mode", "mode").WithOperands(c.Mode))
	}
	if c.ConnectTimeout <= 0 {
		be.AddErrorDetails(configError("invalid redis connect timeout", "connect_timeout").WithOperands(c.ConnectTimeout))
	}
	if c.PoolSize <= 0 {
		be.AddErrorDetails(configError("invalid redis pool size", "pool_size").WithOperands(c.PoolSize))
	}
	if c.MaxIdleConns < 0 {
		be.AddErrorDetails(configError("invalid redis max idle connections", "max_idle_conns").WithOperands(c.MaxIdleConns))
	}
	if c.ConnMaxLifetime <= 0 {
		be.AddErrorDetails(configError("invalid redis connection max lifetime", "conn_max_lifetime").WithOperands(c.ConnMaxLifetime))
	}
	if c.ConnMaxIdleTime <= 0 {
		be.AddErrorDetails(configError("invalid redis connection max idle time", "conn_max_idle_time").WithOperands(c.ConnMaxIdleTime))
	}
	if c.PoolTimeout <= 0 {
		be.AddErrorDetails(configError("invalid redis pool timeout", "pool_timeout").WithOperands(c.PoolTimeout))
	}
	if c.MaxRetries < 0 {
		be.AddErrorDetails(configError("invalid redis max retries", "max_retries").WithOperands(c.MaxRetries))
	}
	if c.MinRetryBackoff < 0 || c.MaxRetryBackoff < 0 {
		be.AddErrorDetails(configError("invalid redis retry backoff", "retry_backoff").WithOperands(c.MinRetryBackoff, c.MaxRetryBackoff))
	}

	return be.OrNil()
}
