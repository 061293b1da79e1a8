package questdb

import (
	"context"
	"fmt"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the QuestDB client configuration, read over the Postgres wire protocol.
type Config struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"8812"`
	Database string `env:"DATABASE" envDefault:"qdb"`
	Username string `env:"USERNAME" envDefault:"admin"`
	Password string `env:"PASSWORD" envDefault:"quest"`

	MaxConns        int32         `env:"MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"MIN_CONNS" envDefault:"1"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// ConnString builds the postgres URL of the QuestDB instance.
func (c Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

type client struct {
	pool *pgxpool.Pool
}

var _ Client = (*client)(nil)

// NewClient opens a pool and pings it.
func NewClient(ctx context.Context, config Config) (Client, error) {
	pgxConfig, err := pgxpool.ParseConfig(config.ConnString())
	if err != nil {
		return nil, errors.NewTracer("failed to parse questdb config").Wrap(err)
	}

	pgxConfig.MaxConns = config.MaxConns
	pgxConfig.MinConns = config.MinConns
	pgxConfig.MaxConnLifetime = config.MaxConnLifetime
	pgxConfig.MaxConnIdleTime = config.MaxConnIdleTime
	pgxConfig.ConnConfig.ConnectTimeout = config.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
	if err != nil {
		return nil, errors.NewTracer("failed to create questdb pool").Wrap(err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewTracer("failed to ping questdb").Wrap(err)
	}

	return &client{pool: pool}, nil
}

func (c *client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *client) Exec(ctx context.Context, sql string, args ...any) error {
	if tx, ok := GetTx(ctx); ok {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	}
	_, err := c.pool.Exec(ctx, sql, args...)
	return err
}

func (c *client) Query(ctx context.Context, sql string, args ...any) (RowsInterface, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if tx, ok := GetTx(ctx); ok {
		rows, err = tx.Query(ctx, sql, args...)
	} else {
		rows, err = c.pool.Query(ctx, sql, args...)
	}
	if err != nil {
		return nil, err
	}
	return NewRowsWrapper(rows), nil
}

func (c *client) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx, ok := GetTx(ctx); ok {
		return tx.QueryRow(ctx, sql, args...)
	}
	return c.pool.QueryRow(ctx, sql, args...)
}

func (c *client) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.pool.Begin(ctx)
}

func (c *client) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if tx, ok := GetTx(ctx); ok {
		return tx.CopyFrom(ctx, tableName, columnNames, rowSrc)
	}
	return c.pool.CopyFrom(ctx, tableName, columnNames, rowSrc)
}
