package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool sizing defaults for the decision path: transactions are short (one
// record insert plus its audit row), so a small pool with a warm floor
// outperforms a large one that churns connections.
const (
	DefaultMaxConns = int32(10)
	DefaultMinConns = int32(2)
)

// Config holds PostgreSQL connection parameters for the decisioning store.
// Zero MaxConns/MinConns fall back to the package defaults.
type Config struct {
	Host     string
	User     string
	Password string
	Database string
	SSLMode  string
	Port     int
	MaxConns int32
	MinConns int32
}

// DSN returns a PostgreSQL connection string built from the config fields.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

func (c Config) maxConns() int32 {
	if c.MaxConns > 0 {
		return c.MaxConns
	}
	return DefaultMaxConns
}

func (c Config) minConns() int32 {
	if c.MinConns > 0 {
		return c.MinConns
	}
	return DefaultMinConns
}

// NewPool opens a pgx connection pool sized for the decision workload and
// verifies connectivity before returning. Idle connections recycle quickly
// so the pool tracks actual request volume rather than its last burst.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	poolCfg.MaxConns = cfg.maxConns()
	poolCfg.MinConns = cfg.minConns()
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

// HealthCheck pings the database and returns an error if the connection is unhealthy.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool) error {
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check: %w", err)
	}
	return nil
}
