package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"energyportal/pkg/config"
)

// Open connects the session/activity pool and pings it once.
func Open(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pcfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func poolConfig(cfg config.Config) (*pgxpool.Config, error) {
	connString := runtimeConnString(cfg)
	pcfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		// The parse error can echo the DSN, password included.
		return nil, errors.New("parse database url: invalid connection string")
	}

	if cfg.DB.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.DB.MaxConns)
	}
	if cfg.DB.MinConns > 0 && int32(cfg.DB.MinConns) <= pcfg.MaxConns {
		pcfg.MinConns = int32(cfg.DB.MinConns)
	}
	if cfg.DB.MaxConnIdle > 0 {
		pcfg.MaxConnIdleTime = cfg.DB.MaxConnIdle
	}
	if cfg.DB.MaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.DB.MaxConnLifetime
	}

	// Transaction poolers (pgbouncer=true in the DSN) cannot hold prepared statements.
	if behindPooler(connString) {
		pcfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
		pcfg.ConnConfig.StatementCacheCapacity = 0
		pcfg.ConnConfig.DescriptionCacheCapacity = 0
	}
	return pcfg, nil
}

func behindPooler(connString string) bool {
	return strings.Contains(strings.ToLower(connString), "pgbouncer=true")
}

// WithTx runs fn in one transaction and commits when fn returns nil.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func runtimeConnString(cfg config.Config) string {
	if u := strings.TrimSpace(cfg.DatabaseURL); u != "" {
		return u
	}
	return dsn(cfg.DB)
}

// migrationConnString prefers DIRECT_URL; poolers break migrate's advisory lock.
func migrationConnString(cfg config.Config) string {
	if u := strings.TrimSpace(cfg.DirectURL); u != "" {
		return u
	}
	return runtimeConnString(cfg)
}

func dsn(cfg config.DBConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, sslmode,
	)
}
