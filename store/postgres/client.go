// Package pgstore bootstraps a postgres-backed persistence client with the
// module's migrations registered, ready to hand to the repository factory.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	carriermigrations "github.com/goliatone/go-carrier-sync/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun/dialect/pgdialect"
)

const (
	defaultPingTimeout  = 5 * time.Second
	defaultMaxOpenConns = 25
)

// Config carries the postgres connection settings and satisfies the
// go-persistence-bun config contract.
type Config struct {
	DSN            string
	Debug          bool
	PingTimeout    time.Duration
	MaxOpenConns   int
	OtelIdentifier string
}

func (c Config) GetDebug() bool {
	return c.Debug
}

func (c Config) GetDriver() string {
	return "postgres"
}

func (c Config) GetServer() string {
	return c.DSN
}

func (c Config) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return defaultPingTimeout
	}
	return c.PingTimeout
}

func (c Config) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-carrier-sync"
	}
	return c.OtelIdentifier
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("pgstore: dsn is required")
	}
	return nil
}

// Connect opens the database, registers the postgres migration tree, and
// applies pending migrations before returning the client.
func Connect(ctx context.Context, cfg Config) (*persistence.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgstore: open database: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	client, err := persistence.New(cfg, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pgstore: new persistence client: %w", err)
	}

	_, err = carriermigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != carriermigrations.DialectPostgres {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, carriermigrations.WithValidationTargets(carriermigrations.DialectPostgres))
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pgstore: migrate: %w", err)
	}
	return client, nil
}
