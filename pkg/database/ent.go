package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/repo/migrate"
)

// NewDriver opens a pooled Postgres connection wrapped in an ent SQL driver.
func NewDriver(cfg Config) (*entsql.Driver, error) {
	db, err := openSQLDB(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(dialect.Postgres, db), nil
}

// NewEntClient creates a store client from central config
func NewEntClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	drv, err := NewDriver(FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	return repo.NewClient(drv), nil
}

// MigrateEnt creates missing tables, columns and indexes. Columns are never dropped.
func MigrateEnt(ctx context.Context, client *repo.Client) error {
	if err := migrate.Create(ctx, client.Driver()); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
