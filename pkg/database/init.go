package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Alijeyrad/simorq_portal/config"
)

// InitializeDatabases creates every name in server.databases (portal store
// and casbin policy store) that does not exist yet. It connects to the
// server's maintenance database, so it runs before any migration.
func InitializeDatabases(ctx context.Context, cfg *config.Config) error {
	names := cfg.Server.Databases
	if len(names) == 0 {
		return errors.New("server.databases is empty")
	}

	conn, err := openSQLDB(ctx, FromCentralConfig(cfg.Database).withDB("postgres"))
	if err != nil {
		return fmt.Errorf("connect maintenance db: %w", err)
	}
	defer conn.Close()

	for _, name := range names {
		created, err := ensureDatabase(ctx, conn, name)
		if err != nil {
			return fmt.Errorf("ensure database %q: %w", name, err)
		}
		if created {
			slog.Info("database created", "name", name)
		}
	}
	return nil
}

func ensureDatabase(ctx context.Context, conn *sql.DB, name string) (bool, error) {
	var exists bool
	err := conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("look up: %w", err)
	}
	if exists {
		return false, nil
	}
	// CREATE DATABASE takes no bind parameters.
	if _, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, fmt.Errorf("create: %w", err)
	}
	return true, nil
}
