package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order. SchemaSQL always
// reflects the fully-migrated shape, so on a fresh install each of these
// runs as a no-op (the columns already exist, no timestamp is NULL) and is
// recorded in schema_version; they only change data when upgrading a
// database created by an older binary.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_fallback_columns_to_instruments",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "backfill_instrument_timestamps",
		Up:      migrationV2,
	},
}

// migrationV1 adds the optional fallback tracker-directory/extension
// columns to a pre-fallback instruments table.
func migrationV1(db *sql.DB) error {
	var hasColumn int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('instruments') WHERE name = 'fallback_directory'`).Scan(&hasColumn)
	if err != nil {
		return fmt.Errorf("failed to inspect instruments columns: %w", err)
	}
	if hasColumn > 0 {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE instruments ADD COLUMN fallback_directory TEXT`); err != nil {
		return fmt.Errorf("failed to add fallback_directory: %w", err)
	}
	if _, err := db.Exec(`ALTER TABLE instruments ADD COLUMN fallback_extension TEXT`); err != nil {
		return fmt.Errorf("failed to add fallback_extension: %w", err)
	}
	return nil
}

// migrationV2 backfills created_at/updated_at on rows written before those
// columns existed.
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`UPDATE instruments SET created_at = CURRENT_TIMESTAMP WHERE created_at IS NULL`)
	if err != nil {
		return fmt.Errorf("failed to backfill created_at: %w", err)
	}
	_, err = db.Exec(`UPDATE instruments SET updated_at = CURRENT_TIMESTAMP WHERE updated_at IS NULL`)
	if err != nil {
		return fmt.Errorf("failed to backfill updated_at: %w", err)
	}
	return nil
}

// RunMigrations brings conn up to the latest schema version, recording each
// applied migration in schema_version. Safe to call on every startup.
func RunMigrations(conn *sql.DB) error {
	var currentVersion int
	err := conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(conn); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_version (version, name) VALUES (?, ?)`, migration.Version, migration.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
