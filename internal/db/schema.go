package db

import "database/sql"

// SchemaSQL is the complete schema for a fresh installation.
//
// # Schema drift protection
//
// This is the single source of truth for the database schema. Tests open
// an in-memory database and load this string directly via GetSchemaSQL,
// rather than hand-writing CREATE TABLE statements, so repository code that
// references a column absent from this schema fails immediately with
// "no such column" instead of silently drifting from production.
//
// When adding a column or table: add a migration in migrations.go, then
// update this constant to match the fully-migrated shape.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS instruments (
	name TEXT PRIMARY KEY,
	visit_template TEXT NOT NULL,
	scan_template TEXT NOT NULL,
	detector_template TEXT NOT NULL,
	scan_number INTEGER NOT NULL DEFAULT 0 CHECK(scan_number >= 0),
	fallback_directory TEXT,
	fallback_extension TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CHECK (fallback_extension IS NULL OR fallback_directory IS NOT NULL),
	UNIQUE (fallback_directory, fallback_extension)
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh database. It is a no-op on a
// database that already has the instruments table, since RunMigrations
// takes over from there.
func InitSchema(conn *sql.DB) error {
	_, err := conn.Exec(SchemaSQL)
	return err
}

// GetSchemaSQL returns the authoritative schema, for use by test harnesses
// that need to seed an in-memory database without depending on migrations.
func GetSchemaSQL() string {
	return SchemaSQL
}
