// Package sqlite_test contains integration tests for the SQLite
// repository.
//
// setupTestDB is the single point where the schema is loaded for tests,
// via db.GetSchemaSQL(), so tests never drift from the schema production
// uses.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/numtracker/internal/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

func seedInstrument(t *testing.T, conn *sql.DB, name string) {
	t.Helper()
	_, err := conn.Exec(`
		INSERT INTO instruments (name, visit_template, scan_template, detector_template)
		VALUES (?, '/data/{instrument}/data/{year}/{visit}', '{subdirectory}/{instrument}-{scan_number}', '{subdirectory}/{instrument}-{scan_number}-{detector}')
	`, name)
	if err != nil {
		t.Fatalf("failed to seed instrument %s: %v", name, err)
	}
}
