// Package sqlite provides SQLite-backed implementations of the
// application's secondary ports.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/errs"
)

// InstrumentRepository persists instrument configuration and counters in
// the instruments table.
type InstrumentRepository struct {
	db *sql.DB
}

// NewInstrumentRepository constructs an InstrumentRepository.
func NewInstrumentRepository(db *sql.DB) *InstrumentRepository {
	return &InstrumentRepository{db: db}
}

// GetAll returns configured instruments, ordered by name. A nil filter
// returns all of them; a non-nil empty filter returns none without
// querying; a non-nil populated filter returns the intersection of filter
// with the configured instrument names.
func (r *InstrumentRepository) GetAll(ctx context.Context, filter []string) ([]instrument.Instrument, error) {
	if filter != nil && len(filter) == 0 {
		return nil, nil
	}

	query := `
		SELECT name, visit_template, scan_template, detector_template, scan_number,
		       fallback_directory, fallback_extension, created_at, updated_at
		FROM instruments
	`
	var args []any
	if filter != nil {
		placeholders := make([]string, len(filter))
		args = make([]any, len(filter))
		for i, name := range filter {
			placeholders[i] = "?"
			args[i] = name
		}
		query += "WHERE name IN (" + strings.Join(placeholders, ", ") + ")\n"
	}
	query += "ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	defer rows.Close()

	var out []instrument.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instrument row: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (r *InstrumentRepository) Get(ctx context.Context, name string) (instrument.Instrument, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, visit_template, scan_template, detector_template, scan_number,
		       fallback_directory, fallback_extension, created_at, updated_at
		FROM instruments
		WHERE name = ?
	`, name)

	inst, err := scanInstrument(row)
	if err == sql.ErrNoRows {
		return instrument.Instrument{}, errs.New(errs.KindUnknownInstrument, name)
	}
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("failed to get instrument %s: %w", name, err)
	}
	return inst, nil
}

func (r *InstrumentRepository) Upsert(ctx context.Context, inst instrument.Instrument) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO instruments (name, visit_template, scan_template, detector_template,
		                          fallback_directory, fallback_extension, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			visit_template = excluded.visit_template,
			scan_template = excluded.scan_template,
			detector_template = excluded.detector_template,
			fallback_directory = excluded.fallback_directory,
			fallback_extension = excluded.fallback_extension,
			updated_at = CURRENT_TIMESTAMP
	`, inst.Name, inst.VisitTemplate, inst.ScanTemplate, inst.DetectorTemplate,
		inst.FallbackDirectory, inst.FallbackExtension)
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", inst.Name, err)
	}
	return nil
}

func (r *InstrumentRepository) SetNumber(ctx context.Context, name string, value int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE instruments SET scan_number = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ?
	`, value, name)
	if err != nil {
		return fmt.Errorf("failed to set scan_number for %s: %w", name, err)
	}
	return checkAffected(res, name)
}

// BumpNumber atomically increments scan_number by one and returns the new
// value, using SQLite's RETURNING clause so the read-modify-write is a
// single statement with no gap for a concurrent connection to race in.
func (r *InstrumentRepository) BumpNumber(ctx context.Context, name string) (int64, error) {
	var newValue int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE instruments SET scan_number = scan_number + 1, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
		RETURNING scan_number
	`, name).Scan(&newValue)
	if err == sql.ErrNoRows {
		return 0, errs.New(errs.KindUnknownInstrument, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to bump scan_number for %s: %w", name, err)
	}
	return newValue, nil
}

// BumpToAtLeast atomically raises scan_number to target if it is currently
// lower, returning the resulting value either way.
func (r *InstrumentRepository) BumpToAtLeast(ctx context.Context, name string, target int64) (int64, error) {
	var newValue int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE instruments SET
			scan_number = CASE WHEN scan_number < ? THEN ? ELSE scan_number END,
			updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
		RETURNING scan_number
	`, target, target, name).Scan(&newValue)
	if err == sql.ErrNoRows {
		return 0, errs.New(errs.KindUnknownInstrument, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to bump scan_number for %s to at least %d: %w", name, target, err)
	}
	return newValue, nil
}

func checkAffected(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return errs.New(errs.KindUnknownInstrument, name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstrument(row rowScanner) (instrument.Instrument, error) {
	var inst instrument.Instrument
	var fallbackDir, fallbackExt sql.NullString
	err := row.Scan(
		&inst.Name, &inst.VisitTemplate, &inst.ScanTemplate, &inst.DetectorTemplate,
		&inst.ScanNumber, &fallbackDir, &fallbackExt, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return instrument.Instrument{}, err
	}
	if fallbackDir.Valid {
		inst.FallbackDirectory = &fallbackDir.String
	}
	if fallbackExt.Valid {
		inst.FallbackExtension = &fallbackExt.String
	}
	return inst, nil
}
