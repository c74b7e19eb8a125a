// Package secondary defines the outbound ports the application layer
// depends on: durable instrument configuration storage and the
// filesystem-backed tracker-file probe.
package secondary

import (
	"context"

	"github.com/example/numtracker/internal/core/instrument"
)

// InstrumentRepository persists instrument configuration and scan-number
// counters.
type InstrumentRepository interface {
	// GetAll returns configured instruments, ordered by name. filter
	// selects which: nil returns every instrument, a non-nil empty slice
	// returns none, and a non-nil populated slice returns the intersection
	// of filter with the configured instrument names.
	GetAll(ctx context.Context, filter []string) ([]instrument.Instrument, error)

	// Get returns the instrument named name, or errs.KindUnknownInstrument
	// if none is configured.
	Get(ctx context.Context, name string) (instrument.Instrument, error)

	// Upsert creates or replaces the named instrument's configuration
	// without touching its scan-number counter.
	Upsert(ctx context.Context, inst instrument.Instrument) error

	// SetNumber sets the instrument's scan-number counter to an explicit
	// value, for administrative correction.
	SetNumber(ctx context.Context, name string, value int64) error

	// BumpNumber atomically increments the instrument's scan-number
	// counter by one and returns the new value.
	BumpNumber(ctx context.Context, name string) (int64, error)

	// BumpToAtLeast atomically raises the instrument's scan-number counter
	// to at least target, returning the resulting value. It never lowers
	// the counter.
	BumpToAtLeast(ctx context.Context, name string, target int64) (int64, error)
}

// TrackerProbe inspects and claims scan numbers recorded as files in a
// beamline's fallback tracker directory.
type TrackerProbe interface {
	// Highest returns the highest scan number currently recorded in dir
	// for files with the given extension, or 0 if none exist.
	Highest(ctx context.Context, dir, extension string) (int64, error)

	// Claim atomically creates the tracker file for number in dir,
	// failing with errs.KindTrackerRace if it already exists.
	Claim(ctx context.Context, dir, extension string, number int64) error
}
