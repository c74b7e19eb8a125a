// Package primary defines the inbound service interfaces the contract
// layer and CLI drive.
package primary

import (
	"context"

	"github.com/example/numtracker/internal/core/instrument"
)

// ScanResult is the outcome of one Allocate call: the newly claimed scan
// number, the absolute visit directory, and the scan/detector paths
// rendered relative to it. Callers join ScanFile and each DetectorPaths
// entry onto Directory themselves.
type ScanResult struct {
	Instrument    string
	ScanNumber    int64
	Directory     string
	ScanFile      string
	DetectorPaths map[string]string
}

// Allocator reconciles the durable counter with the fallback tracker
// directory (when configured) and hands out the next scan number.
type Allocator interface {
	// Allocate claims the next scan number for instrument and renders the
	// paths for it, given the visit identifier, an optional subdirectory,
	// and the detector names requested.
	Allocate(ctx context.Context, instrumentName, visit, subdirectory string, detectors []string) (ScanResult, error)

	// VisitDirectory renders only the visit directory, without allocating
	// a scan number.
	VisitDirectory(ctx context.Context, instrumentName, visit string) (string, error)
}

// ConfigStore manages instrument configuration.
type ConfigStore interface {
	// Configurations returns configured instruments. A nil filter returns
	// all of them; a non-nil empty filter returns none; a non-nil
	// populated filter returns the intersection of filter with the
	// configured instrument names. Each result's FileScanNumber is
	// populated from the fallback tracker directory when one is
	// configured.
	Configurations(ctx context.Context, filter []string) ([]instrument.Instrument, error)

	// Configuration returns one instrument's configuration, with
	// FileScanNumber populated from the fallback tracker directory when
	// one is configured.
	Configuration(ctx context.Context, name string) (instrument.Instrument, error)

	// Configure validates and persists an instrument's templates and
	// optional fallback tracker directory/extension. When setNumber is
	// non-nil, it also overrides the instrument's scan-number counter.
	Configure(ctx context.Context, inst instrument.Instrument, setNumber *int64) error
}
