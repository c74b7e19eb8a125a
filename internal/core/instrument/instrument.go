// Package instrument holds the Instrument entity and the pure
// precondition checks ("guards") that gate mutations to it, independent of
// any storage technology.
package instrument

import "time"

// Instrument is one beamline's scan-number allocation configuration.
type Instrument struct {
	Name              string
	VisitTemplate     string
	ScanTemplate      string
	DetectorTemplate  string
	ScanNumber        int64
	FallbackDirectory *string
	FallbackExtension *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// FileScanNumber is a transient, unpersisted snapshot of the fallback
	// tracker directory's highest recorded number, populated only when an
	// instrument is read back through the contract layer's Configuration/
	// Configurations operations. nil when no fallback is configured or the
	// tracker directory could not be read.
	FileScanNumber *int64
}

// HasFallback reports whether the instrument has a configured fallback
// tracker directory. The extension defaults to the instrument's own name
// when not set explicitly — see EffectiveFallbackExtension.
func (i Instrument) HasFallback() bool {
	return i.FallbackDirectory != nil
}

// EffectiveFallbackExtension returns the configured fallback extension, or
// the instrument's name if a fallback directory is configured without an
// explicit extension.
func (i Instrument) EffectiveFallbackExtension() string {
	if i.FallbackExtension != nil {
		return *i.FallbackExtension
	}
	return i.Name
}
