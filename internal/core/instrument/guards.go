package instrument

import "github.com/example/numtracker/internal/errs"

// GuardResult reports whether a mutation is allowed and, if not, why.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts a disallowed GuardResult into a typed error, or nil if
// the guard passed.
func (g GuardResult) Error(kind errs.Kind) error {
	if g.Allowed {
		return nil
	}
	return errs.New(kind, g.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(reason string) GuardResult { return GuardResult{Allowed: false, Reason: reason} }

// CanUpsert checks that candidate is internally consistent before it is
// written to storage: a fallback extension without a fallback directory
// is meaningless and rejected, but a directory configured without an
// extension is allowed — the extension defaults to the instrument name.
func CanUpsert(candidate Instrument) GuardResult {
	if candidate.Name == "" {
		return deny("instrument name must not be empty")
	}
	hasDir := candidate.FallbackDirectory != nil
	hasExt := candidate.FallbackExtension != nil
	if hasExt && !hasDir {
		return deny("fallback_extension requires fallback_directory to be set")
	}
	if candidate.ScanNumber < 0 {
		return deny("scan_number must not be negative")
	}
	return allow()
}

// CanBumpToAtLeast checks that target is not lower than current: the
// scan-number counter is monotonic and may never move backwards.
func CanBumpToAtLeast(current, target int64) GuardResult {
	if target < current {
		return deny("cannot bump scan_number backwards")
	}
	return allow()
}

// CanSetNumber checks that an explicit counter override is not negative.
func CanSetNumber(value int64) GuardResult {
	if value < 0 {
		return deny("scan_number must not be negative")
	}
	return allow()
}
