// Package trackerpath validates inputs to the tracker-file probe before
// any filesystem access happens.
package trackerpath

import (
	"github.com/example/numtracker/internal/errs"
)

// ValidExtension reports whether ext is safe to use as a tracker-file
// extension: non-empty and composed only of [A-Za-z0-9_-]. This rejects
// path-traversal payloads like "../../etc" before they ever reach a
// filesystem call.
func ValidExtension(ext string) bool {
	if ext == "" {
		return false
	}
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
			continue
		default:
			return false
		}
	}
	return true
}

// CheckExtension validates ext, returning a TrackerUnavailable error
// describing the problem if it is not safe to use.
func CheckExtension(ext string) error {
	if !ValidExtension(ext) {
		return errs.New(errs.KindTrackerUnavailable, "invalid tracker file extension: "+ext)
	}
	return nil
}
