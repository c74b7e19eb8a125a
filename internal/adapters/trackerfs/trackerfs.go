// Package trackerfs implements secondary.TrackerProbe against a real
// filesystem directory of "<number>.<extension>" marker files, the
// historical fallback scan-number tracking mechanism this system's
// database-backed counter now takes precedence over.
package trackerfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/numtracker/internal/core/trackerpath"
	"github.com/example/numtracker/internal/errs"
)

// Probe implements secondary.TrackerProbe.
type Probe struct{}

// NewProbe constructs a Probe.
func NewProbe() *Probe { return &Probe{} }

// Highest returns the highest scan number recorded as a "<N>.<extension>"
// file in dir, or 0 if the directory has no such file (including when the
// directory does not exist yet).
func (p *Probe) Highest(ctx context.Context, dir, extension string) (int64, error) {
	if err := trackerpath.CheckExtension(extension); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Wrap(errs.KindTrackerUnavailable, "failed to read tracker directory "+dir, err)
	}

	var highest int64
	suffix := "." + extension
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		stem := strings.TrimSuffix(name, suffix)
		n, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest, nil
}

// Claim atomically creates the marker file for number in dir. A file that
// already exists for that number means a concurrent writer won the race;
// that case is reported as errs.KindTrackerRace so the allocator can retry
// with the next number instead of silently overwriting another claim.
//
// Unlike the legacy implementation this is modelled on, Claim never
// deletes the marker for number-1: this system's claim is create-only.
func (p *Probe) Claim(ctx context.Context, dir, extension string, number int64) error {
	if err := trackerpath.CheckExtension(extension); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(errs.KindTrackerUnavailable, "failed to create tracker directory "+dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.%s", number, extension))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errs.Wrap(errs.KindTrackerRace, "tracker file already claimed: "+path, err)
		}
		return errs.Wrap(errs.KindTrackerUnavailable, "failed to claim tracker file "+path, err)
	}
	return f.Close()
}
