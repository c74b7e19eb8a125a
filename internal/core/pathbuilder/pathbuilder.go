// Package pathbuilder renders the resolved directory, scan-file and
// detector-file strings for one allocation, joining relative segments onto
// the absolute visit directory and collapsing the double separator that
// appears when an optional field (chiefly subdirectory) renders empty.
package pathbuilder

import (
	"path"
	"strings"

	"github.com/example/numtracker/internal/core/pathrole"
	"github.com/example/numtracker/internal/core/template"
)

// Builder renders paths from the three templates configured for an
// instrument: visit (absolute), scan (relative to visit), detector
// (relative to visit).
type Builder struct {
	Visit    *template.Template
	Scan     *template.Template
	Detector *template.Template
}

// Directory renders the visit (absolute) template.
func (b *Builder) Directory(values map[string]string) (string, error) {
	out, err := b.Visit.Render(values)
	if err != nil {
		return "", err
	}
	return cleanAbsolute(out), nil
}

// ScanSegment renders the scan (relative) template on its own, without
// joining it onto the visit directory.
func (b *Builder) ScanSegment(values map[string]string) (string, error) {
	out, err := b.Scan.Render(values)
	if err != nil {
		return "", err
	}
	return cleanRelative(out), nil
}

// DetectorSegment renders the detector (relative) template on its own.
func (b *Builder) DetectorSegment(values map[string]string) (string, error) {
	out, err := b.Detector.Render(values)
	if err != nil {
		return "", err
	}
	return cleanRelative(out), nil
}

// ScanFile renders and joins the visit directory with the scan segment
// into one absolute path.
func (b *Builder) ScanFile(values map[string]string) (string, error) {
	dir, err := b.Directory(values)
	if err != nil {
		return "", err
	}
	seg, err := b.ScanSegment(values)
	if err != nil {
		return "", err
	}
	return path.Join(dir, seg), nil
}

// DetectorPath renders and joins the visit directory with the detector
// segment into one absolute path.
func (b *Builder) DetectorPath(values map[string]string) (string, error) {
	dir, err := b.Directory(values)
	if err != nil {
		return "", err
	}
	seg, err := b.DetectorSegment(values)
	if err != nil {
		return "", err
	}
	return path.Join(dir, seg), nil
}

// ValidateRoles checks each template against its role's required/allowed
// fields and absolute/relative discipline.
func (b *Builder) ValidateRoles() error {
	if err := pathrole.RoleVisit.Validate(b.Visit, strings.HasPrefix(b.Visit.Raw(), "/")); err != nil {
		return err
	}
	if err := pathrole.RoleScan.Validate(b.Scan, strings.HasPrefix(b.Scan.Raw(), "/")); err != nil {
		return err
	}
	if err := pathrole.RoleDetector.Validate(b.Detector, strings.HasPrefix(b.Detector.Raw(), "/")); err != nil {
		return err
	}
	return nil
}

func cleanRelative(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return strings.TrimPrefix(s, "/")
}

func cleanAbsolute(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}
