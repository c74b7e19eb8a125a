package pathbuilder

import (
	"testing"

	"github.com/example/numtracker/internal/core/template"
)

func mustParseTemplate(t *testing.T, raw string) *template.Template {
	t.Helper()
	tmpl, err := template.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", raw, err)
	}
	return tmpl
}

func mustBuilder(t *testing.T) *Builder {
	t.Helper()
	return mustBuilderFrom(t,
		"/data/{instrument}/data/{year}/{visit}",
		"{subdirectory}/{instrument}-{scan_number}",
		"{subdirectory}/{instrument}-{scan_number}-{detector}",
	)
}

func TestDirectoryRendersAbsolutePath(t *testing.T) {
	b := mustBuilder(t)
	dir, err := b.Directory(map[string]string{
		"instrument": "i22", "year": "2024", "visit": "cm12345-6",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/data/i22/data/2024/cm12345-6" {
		t.Fatalf("got %q", dir)
	}
}

func TestScanSegmentCollapsesEmptySubdirectory(t *testing.T) {
	b := mustBuilder(t)
	seg, err := b.ScanSegment(map[string]string{
		"subdirectory": "", "instrument": "i22", "scan_number": "1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg != "i22-1" {
		t.Fatalf("got %q, want no leading separator from the empty subdirectory", seg)
	}
}

func TestScanSegmentWithSubdirectory(t *testing.T) {
	b := mustBuilder(t)
	seg, err := b.ScanSegment(map[string]string{
		"subdirectory": "sub/tree", "instrument": "i22", "scan_number": "1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seg != "sub/tree/i22-1" {
		t.Fatalf("got %q", seg)
	}
}

func TestScanFileJoinsDirectoryAndSegment(t *testing.T) {
	b := mustBuilder(t)
	values := map[string]string{
		"instrument": "i22", "year": "2024", "visit": "cm12345-6",
		"subdirectory": "", "scan_number": "1",
	}
	file, err := b.ScanFile(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "/data/i22/data/2024/cm12345-6/i22-1" {
		t.Fatalf("got %q", file)
	}
}

func mustBuilderFrom(t *testing.T, visit, scan, detector string) *Builder {
	t.Helper()
	v := mustParseTemplate(t, visit)
	s := mustParseTemplate(t, scan)
	d := mustParseTemplate(t, detector)
	return &Builder{Visit: v, Scan: s, Detector: d}
}
