package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/example/numtracker/internal/errs"
)

func setupAllocator(t *testing.T, withFallback bool) (*AllocatorService, *fakeRepo, *fakeTracker) {
	t.Helper()
	repo := newFakeRepo()
	cfgSvc := NewConfigService(repo, newFakeTracker())
	inst := testInstrument("i22")
	if withFallback {
		dir, ext := "/tmp/trackers", "nxs"
		inst.FallbackDirectory = &dir
		inst.FallbackExtension = &ext
	}
	if err := cfgSvc.Configure(context.Background(), inst, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tracker := newFakeTracker()
	return NewAllocatorService(repo, tracker, nil), repo, tracker
}

func TestAllocateFirstScanNumberIsOne(t *testing.T) {
	alloc, _, _ := setupAllocator(t, false)
	result, err := alloc.Allocate(context.Background(), "i22", "cm12345-6", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ScanNumber != 1 {
		t.Fatalf("got scan number %d", result.ScanNumber)
	}
	if result.Directory == "" || result.ScanFile == "" {
		t.Fatalf("expected non-empty paths, got %+v", result)
	}
	if strings.HasPrefix(result.ScanFile, "/") || strings.HasPrefix(result.ScanFile, result.Directory) {
		t.Fatalf("expected ScanFile relative to Directory, got %q (directory %q)", result.ScanFile, result.Directory)
	}
}

func TestAllocateIncrementsAcrossCalls(t *testing.T) {
	alloc, _, _ := setupAllocator(t, false)
	ctx := context.Background()
	first, err := alloc.Allocate(ctx, "i22", "cm12345-6", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := alloc.Allocate(ctx, "i22", "cm12345-6", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ScanNumber != first.ScanNumber+1 {
		t.Fatalf("expected monotonic increment, got %d then %d", first.ScanNumber, second.ScanNumber)
	}
}

func TestAllocateUnknownInstrument(t *testing.T) {
	alloc, _, _ := setupAllocator(t, false)
	_, err := alloc.Allocate(context.Background(), "nonexistent", "cm12345-6", "", nil)
	if !errIsKind(err, errs.KindUnknownInstrument) {
		t.Fatalf("expected UnknownInstrument, got %v", err)
	}
}

func TestAllocateInvalidVisit(t *testing.T) {
	alloc, _, _ := setupAllocator(t, false)
	_, err := alloc.Allocate(context.Background(), "i22", "not-a-visit", "", nil)
	if !errIsKind(err, errs.KindInvalidSession) {
		t.Fatalf("expected InvalidSession, got %v", err)
	}
}

func TestAllocateReconcilesFallbackHighWaterMark(t *testing.T) {
	alloc, _, tracker := setupAllocator(t, true)
	tracker.highest = 41
	result, err := alloc.Allocate(context.Background(), "i22", "cm12345-6", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ScanNumber != 42 {
		t.Fatalf("expected reconciled counter to bump past tracker high-water mark, got %d", result.ScanNumber)
	}
}

func TestAllocateSurvivesUnavailableFallback(t *testing.T) {
	alloc, _, tracker := setupAllocator(t, true)
	tracker.highErr = errs.New(errs.KindTrackerUnavailable, "disk offline")
	result, err := alloc.Allocate(context.Background(), "i22", "cm12345-6", "", nil)
	if err != nil {
		t.Fatalf("expected fallback failure to be non-fatal, got %v", err)
	}
	if result.ScanNumber != 1 {
		t.Fatalf("got %d", result.ScanNumber)
	}
}

func TestAllocateConcurrentCallsSerialisePerInstrument(t *testing.T) {
	alloc, _, _ := setupAllocator(t, false)
	const n = 20
	var wg sync.WaitGroup
	seen := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := alloc.Allocate(context.Background(), "i22", "cm12345-6", "", nil)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			seen <- result.ScanNumber
		}()
	}
	wg.Wait()
	close(seen)

	numbers := make(map[int64]bool)
	for num := range seen {
		if numbers[num] {
			t.Fatalf("scan number %d allocated twice", num)
		}
		numbers[num] = true
	}
	if len(numbers) != n {
		t.Fatalf("expected %d distinct scan numbers, got %d", n, len(numbers))
	}
}

func TestAllocateDetectorPaths(t *testing.T) {
	alloc, _, _ := setupAllocator(t, false)
	result, err := alloc.Allocate(context.Background(), "i22", "cm12345-6", "sub", []string{"pilatus", "eiger+2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.DetectorPaths) != 2 {
		t.Fatalf("got %v", result.DetectorPaths)
	}
	if _, ok := result.DetectorPaths["eiger+2"]; !ok {
		t.Fatalf("expected path keyed by requested (unnormalised) detector name, got %v", result.DetectorPaths)
	}
}

func errIsKind(err error, kind errs.Kind) bool {
	return errs.KindOf(err) == kind
}
