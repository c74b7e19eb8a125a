package app

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/example/numtracker/internal/core/detector"
	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/core/session"
	"github.com/example/numtracker/internal/errs"
	"github.com/example/numtracker/internal/ports/primary"
	"github.com/example/numtracker/internal/ports/secondary"
	"github.com/example/numtracker/internal/telemetry"
)

// maxClaimRetries bounds how many times AllocatorService retries a tracker
// file claim after losing a race to a concurrent writer, before giving up
// and surfacing the race to the caller.
const maxClaimRetries = 5

// AllocatorService implements primary.Allocator. The durable counter in
// InstrumentRepository is always authoritative for the number handed back;
// the fallback TrackerProbe, when configured, is reconciled against it and
// claimed for auditing. A tracker read or claim failure does not block
// allocation — it is logged and counted instead — except a claim race that
// persists past maxClaimRetries, which fails the allocation.
type AllocatorService struct {
	repo    secondary.InstrumentRepository
	tracker secondary.TrackerProbe
	locks   *lockTable
	metrics *telemetry.AllocatorMetrics
}

// NewAllocatorService constructs an AllocatorService. metrics may be nil.
func NewAllocatorService(repo secondary.InstrumentRepository, tracker secondary.TrackerProbe, metrics *telemetry.AllocatorMetrics) *AllocatorService {
	return &AllocatorService{repo: repo, tracker: tracker, locks: newLockTable(), metrics: metrics}
}

func (s *AllocatorService) VisitDirectory(ctx context.Context, instrumentName, visit string) (string, error) {
	inst, err := s.repo.Get(ctx, instrumentName)
	if err != nil {
		return "", err
	}
	sess, err := session.Parse(visit)
	if err != nil {
		return "", err
	}
	builder, err := builderFor(inst)
	if err != nil {
		return "", err
	}
	return builder.Directory(map[string]string{
		"instrument": instrumentName,
		"year":       strconv.Itoa(time.Now().Year()),
		"visit":      sess.Raw,
		"proposal":   sess.Proposal(),
	})
}

func (s *AllocatorService) Allocate(ctx context.Context, instrumentName, visit, subdirectory string, detectors []string) (primary.ScanResult, error) {
	unlock := s.locks.Lock(instrumentName)
	defer unlock()

	inst, err := s.repo.Get(ctx, instrumentName)
	if err != nil {
		return primary.ScanResult{}, err
	}

	sess, err := session.Parse(visit)
	if err != nil {
		return primary.ScanResult{}, err
	}

	builder, err := builderFor(inst)
	if err != nil {
		return primary.ScanResult{}, err
	}

	baseValues := map[string]string{
		"instrument":   instrumentName,
		"year":         strconv.Itoa(time.Now().Year()),
		"visit":        sess.Raw,
		"proposal":     sess.Proposal(),
		"subdirectory": subdirectory,
	}

	directory, err := builder.Directory(baseValues)
	if err != nil {
		return primary.ScanResult{}, err
	}

	if inst.HasFallback() {
		s.reconcileFallback(ctx, &inst)
	}

	newNumber, err := s.repo.BumpNumber(ctx, instrumentName)
	if err != nil {
		return primary.ScanResult{}, err
	}

	if inst.HasFallback() {
		newNumber, err = s.claimWithRetry(ctx, instrumentName, *inst.FallbackDirectory, inst.EffectiveFallbackExtension(), newNumber)
		if err != nil {
			return primary.ScanResult{}, err
		}
	}

	baseValues["scan_number"] = strconv.FormatInt(newNumber, 10)

	scanFile, err := builder.ScanSegment(baseValues)
	if err != nil {
		return primary.ScanResult{}, err
	}

	detectorPaths := make(map[string]string, len(detectors))
	for _, det := range detectors {
		values := make(map[string]string, len(baseValues)+1)
		for k, v := range baseValues {
			values[k] = v
		}
		values["detector"] = detector.Normalise(det)
		p, err := builder.DetectorSegment(values)
		if err != nil {
			return primary.ScanResult{}, err
		}
		detectorPaths[det] = p
	}

	s.metrics.RecordAllocation(ctx, instrumentName)

	return primary.ScanResult{
		Instrument:    instrumentName,
		ScanNumber:    newNumber,
		Directory:     directory,
		ScanFile:      scanFile,
		DetectorPaths: detectorPaths,
	}, nil
}

// reconcileFallback raises the durable counter to the tracker directory's
// highest recorded number, if that number is ahead. Any failure to read
// the tracker directory is logged and counted, never returned: the
// tracker is a secondary source of truth, per this system's historical
// fallback-numbering behaviour.
func (s *AllocatorService) reconcileFallback(ctx context.Context, inst *instrument.Instrument) {
	highest, err := s.tracker.Highest(ctx, *inst.FallbackDirectory, inst.EffectiveFallbackExtension())
	if err != nil {
		slog.Warn("fallback tracker unavailable during reconcile", "instrument", inst.Name, "error", err)
		s.metrics.RecordTrackerWarning(ctx, inst.Name)
		return
	}
	if highest <= inst.ScanNumber {
		return
	}
	updated, err := s.repo.BumpToAtLeast(ctx, inst.Name, highest)
	if err != nil {
		slog.Warn("failed to reconcile counter to fallback tracker high-water mark", "instrument", inst.Name, "error", err)
		s.metrics.RecordTrackerWarning(ctx, inst.Name)
		return
	}
	inst.ScanNumber = updated
}

// claimWithRetry claims number in the fallback tracker directory,
// re-bumping the durable counter and retrying on a lost race, up to
// maxClaimRetries times. Non-race tracker errors are logged and treated as
// non-fatal, matching reconcileFallback's philosophy; a race that persists
// past the retry budget is returned to the caller.
func (s *AllocatorService) claimWithRetry(ctx context.Context, instrumentName, dir, extension string, number int64) (int64, error) {
	for attempt := 0; ; attempt++ {
		err := s.tracker.Claim(ctx, dir, extension, number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, errs.ErrTrackerRace) {
			slog.Warn("fallback tracker claim failed", "instrument", instrumentName, "error", err)
			s.metrics.RecordTrackerWarning(ctx, instrumentName)
			return number, nil
		}
		if attempt >= maxClaimRetries {
			return 0, errs.Wrap(errs.KindTrackerRace, "exhausted retries claiming tracker file", err)
		}
		s.metrics.RecordRetry(ctx, instrumentName)
		next, bumpErr := s.repo.BumpNumber(ctx, instrumentName)
		if bumpErr != nil {
			return 0, bumpErr
		}
		number = next
	}
}
