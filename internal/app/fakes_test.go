package app

import (
	"context"
	"sort"
	"sync"

	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/errs"
)

type fakeRepo struct {
	mu          sync.Mutex
	instruments map[string]instrument.Instrument
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{instruments: make(map[string]instrument.Instrument)}
}

func (r *fakeRepo) GetAll(ctx context.Context, filter []string) ([]instrument.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter != nil && len(filter) == 0 {
		return nil, nil
	}
	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[name] = true
	}
	out := make([]instrument.Instrument, 0, len(r.instruments))
	for _, v := range r.instruments {
		if filter != nil && !wanted[v.Name] {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) Get(ctx context.Context, name string) (instrument.Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instruments[name]
	if !ok {
		return instrument.Instrument{}, errs.New(errs.KindUnknownInstrument, name)
	}
	return inst, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, inst instrument.Instrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instruments[inst.Name]; ok {
		inst.ScanNumber = existing.ScanNumber
	}
	r.instruments[inst.Name] = inst
	return nil
}

func (r *fakeRepo) SetNumber(ctx context.Context, name string, value int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instruments[name]
	if !ok {
		return errs.New(errs.KindUnknownInstrument, name)
	}
	inst.ScanNumber = value
	r.instruments[name] = inst
	return nil
}

func (r *fakeRepo) BumpNumber(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instruments[name]
	if !ok {
		return 0, errs.New(errs.KindUnknownInstrument, name)
	}
	inst.ScanNumber++
	r.instruments[name] = inst
	return inst.ScanNumber, nil
}

func (r *fakeRepo) BumpToAtLeast(ctx context.Context, name string, target int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instruments[name]
	if !ok {
		return 0, errs.New(errs.KindUnknownInstrument, name)
	}
	if target > inst.ScanNumber {
		inst.ScanNumber = target
	}
	r.instruments[name] = inst
	return inst.ScanNumber, nil
}

type fakeTracker struct {
	mu       sync.Mutex
	highest  int64
	highErr  error
	claimed  map[int64]bool
	claimErr error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{claimed: make(map[int64]bool)}
}

func (t *fakeTracker) Highest(ctx context.Context, dir, extension string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.highErr != nil {
		return 0, t.highErr
	}
	return t.highest, nil
}

func (t *fakeTracker) Claim(ctx context.Context, dir, extension string, number int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.claimErr != nil {
		return t.claimErr
	}
	if t.claimed[number] {
		return errs.New(errs.KindTrackerRace, "already claimed")
	}
	t.claimed[number] = true
	return nil
}
