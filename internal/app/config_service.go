package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/core/pathbuilder"
	"github.com/example/numtracker/internal/core/pathrole"
	"github.com/example/numtracker/internal/core/template"
	"github.com/example/numtracker/internal/core/trackerpath"
	"github.com/example/numtracker/internal/errs"
	"github.com/example/numtracker/internal/ports/secondary"
)

// ConfigService implements primary.ConfigStore against an
// InstrumentRepository. The fallback TrackerProbe is consulted, read-only,
// to attach a live file_scan_number snapshot to configuration reads; a
// failure to read it is logged and never fails the read, matching
// AllocatorService's tracker-is-secondary-source-of-truth philosophy.
type ConfigService struct {
	repo    secondary.InstrumentRepository
	tracker secondary.TrackerProbe
}

// NewConfigService constructs a ConfigService.
func NewConfigService(repo secondary.InstrumentRepository, tracker secondary.TrackerProbe) *ConfigService {
	return &ConfigService{repo: repo, tracker: tracker}
}

func (s *ConfigService) Configurations(ctx context.Context, filter []string) ([]instrument.Instrument, error) {
	all, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i] = s.withFileScanNumber(ctx, all[i])
	}
	return all, nil
}

func (s *ConfigService) Configuration(ctx context.Context, name string) (instrument.Instrument, error) {
	inst, err := s.repo.Get(ctx, name)
	if err != nil {
		return instrument.Instrument{}, err
	}
	return s.withFileScanNumber(ctx, inst), nil
}

// withFileScanNumber attaches a snapshot of the fallback tracker
// directory's highest recorded number, if a fallback is configured.
func (s *ConfigService) withFileScanNumber(ctx context.Context, inst instrument.Instrument) instrument.Instrument {
	if !inst.HasFallback() {
		return inst
	}
	highest, err := s.tracker.Highest(ctx, *inst.FallbackDirectory, inst.EffectiveFallbackExtension())
	if err != nil {
		slog.Warn("fallback tracker unavailable reading configuration", "instrument", inst.Name, "error", err)
		return inst
	}
	inst.FileScanNumber = &highest
	return inst
}

func (s *ConfigService) Configure(ctx context.Context, inst instrument.Instrument, setNumber *int64) error {
	if g := instrument.CanUpsert(inst); !g.Allowed {
		return g.Error(errs.KindInvalidTemplate)
	}

	if err := validateTemplate(inst.VisitTemplate, pathrole.RoleVisit); err != nil {
		return err
	}
	if err := validateTemplate(inst.ScanTemplate, pathrole.RoleScan); err != nil {
		return err
	}
	if err := validateTemplate(inst.DetectorTemplate, pathrole.RoleDetector); err != nil {
		return err
	}

	if inst.FallbackDirectory != nil {
		if err := trackerpath.CheckExtension(inst.EffectiveFallbackExtension()); err != nil {
			return err
		}
	}

	if err := s.repo.Upsert(ctx, inst); err != nil {
		return fmt.Errorf("failed to persist instrument %s: %w", inst.Name, err)
	}

	if setNumber != nil {
		if g := instrument.CanSetNumber(*setNumber); !g.Allowed {
			return g.Error(errs.KindCounterUnderflow)
		}
		if err := s.repo.SetNumber(ctx, inst.Name, *setNumber); err != nil {
			return fmt.Errorf("failed to set scan number for %s: %w", inst.Name, err)
		}
	}
	return nil
}

func validateTemplate(raw string, role pathrole.Role) error {
	tmpl, err := template.Parse(raw)
	if err != nil {
		return err
	}
	return role.Validate(tmpl, strings.HasPrefix(raw, "/"))
}

// builderFor constructs a pathbuilder.Builder from an instrument's
// configured templates, validating roles as it goes.
func builderFor(inst instrument.Instrument) (*pathbuilder.Builder, error) {
	visit, err := template.Parse(inst.VisitTemplate)
	if err != nil {
		return nil, err
	}
	scan, err := template.Parse(inst.ScanTemplate)
	if err != nil {
		return nil, err
	}
	det, err := template.Parse(inst.DetectorTemplate)
	if err != nil {
		return nil, err
	}
	b := &pathbuilder.Builder{Visit: visit, Scan: scan, Detector: det}
	if err := b.ValidateRoles(); err != nil {
		return nil, err
	}
	return b, nil
}
