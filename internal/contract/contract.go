// Package contract is the external contract layer: the operations a
// transport (GraphQL-over-HTTP, in this system's external interface) or a
// CLI client drives, independent of how that transport decodes requests.
// No GraphQL engine and no OIDC/JWT verification live here — both are
// treated as external collaborators, reached only through the interfaces
// below, which accept already-resolved identity claims.
package contract

import (
	"context"

	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/errs"
	"github.com/example/numtracker/internal/ports/primary"
)

// Identity is a caller's already-validated claim set. Resolving a bearer
// token into an Identity is the external collaborator's job; this package
// never sees a token.
type Identity struct {
	Subject string
	Claims  map[string]bool
}

// HasClaim reports whether identity carries claim.
func (i Identity) HasClaim(claim string) bool {
	if claim == "" {
		return true
	}
	return i.Claims[claim]
}

// AuthPolicy decides whether an already-resolved identity may perform a
// read or write operation.
type AuthPolicy interface {
	AuthorizeRead(ctx context.Context, identity Identity) error
	AuthorizeWrite(ctx context.Context, identity Identity) error
}

// NoAuth allows every caller. It is the default when no auth claims are
// configured.
type NoAuth struct{}

func (NoAuth) AuthorizeRead(ctx context.Context, identity Identity) error  { return nil }
func (NoAuth) AuthorizeWrite(ctx context.Context, identity Identity) error { return nil }

// ClaimPolicy requires a configured claim for read and write operations.
// An empty claim requirement permits every caller for that operation kind.
type ClaimPolicy struct {
	AccessClaim string
	AdminClaim  string
}

func (p ClaimPolicy) AuthorizeRead(ctx context.Context, identity Identity) error {
	if !identity.HasClaim(p.AccessClaim) {
		return errs.New(errs.KindForbidden, "missing required access claim")
	}
	return nil
}

func (p ClaimPolicy) AuthorizeWrite(ctx context.Context, identity Identity) error {
	if !identity.HasClaim(p.AdminClaim) {
		return errs.New(errs.KindForbidden, "missing required admin claim")
	}
	return nil
}

// VisitPaths is the result of resolving a visit directory without
// allocating a scan number.
type VisitPaths struct {
	Instrument string
	Visit      string
	Directory  string
}

// Service implements the six external-facing operations by delegating to
// the allocator and config store primary ports, after checking AuthPolicy.
type Service struct {
	allocator primary.Allocator
	configs   primary.ConfigStore
	auth      AuthPolicy
	schema    string
}

// NewService constructs a Service. auth may be nil, in which case NoAuth is
// used.
func NewService(allocator primary.Allocator, configs primary.ConfigStore, auth AuthPolicy, schema string) *Service {
	if auth == nil {
		auth = NoAuth{}
	}
	return &Service{allocator: allocator, configs: configs, auth: auth, schema: schema}
}

// Paths resolves a visit directory, without allocating a scan number.
func (s *Service) Paths(ctx context.Context, identity Identity, instrumentName, visit string) (VisitPaths, error) {
	if err := s.auth.AuthorizeRead(ctx, identity); err != nil {
		return VisitPaths{}, err
	}
	dir, err := s.allocator.VisitDirectory(ctx, instrumentName, visit)
	if err != nil {
		return VisitPaths{}, err
	}
	return VisitPaths{Instrument: instrumentName, Visit: visit, Directory: dir}, nil
}

// Configuration returns one instrument's configuration.
func (s *Service) Configuration(ctx context.Context, identity Identity, name string) (instrument.Instrument, error) {
	if err := s.auth.AuthorizeRead(ctx, identity); err != nil {
		return instrument.Instrument{}, err
	}
	return s.configs.Configuration(ctx, name)
}

// Configurations returns configured instruments, restricted to filter when
// non-nil (see primary.ConfigStore.Configurations for filter semantics).
func (s *Service) Configurations(ctx context.Context, identity Identity, filter []string) ([]instrument.Instrument, error) {
	if err := s.auth.AuthorizeRead(ctx, identity); err != nil {
		return nil, err
	}
	return s.configs.Configurations(ctx, filter)
}

// Scan allocates the next scan number for instrumentName and renders its
// paths.
func (s *Service) Scan(ctx context.Context, identity Identity, instrumentName, visit, subdirectory string, detectors []string) (primary.ScanResult, error) {
	if err := s.auth.AuthorizeWrite(ctx, identity); err != nil {
		return primary.ScanResult{}, err
	}
	return s.allocator.Allocate(ctx, instrumentName, visit, subdirectory, detectors)
}

// Configure validates and persists an instrument's configuration. When
// setNumber is non-nil, it also overrides the instrument's scan-number
// counter.
func (s *Service) Configure(ctx context.Context, identity Identity, inst instrument.Instrument, setNumber *int64) error {
	if err := s.auth.AuthorizeWrite(ctx, identity); err != nil {
		return err
	}
	return s.configs.Configure(ctx, inst, setNumber)
}

// Schema returns the schema document describing this contract's shape to
// external collaborators.
func (s *Service) Schema(ctx context.Context) string {
	return s.schema
}
