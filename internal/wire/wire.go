// Package wire provides dependency injection for the numtracker
// application. It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/numtracker/api"
	"github.com/example/numtracker/internal/adapters/sqlite"
	"github.com/example/numtracker/internal/adapters/trackerfs"
	"github.com/example/numtracker/internal/app"
	"github.com/example/numtracker/internal/contract"
	"github.com/example/numtracker/internal/db"
	"github.com/example/numtracker/internal/ports/primary"
	"github.com/example/numtracker/internal/procconfig"
	"github.com/example/numtracker/internal/telemetry"
)

var (
	allocatorService primary.Allocator
	configService    primary.ConfigStore
	contractService  *contract.Service
	once             sync.Once

	// cfg is set by Configure before the first call into any of the
	// singleton accessors below; an unconfigured process falls back to
	// procconfig's defaults (in-home-directory database, no auth claims).
	cfg procconfig.Config
)

// Configure records the resolved process configuration for initServices to
// use. Call it before the first AllocatorService/ConfigService/Contract
// call, typically right after procconfig.Resolve in cmd/numtracker.
func Configure(c procconfig.Config) {
	cfg = c
}

// Config returns the process configuration previously passed to Configure.
func Config() procconfig.Config {
	return cfg
}

// AllocatorService returns the singleton Allocator instance.
func AllocatorService() primary.Allocator {
	once.Do(initServices)
	return allocatorService
}

// ConfigService returns the singleton ConfigStore instance.
func ConfigService() primary.ConfigStore {
	once.Do(initServices)
	return configService
}

// Contract returns the singleton contract.Service instance, wired with an
// AuthPolicy derived from the resolved process configuration's auth claims.
func Contract() *contract.Service {
	once.Do(initServices)
	return contractService
}

// initServices initializes all services and their dependencies. This is
// called once via sync.Once.
func initServices() {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	instrumentRepo := sqlite.NewInstrumentRepository(database)
	tracker := trackerfs.NewProbe()

	metrics, err := telemetry.NewAllocatorMetrics()
	if err != nil {
		log.Fatalf("failed to initialize allocator metrics: %v", err)
	}

	allocatorService = app.NewAllocatorService(instrumentRepo, tracker, metrics)
	configService = app.NewConfigService(instrumentRepo, tracker)

	var auth contract.AuthPolicy
	if cfg.AuthAccess != "" || cfg.AuthAdmin != "" {
		auth = contract.ClaimPolicy{AccessClaim: cfg.AuthAccess, AdminClaim: cfg.AuthAdmin}
	}

	contractService = contract.NewService(allocatorService, configService, auth, api.SchemaSDL)
}
