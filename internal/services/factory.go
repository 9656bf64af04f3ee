// factory.go
//
// Building and document registry data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of opsregistry.
// opsregistry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// opsregistry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with opsregistry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/localnerve/opsregistry/internal/blob"
	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/database"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceType names a DataService backend
type ServiceType string

// Backends understood by Factory.Service
const (
	ServiceTypeSharePoint    ServiceType = config.ServiceSharePoint
	ServiceTypeAzureDatabase ServiceType = config.ServiceAzureDatabase
	ServiceTypeMock          ServiceType = config.ServiceMock
)

// Constructor builds an uninitialized DataService
type Constructor func(ctx context.Context, cfg *config.Config) (DataService, error)

// Factory builds and holds the one DataService of an application.
// The first backend built sticks until Reset.
type Factory struct {
	mu       sync.Mutex
	cfg      *config.Config
	service  DataService
	backend  ServiceType
	builders map[ServiceType]Constructor
	registry prometheus.Registerer
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithConstructor replaces the constructor used for a backend
func WithConstructor(t ServiceType, c Constructor) FactoryOption {
	return func(f *Factory) {
		f.builders[t] = c
	}
}

// WithRegisterer sets where service metrics are registered. A nil registerer disables them.
func WithRegisterer(reg prometheus.Registerer) FactoryOption {
	return func(f *Factory) {
		f.registry = reg
	}
}

// NewFactory creates a factory for cfg
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg: cfg,
		builders: map[ServiceType]Constructor{
			ServiceTypeMock:          newMockFromConfig,
			ServiceTypeSharePoint:    newSharePointFromConfig,
			ServiceTypeAzureDatabase: newDatabaseFromConfig,
		},
		registry: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Service returns the held service, building and initializing it on first use.
// useMock takes priority over t; unknown types fall back to SharePoint.
// A service whose Initialize fails is not held.
func (f *Factory) Service(ctx context.Context, t ServiceType, useMock bool) (DataService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.service != nil {
		return f.service, nil
	}

	backend := resolve(t, useMock)
	build := f.builders[backend]
	svc, err := build(ctx, f.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s service: %w", ErrServiceUnavailable, backend, err)
	}

	rec, err := metrics.NewRecorder(f.registry, string(backend))
	if err != nil {
		logging.Logger.Warnf("Service metrics disabled: %v", err)
		rec = nil
	}
	svc = Instrument(svc, rec)

	if err := svc.Initialize(ctx); err != nil {
		logging.Logger.Errorf("Failed to initialize %s data service: %v", backend, err)
		closeService(svc)
		return nil, err
	}

	f.service = svc
	f.backend = backend
	logging.Logger.Infof("Using %s data service", backend)
	return svc, nil
}

// Backend returns the type of the held service, or "" when none is held
func (f *Factory) Backend() ServiceType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backend
}

// IsInitialized reports whether a service is held
func (f *Factory) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.service != nil
}

// Reset closes and drops the held service so the next call builds a new one
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	closeService(f.service)
	f.service = nil
	f.backend = ""
}

// Close releases the held service and drops it
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if c, ok := f.service.(io.Closer); ok {
		err = c.Close()
	}
	f.service = nil
	f.backend = ""
	return err
}

func closeService(svc DataService) {
	if c, ok := svc.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logging.Logger.Warnf("Failed to close data service: %v", err)
		}
	}
}

func resolve(t ServiceType, useMock bool) ServiceType {
	if useMock {
		return ServiceTypeMock
	}
	switch t {
	case ServiceTypeMock, ServiceTypeSharePoint, ServiceTypeAzureDatabase:
		return t
	default:
		logging.Logger.Warnf("Unknown service type %q, using %s", t, ServiceTypeSharePoint)
		return ServiceTypeSharePoint
	}
}

func newMockFromConfig(_ context.Context, cfg *config.Config) (DataService, error) {
	return NewMockService(WithLatency(cfg.MockLatency)), nil
}

func newSharePointFromConfig(_ context.Context, cfg *config.Config) (DataService, error) {
	return NewSharePointService(SharePointConfig{
		SiteURL:          cfg.SPSiteURL,
		AccessToken:      cfg.SPAccessToken,
		BuildingsList:    cfg.SPBuildingsList,
		DocumentsLibrary: cfg.SPDocumentsLibrary,
		Timeout:          cfg.SPTimeout,
	}), nil
}

func newDatabaseFromConfig(ctx context.Context, cfg *config.Config) (DataService, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	store, err := blob.Open(ctx, cfg)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return NewDatabaseService(db, store, WithSeed(cfg.DBSeed)), nil
}
