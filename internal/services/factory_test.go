// factory_test.go
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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/opsregistry/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingConstructor builds mocks and counts the calls per backend
type countingConstructor struct {
	mu    sync.Mutex
	calls map[ServiceType]int
	fail  error
}

func (c *countingConstructor) build(t ServiceType) Constructor {
	return func(ctx context.Context, cfg *config.Config) (DataService, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.calls == nil {
			c.calls = map[ServiceType]int{}
		}
		c.calls[t]++
		if c.fail != nil {
			return nil, c.fail
		}
		return NewMockService(WithLatency(0)), nil
	}
}

func newTestFactory(c *countingConstructor, reg prometheus.Registerer) *Factory {
	return NewFactory(&config.Config{MockLatency: 0},
		WithRegisterer(reg),
		WithConstructor(ServiceTypeMock, c.build(ServiceTypeMock)),
		WithConstructor(ServiceTypeSharePoint, c.build(ServiceTypeSharePoint)),
		WithConstructor(ServiceTypeAzureDatabase, c.build(ServiceTypeAzureDatabase)),
	)
}

func TestFactorySelection(t *testing.T) {
	tests := []struct {
		name    string
		typ     ServiceType
		useMock bool
		want    ServiceType
	}{
		{"mock flag wins", ServiceTypeSharePoint, true, ServiceTypeMock},
		{"sharepoint", ServiceTypeSharePoint, false, ServiceTypeSharePoint},
		{"database", ServiceTypeAzureDatabase, false, ServiceTypeAzureDatabase},
		{"explicit mock", ServiceTypeMock, false, ServiceTypeMock},
		{"unknown falls back", ServiceType("Oracle"), false, ServiceTypeSharePoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &countingConstructor{}
			f := newTestFactory(c, nil)

			svc, err := f.Service(context.Background(), tt.typ, tt.useMock)
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, tt.want, f.Backend())
			assert.Equal(t, 1, c.calls[tt.want])
		})
	}
}

func TestFactoryHoldsFirstServiceUntilReset(t *testing.T) {
	ctx := context.Background()
	c := &countingConstructor{}
	f := newTestFactory(c, nil)
	assert.False(t, f.IsInitialized())

	first, err := f.Service(ctx, ServiceTypeMock, false)
	require.NoError(t, err)
	assert.True(t, f.IsInitialized())

	again, err := f.Service(ctx, ServiceTypeAzureDatabase, false)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, ServiceTypeMock, f.Backend())
	assert.Zero(t, c.calls[ServiceTypeAzureDatabase])

	f.Reset()
	assert.False(t, f.IsInitialized())

	next, err := f.Service(ctx, ServiceTypeAzureDatabase, false)
	require.NoError(t, err)
	assert.NotSame(t, first, next)
	assert.Equal(t, ServiceTypeAzureDatabase, f.Backend())
}

func TestFactoryConcurrentCallersShareOneService(t *testing.T) {
	c := &countingConstructor{}
	f := newTestFactory(c, nil)

	var wg sync.WaitGroup
	got := make([]DataService, 10)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc, err := f.Service(context.Background(), ServiceTypeMock, false)
			assert.NoError(t, err)
			got[i] = svc
		}(i)
	}
	wg.Wait()

	for _, svc := range got {
		assert.Same(t, got[0], svc)
	}
	assert.Equal(t, 1, c.calls[ServiceTypeMock])
}

func TestFactoryConstructorFailure(t *testing.T) {
	c := &countingConstructor{fail: errors.New("dial tcp: refused")}
	f := newTestFactory(c, nil)

	_, err := f.Service(context.Background(), ServiceTypeAzureDatabase, false)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.False(t, f.IsInitialized())
}

func TestFactoryInitializeFailureIsNotHeld(t *testing.T) {
	f := NewFactory(&config.Config{}, WithRegisterer(nil))

	// SharePoint without a reachable site fails to initialize
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := f.Service(ctx, ServiceTypeSharePoint, false)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.False(t, f.IsInitialized())
}

func TestFactoryRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newTestFactory(&countingConstructor{}, reg)

	svc, err := f.Service(context.Background(), ServiceTypeMock, false)
	require.NoError(t, err)

	_, err = svc.GetBuildings(context.Background(), false)
	require.NoError(t, err)
	_, err = svc.GetBuildingByID(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)

	count, err := testutil.GatherAndCount(reg, "opsregistry_data_service_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "Initialize, GetBuildings and GetBuildingByID series")

	p, ok := svc.(Pinger)
	require.True(t, ok)
	assert.NoError(t, p.Ping(context.Background()))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(buildingNotFound(1)))
	assert.Equal(t, "unavailable", Outcome(ErrServiceUnavailable))
	assert.Equal(t, "not_initialized", Outcome(ErrNotInitialized))
	assert.Equal(t, "canceled", Outcome(context.Canceled))
	assert.Equal(t, "error", Outcome(opFailed("x", errors.New("boom"))))
}

// closingMock records Close calls
type closingMock struct {
	*MockService
	closed int
}

func (c *closingMock) Close() error {
	c.closed++
	return nil
}

func TestFactoryCloseReleasesService(t *testing.T) {
	held := &closingMock{MockService: NewMockService(WithLatency(0))}
	f := NewFactory(&config.Config{},
		WithRegisterer(prometheus.NewRegistry()),
		WithConstructor(ServiceTypeMock, func(context.Context, *config.Config) (DataService, error) {
			return held, nil
		}),
	)

	_, err := f.Service(context.Background(), ServiceTypeMock, true)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, 1, held.closed)
	assert.False(t, f.IsInitialized())
	assert.NoError(t, f.Close())
	assert.Equal(t, 1, held.closed)
}

func TestFactoryResetClosesService(t *testing.T) {
	var built []*closingMock
	f := NewFactory(&config.Config{},
		WithRegisterer(prometheus.NewRegistry()),
		WithConstructor(ServiceTypeMock, func(context.Context, *config.Config) (DataService, error) {
			m := &closingMock{MockService: NewMockService(WithLatency(0))}
			built = append(built, m)
			return m, nil
		}),
	)

	_, err := f.Service(context.Background(), ServiceTypeMock, true)
	require.NoError(t, err)
	f.Reset()
	require.Len(t, built, 1)
	assert.Equal(t, 1, built[0].closed)
	assert.False(t, f.IsInitialized())

	_, err = f.Service(context.Background(), ServiceTypeMock, true)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, 0, built[1].closed)

	f.Reset()
	f.Reset()
	assert.Equal(t, 1, built[1].closed)
}
