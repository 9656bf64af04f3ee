// metrics_test.go
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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg, "mock")
	require.NoError(t, err)

	r.Observe("GetBuildings", "ok", 10*time.Millisecond)
	r.Observe("GetBuildings", "ok", 20*time.Millisecond)
	r.Observe("GetBuildingByID", "not_found", time.Millisecond)
	r.AddUploaded(1024)
	r.AddUploaded(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Calls().WithLabelValues("mock", "GetBuildings", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Calls().WithLabelValues("mock", "GetBuildingByID", "not_found")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(r.uploaded))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg, "mock")
	require.NoError(t, err)
	second, err := NewRecorder(reg, "mock")
	require.NoError(t, err)

	first.Observe("Initialize", "ok", 0)
	second.Observe("Initialize", "ok", 0)
	assert.Equal(t, 2.0, testutil.ToFloat64(second.Calls().WithLabelValues("mock", "Initialize", "ok")))
}

func TestRecorderWithoutRegistry(t *testing.T) {
	r, err := NewRecorder(nil, "SharePoint")
	require.NoError(t, err)
	assert.Equal(t, "SharePoint", r.Backend())
	r.Observe("Ping", "error", time.Second)
}
