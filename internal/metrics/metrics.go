// metrics.go
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

// Package metrics records data service operation counts and latencies for Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "opsregistry"

// Recorder holds the data service collectors
type Recorder struct {
	backend  string
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	uploaded prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg when it is not nil.
// Collectors already registered by an earlier recorder are reused.
func NewRecorder(reg prometheus.Registerer, backend string) (*Recorder, error) {
	r := &Recorder{
		backend: backend,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data_service",
			Name:      "operations_total",
			Help:      "Data service operations by backend, operation and outcome.",
		}, []string{"backend", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "data_service",
			Name:      "operation_duration_seconds",
			Help:      "Data service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		uploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "data_service",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes of document content accepted by uploads.",
		}),
	}
	if reg == nil {
		return r, nil
	}

	var err error
	if r.calls, err = register(reg, r.calls); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.uploaded, err = register(reg, r.uploaded); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Backend returns the backend label value
func (r *Recorder) Backend() string {
	return r.backend
}

// Observe records one operation
func (r *Recorder) Observe(operation, outcome string, elapsed time.Duration) {
	r.calls.WithLabelValues(r.backend, operation, outcome).Inc()
	r.duration.WithLabelValues(r.backend, operation).Observe(elapsed.Seconds())
}

// AddUploaded counts accepted upload bytes
func (r *Recorder) AddUploaded(n int64) {
	if n > 0 {
		r.uploaded.Add(float64(n))
	}
}

// Calls returns the operation counter, for tests and diagnostics
func (r *Recorder) Calls() *prometheus.CounterVec {
	return r.calls
}
