// health.go
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

	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	DataService  string            `json:"dataService"`
	Authorizer   string            `json:"authorizer,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every check passed
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

// HealthCheck pings the data service and, when configured, the Authorizer
func HealthCheck(ctx context.Context, cfg *config.Config, svc DataService) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	fail := func(msg string) {
		result.Status = "unhealthy"
		if result.ErrorMessage == "" {
			result.ErrorMessage = msg
		} else {
			result.ErrorMessage += "; " + msg
		}
	}

	switch {
	case svc == nil:
		result.DataService = "not initialized"
		fail(models.MsgNotInitialized)
	default:
		if p, ok := svc.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				result.DataService = "unreachable"
				result.Details["data_service_error"] = err.Error()
				fail(fmt.Sprintf("Data service ping failed: %v", err))
				logging.Logger.Warnf("Health check failed - data service ping: %v", err)
				break
			}
		}
		result.DataService = "ok"
		result.Details["data_service"] = cfg.DataService
		if cfg.UseMock {
			result.Details["data_service"] = config.ServiceMock
		}
	}

	if cfg.AuthEnabled() {
		if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.Details["authorizer_error"] = err.Error()
			fail(fmt.Sprintf("Authorizer ping failed: %v", err))
			logging.Logger.Warnf("Health check failed - authorizer ping: %v", err)
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	if result.Healthy() {
		logging.Logger.Debug("Health check passed - all systems operational")
	}
	return result
}
