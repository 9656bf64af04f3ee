// main.go
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	logging.InitWithOutput("healthcheck", cfg.LogLevel, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	factory := services.NewFactory(cfg, services.WithRegisterer(prometheus.NewRegistry()))
	defer factory.Close()

	svc, err := factory.Service(ctx, services.ServiceType(cfg.DataService), cfg.UseMock)
	if err != nil {
		logging.Logger.Errorf("Failed to create data service: %v", err)
		svc = nil
	}

	result := services.HealthCheck(ctx, cfg, svc)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logging.Logger.Errorf("Failed to marshal health check result: %v", err)
		return 1
	}
	fmt.Println(string(output))

	if !result.Healthy() {
		return 1
	}
	return 0
}
