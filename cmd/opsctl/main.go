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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/console"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/store"
	"github.com/mattn/go-isatty"
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
	// stdout belongs to the console
	logging.InitWithOutput("opsctl", cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := services.NewFactory(cfg, services.WithRegisterer(prometheus.NewRegistry()))
	defer factory.Close()

	st := store.New(func(ctx context.Context) (services.DataService, error) {
		return factory.Service(ctx, services.ServiceType(cfg.DataService), cfg.UseMock)
	}, store.WithStoreActor(cfg.DefaultActor()))

	if err := st.Initialize(ctx); err != nil {
		logging.Logger.Errorf("%s: %v", models.MsgInitError, err)
		return 1
	}

	var opts []console.Option
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		opts = append(opts, console.WithoutPrompt())
	}
	fmt.Println("OpsRegistry console. Type help for commands.")
	done := make(chan error, 1)
	go func() {
		done <- console.New(st, os.Stdin, os.Stdout, opts...).Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			logging.Logger.Errorf("Console stopped: %v", err)
			return 1
		}
	case <-ctx.Done():
		// the console goroutine may still be blocked reading stdin
		fmt.Println()
	}
	return 0
}
