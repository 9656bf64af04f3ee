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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/handlers"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"

	_ "github.com/localnerve/opsregistry/docs/api" // Swagger docs
)

// @title OpsRegistry API
// @version 1.0.0
// @description Building and document registry over SharePoint, SQL databases or an in-memory mock
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/opsregistry
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Logger.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init("opsregistry", cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	factory := services.NewFactory(cfg)
	svc, err := factory.Service(initCtx, services.ServiceType(cfg.DataService), cfg.UseMock)
	cancel()
	if err != nil {
		logging.Logger.Fatalf("%s: %v", models.MsgInitError, err)
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logging.Logger.Warnf("Failed to close data service: %v", err)
		}
	}()

	deps := handlers.Deps{Config: cfg, Service: svc}
	if cfg.AuthEnabled() {
		deps.Auth = services.NewAuthService(cfg)
		logging.Logger.Info("Authorizer will be initialized on first authenticated request")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		// room for the largest upload plus its form fields
		BodyLimit: models.MaxFileSizeBytes + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	prometheus := fiberprometheus.New("opsregistry")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.Register(app.Group("/api"), deps)

	app.Use(handlers.NotFound)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		logging.Logger.Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logging.Logger.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logging.Logger.Errorf("Failed to start server: %v", err)
		return
	}
	logging.Logger.Info("Server stopped")
}
