// routes.go
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

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/middleware"
	"github.com/localnerve/opsregistry/internal/services"
)

// Deps are what the API routes are served from
type Deps struct {
	Config  *config.Config
	Service services.DataService
	// Auth validates sessions on writes. Nil serves every route without a session.
	Auth middleware.SessionValidator
}

// Register mounts the API routes on api
func Register(api fiber.Router, deps Deps) {
	api.Use(middleware.VersionMiddleware())
	api.Use(middleware.Actor(deps.Config.DefaultActor()))

	buildings := &BuildingHandler{Service: deps.Service}
	documents := &DocumentHandler{Service: deps.Service}
	health := &HealthHandler{Config: deps.Config, Service: deps.Service}

	user := middleware.AuthUser(deps.Auth)
	admin := middleware.AuthAdmin(deps.Auth)
	hardDeleteAdmin := func(c *fiber.Ctx) error {
		if c.QueryBool("hard", false) {
			return admin(c)
		}
		return user(c)
	}

	api.Get("/health", health.Health)

	api.Get("/buildings", buildings.ListBuildings)
	api.Get("/buildings/:id", buildings.GetBuilding)
	api.Get("/buildings/:id/documents", buildings.ListDocuments)
	api.Post("/buildings", user, buildings.CreateBuilding)
	api.Patch("/buildings/:id", user, buildings.UpdateBuilding)
	api.Delete("/buildings/:id", hardDeleteAdmin, buildings.DeleteBuilding)

	api.Post("/documents", user, documents.UploadDocument)
	api.Get("/documents/:id", documents.GetDocument)
	api.Get("/documents/:id/content", documents.DownloadDocument)
	api.Delete("/documents/:id", user, documents.DeleteDocument)
}
