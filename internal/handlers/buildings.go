// buildings.go
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
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/types"
	"github.com/localnerve/opsregistry/internal/utils"
	"github.com/localnerve/opsregistry/internal/validation"
)

// BuildingHandler serves the building routes
type BuildingHandler struct {
	Service services.DataService
}

// ListBuildings handles GET /api/buildings
// @Summary List or search buildings
// @Description Buildings ordered by property name. q filters by property name or address.
// @Tags Buildings
// @Produce json
// @Param q query string false "Search text"
// @Param includeDeleted query bool false "Include soft-deleted buildings"
// @Success 200 {array} models.Building
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /buildings [get]
func (h *BuildingHandler) ListBuildings(c *fiber.Ctx) error {
	includeDeleted := c.QueryBool("includeDeleted", false)

	var (
		buildings []models.Building
		err       error
	)
	if q := c.Query("q"); q != "" {
		buildings, err = h.Service.SearchBuildings(c.UserContext(), q, includeDeleted)
	} else {
		buildings, err = h.Service.GetBuildings(c.UserContext(), includeDeleted)
	}
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, buildings, fiber.StatusOK)
}

// GetBuilding handles GET /api/buildings/:id
// @Summary Get a building
// @Tags Buildings
// @Produce json
// @Param id path int true "Building ID"
// @Success 200 {object} models.Building
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /buildings/{id} [get]
func (h *BuildingHandler) GetBuilding(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Service.GetBuildingByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, b, fiber.StatusOK)
}

// CreateBuilding handles POST /api/buildings
// @Summary Create a building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param body body models.BuildingInput true "Building fields"
// @Success 201 {object} models.Building
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /buildings [post]
func (h *BuildingHandler) CreateBuilding(c *fiber.Ctx) error {
	var in models.BuildingInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewCustomError(fiber.StatusBadRequest, "data.validation.input", "Invalid input")
	}
	if err := validation.ValidateBuildingCreate(in); err != nil {
		return err
	}

	b, err := h.Service.CreateBuilding(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, b, fiber.StatusCreated)
}

// UpdateBuilding handles PATCH /api/buildings/:id
// @Summary Update a building
// @Description Only the fields present in the body are changed.
// @Tags Buildings
// @Accept json
// @Produce json
// @Param id path int true "Building ID"
// @Param body body models.BuildingInput true "Fields to change"
// @Success 200 {object} models.Building
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /buildings/{id} [patch]
func (h *BuildingHandler) UpdateBuilding(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in models.BuildingInput
	if err := c.BodyParser(&in); err != nil {
		return types.NewCustomError(fiber.StatusBadRequest, "data.validation.input", "Invalid input")
	}
	if err := validation.ValidateBuildingUpdate(in); err != nil {
		return err
	}

	b, err := h.Service.UpdateBuilding(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, b, fiber.StatusOK)
}

// DeleteBuilding handles DELETE /api/buildings/:id
// @Summary Delete a building
// @Description Soft delete by default. hard=true removes the record and needs the admin role.
// @Tags Buildings
// @Produce json
// @Param id path int true "Building ID"
// @Param hard query bool false "Remove permanently"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /buildings/{id} [delete]
func (h *BuildingHandler) DeleteBuilding(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	soft := !c.QueryBool("hard", false)
	if err := h.Service.DeleteBuilding(c.UserContext(), id, soft); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, models.MsgDeleteSuccess, id)
}

// ListDocuments handles GET /api/buildings/:id/documents
// @Summary List a building's documents
// @Tags Documents
// @Produce json
// @Param id path int true "Building ID"
// @Success 200 {array} models.Document
// @Router /buildings/{id}/documents [get]
func (h *BuildingHandler) ListDocuments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	docs, err := h.Service.GetDocumentsByBuilding(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, docs, fiber.StatusOK)
}
