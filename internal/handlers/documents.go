// documents.go
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
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/types"
	"github.com/localnerve/opsregistry/internal/utils"
	"github.com/localnerve/opsregistry/internal/validation"
	"github.com/sirupsen/logrus"
)

// DocumentHandler serves the document routes
type DocumentHandler struct {
	Service services.DataService
	Now     func() time.Time
}

// UploadDocument handles POST /api/documents
// @Summary Upload a document
// @Description Multipart upload. Files are limited to 10MB and an extension allow-list.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param buildingId formData int true "Building ID"
// @Param documentType formData string true "Contract, Invoice, Photo, Report or Other"
// @Param title formData string false "Title, defaults to the file name"
// @Param documentDate formData string false "YYYY-MM-DD"
// @Param description formData string false "Description"
// @Success 201 {object} models.Document
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /documents [post]
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return types.NewCustomError(fiber.StatusBadRequest, "data.validation.input", "File is required")
	}
	upload, err := h.uploadFromForm(c, header)
	if err != nil {
		return err
	}
	if err := validation.ValidateUpload(upload); err != nil {
		return err
	}

	log := logging.WithFields(logrus.Fields{"fileName": upload.FileName, "buildingId": upload.BuildingID})
	doc, err := h.Service.UploadDocument(c.UserContext(), upload, func(p int) {
		log.Debugf("Upload progress %d%%", p)
	})
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, doc, fiber.StatusCreated)
}

func (h *DocumentHandler) uploadFromForm(c *fiber.Ctx, header *multipart.FileHeader) (models.DocumentUpload, error) {
	invalid := func(msg string) error {
		return types.NewCustomError(fiber.StatusBadRequest, "data.validation.input", msg)
	}

	buildingID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("buildingId")))
	if err != nil {
		return models.DocumentUpload{}, invalid("Building is required")
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	date, err := parseDate(strings.TrimSpace(c.FormValue("documentDate")), now())
	if err != nil {
		return models.DocumentUpload{}, invalid("Invalid document date")
	}

	f, err := header.Open()
	if err != nil {
		return models.DocumentUpload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	// one byte past the limit is enough for validation to reject it
	data, err := io.ReadAll(io.LimitReader(f, models.MaxFileSizeBytes+1))
	if err != nil {
		return models.DocumentUpload{}, fmt.Errorf("read upload: %w", err)
	}

	return models.DocumentUpload{
		FileName:     header.Filename,
		Data:         data,
		ContentType:  header.Header.Get(fiber.HeaderContentType),
		Title:        c.FormValue("title"),
		BuildingID:   buildingID,
		DocumentType: models.DocumentType(c.FormValue("documentType")),
		DocumentDate: date,
		Description:  c.FormValue("description"),
	}, nil
}

// GetDocument handles GET /api/documents/:id
// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} models.Document
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.Service.GetDocumentByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, doc, fiber.StatusOK)
}

// DownloadDocument handles GET /api/documents/:id/content
// @Summary Download a document
// @Tags Documents
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /documents/{id}/content [get]
func (h *DocumentHandler) DownloadDocument(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	content, err := h.Service.DownloadDocument(c.UserContext(), id)
	if err != nil {
		return err
	}

	c.Attachment(content.FileName)
	if content.ContentType != "" {
		c.Set(fiber.HeaderContentType, content.ContentType)
	}
	return c.Status(fiber.StatusOK).Send(content.Data)
}

// DeleteDocument handles DELETE /api/documents/:id
// @Summary Delete a document
// @Description Sets the document status to Deleted.
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Service.DeleteDocument(c.UserContext(), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Document deleted successfully", id)
}
