// common.go
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
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/types"
	"github.com/localnerve/opsregistry/internal/utils"
	"github.com/localnerve/opsregistry/internal/validation"
	"github.com/sirupsen/logrus"
)

// ErrorHandler answers every error returned by a route with the JSON error envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return utils.ValidationErrorResponse(c, verr.Error(), verr.Fields)
	}

	var cerr *types.CustomError
	if errors.As(err, &cerr) {
		return utils.ErrorResponse(c, cerr.Message, cerr.Code, cerr.Type)
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		if ferr.Code == fiber.StatusNotFound {
			return utils.NotFoundResponse(c, ferr.Message)
		}
		return utils.ErrorResponse(c, ferr.Message, ferr.Code, "request")
	}

	status, errorType := classify(err)
	if status >= fiber.StatusInternalServerError {
		logging.WithFields(logrus.Fields{
			"method": c.Method(),
			"url":    c.OriginalURL(),
		}).WithError(err).Error("Request failed")
	}
	if status == fiber.StatusNotFound {
		return utils.NotFoundResponse(c, err.Error())
	}
	return utils.ErrorResponse(c, err.Error(), status, errorType)
}

// NotFound answers requests that matched no route
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "data.notfound"
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest, "data.validation.input"
	case errors.Is(err, services.ErrNotInitialized), errors.Is(err, services.ErrServiceUnavailable):
		return fiber.StatusServiceUnavailable, "data.unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "data.timeout"
	case errors.Is(err, services.ErrUploadFailed):
		return fiber.StatusInternalServerError, "data.upload"
	}
	return fiber.StatusInternalServerError, "data.operation"
}

// paramID reads a positive integer route parameter
func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, types.NewCustomError(fiber.StatusBadRequest, "data.validation.input",
			"Invalid "+name+" parameter: "+strconv.Quote(c.Params(name)))
	}
	return id, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Blank means today.
func parseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
