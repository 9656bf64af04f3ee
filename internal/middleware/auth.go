// auth.go
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

package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/types"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

// SessionValidator checks a session cookie for a set of roles
type SessionValidator interface {
	Init(requestProtocol, requestHost string) error
	ValidateSession(cookie string, roles []string) (*services.Session, error)
}

// AuthAdmin requires a session with the admin role. A nil validator disables the check.
func AuthAdmin(v SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"admin"}, "data.authorization.admin")
	}
}

// AuthUser requires a session with the user role. A nil validator disables the check.
func AuthUser(v SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, v, []string{"user"}, "data.authorization.user")
	}
}

func authorize(c *fiber.Ctx, v SessionValidator, roles []string, errorType string) error {
	if v == nil {
		return c.Next()
	}

	if err := v.Init(c.Protocol(), c.Hostname()); err != nil {
		logging.Logger.WithError(err).Error("Authorizer unavailable")
		return types.NewCustomError(fiber.StatusServiceUnavailable, errorType, "Authorizer unavailable")
	}

	cookie := c.Cookies(SessionCookie)
	if cookie == "" {
		return types.NewCustomError(fiber.StatusForbidden, errorType,
			fmt.Sprintf("Authorizer cookie %q not found", SessionCookie))
	}

	session, err := v.ValidateSession(cookie, roles)
	if err != nil {
		return types.NewCustomError(fiber.StatusForbidden, errorType, fmt.Sprintf("Invalid session: %v", err))
	}

	c.Locals("user", session.User)
	c.SetUserContext(services.WithActor(c.UserContext(), session.User))

	return c.Next()
}
