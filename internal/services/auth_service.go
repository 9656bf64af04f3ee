// auth_service.go
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
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/utils"
)

// Session is the validated identity behind a session cookie
type Session struct {
	User  models.Person
	Roles []string
}

// HasRole reports whether the session carries role
func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthService validates sessions against an Authorizer instance.
// The client is created on first use.
type AuthService struct {
	cfg     *config.Config
	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

// NewAuthService creates the service. It does not contact the Authorizer.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// IsInitialized returns true if the Authorizer client is initialized
func (a *AuthService) IsInitialized() bool {
	return a.client != nil
}

// Init creates the Authorizer client once, redirecting to the requesting origin
func (a *AuthService) Init(requestProtocol, requestHost string) error {
	a.once.Do(func() {
		if err := utils.PingAuthorizer(context.Background(), a.cfg.AuthzURL); err != nil {
			a.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		logging.Logger.Infof("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			a.cfg.AuthzURL, a.cfg.AuthzClientID, redirectURL)

		client, err := authorizer.NewAuthorizerClient(a.cfg.AuthzClientID, a.cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			a.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
		a.client = client
	})
	return a.initErr
}

// ValidateSession validates a session cookie for the given roles
func (a *AuthService) ValidateSession(cookie string, roles []string) (*Session, error) {
	if a.client == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	return sessionFromUser(res.User)
}

// sessionUser is the subset of the Authorizer user used for audit fields
type sessionUser struct {
	Email             string   `json:"email"`
	GivenName         *string  `json:"given_name"`
	FamilyName        *string  `json:"family_name"`
	Nickname          *string  `json:"nickname"`
	PreferredUsername *string  `json:"preferred_username"`
	Roles             []string `json:"roles"`
}

// sessionFromUser maps the Authorizer user through its JSON form
func sessionFromUser(user any) (*Session, error) {
	b, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	var u sessionUser
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}

	name := strings.TrimSpace(strings.Join([]string{deref(u.GivenName), deref(u.FamilyName)}, " "))
	if name == "" {
		name = deref(u.Nickname)
	}
	if name == "" {
		name = deref(u.PreferredUsername)
	}
	if name == "" {
		name = u.Email
	}
	return &Session{User: models.Person{DisplayName: name, Email: u.Email}, Roles: u.Roles}, nil
}
