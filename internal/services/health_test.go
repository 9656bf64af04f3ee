// health_test.go
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
	"net"
	"testing"

	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DataService: config.ServiceMock}

	t.Run("healthy", func(t *testing.T) {
		res := HealthCheck(ctx, cfg, newTestMock(t))
		assert.True(t, res.Healthy())
		assert.Equal(t, "ok", res.DataService)
		assert.Empty(t, res.Authorizer)
	})

	t.Run("not initialized", func(t *testing.T) {
		res := HealthCheck(ctx, cfg, NewMockService())
		assert.False(t, res.Healthy())
		assert.Equal(t, "unreachable", res.DataService)
		assert.Contains(t, res.ErrorMessage, "Data service ping failed")
	})

	t.Run("no service", func(t *testing.T) {
		res := HealthCheck(ctx, cfg, nil)
		assert.False(t, res.Healthy())
		assert.Equal(t, models.MsgNotInitialized, res.ErrorMessage)
	})
}

func TestHealthCheckAuthorizer(t *testing.T) {
	ctx := context.Background()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	cfg := &config.Config{AuthzURL: "http://" + addr, AuthzClientID: "client"}
	res := HealthCheck(ctx, cfg, newTestMock(t))
	assert.True(t, res.Healthy())
	assert.Equal(t, "ok", res.Authorizer)

	require.NoError(t, ln.Close())
	res = HealthCheck(ctx, cfg, newTestMock(t))
	assert.False(t, res.Healthy())
	assert.Equal(t, "unreachable", res.Authorizer)
	assert.Contains(t, res.Details, "authorizer_error")
}

func TestSessionFromUser(t *testing.T) {
	given, family := "Ada", "Lovelace"
	user := map[string]any{
		"email":       "ada@kpfa.org",
		"given_name":  &given,
		"family_name": &family,
		"roles":       []string{"user", "admin"},
	}

	s, err := sessionFromUser(user)
	require.NoError(t, err)
	assert.Equal(t, models.Person{DisplayName: "Ada Lovelace", Email: "ada@kpfa.org"}, s.User)
	assert.True(t, s.HasRole("admin"))
	assert.False(t, s.HasRole("owner"))

	s, err = sessionFromUser(map[string]any{"email": "bob@kpfa.org"})
	require.NoError(t, err)
	assert.Equal(t, "bob@kpfa.org", s.User.DisplayName)
}

func TestAuthServiceNotInitialized(t *testing.T) {
	a := NewAuthService(&config.Config{})
	assert.False(t, a.IsInitialized())
	_, err := a.ValidateSession("cookie", []string{"user"})
	assert.Error(t, err)
}
