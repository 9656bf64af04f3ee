// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/opsregistry/internal/config"
	"github.com/localnerve/opsregistry/internal/handlers"
	"github.com/localnerve/opsregistry/internal/middleware"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth accepts the cookie "valid" when it carries every requested role
type fakeAuth struct {
	roles   []string
	initErr error
}

func (f *fakeAuth) Init(string, string) error { return f.initErr }

func (f *fakeAuth) ValidateSession(cookie string, roles []string) (*services.Session, error) {
	if cookie != "valid" {
		return nil, errors.New("unknown session")
	}
	for _, r := range roles {
		if !slices.Contains(f.roles, r) {
			return nil, fmt.Errorf("missing role %s", r)
		}
	}
	return &services.Session{
		User:  models.Person{DisplayName: "Session User", Email: "session@kpfa.org"},
		Roles: f.roles,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DataService:       config.ServiceSharePoint,
		UseMock:           true,
		DefaultActorName:  "Front Desk",
		DefaultActorEmail: "desk@kpfa.org",
	}
}

// setupApp serves the API from an initialized mock service
func setupApp(t *testing.T, auth middleware.SessionValidator) *fiber.App {
	t.Helper()
	m := services.NewMockService(services.WithLatency(0))
	require.NoError(t, m.Initialize(t.Context()))
	return newApp(m, auth)
}

func newApp(svc services.DataService, auth middleware.SessionValidator) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    12 * 1024 * 1024,
	})
	handlers.Register(app.Group("/api"), handlers.Deps{Config: testConfig(), Service: svc, Auth: auth})
	app.Use(handlers.NotFound)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonRequest(method, url string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func uploadRequest(t *testing.T, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/documents", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestListBuildings(t *testing.T) {
	app := setupApp(t, nil)

	tests := []struct {
		url  string
		want int
	}{
		{url: "/api/buildings", want: 5},
		{url: "/api/buildings?includeDeleted=true", want: 6},
		{url: "/api/buildings?q=gas", want: 1},
		{url: "/api/buildings?q=sandyford&includeDeleted=true", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			resp := do(t, app, httptest.NewRequest("GET", tt.url, nil))
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Len(t, decode[[]models.Building](t, resp), tt.want)
		})
	}
}

func TestGetBuilding(t *testing.T) {
	app := setupApp(t, nil)

	resp := do(t, app, httptest.NewRequest("GET", "/api/buildings/1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "The Gandon Building", decode[models.Building](t, resp).PropertyName)

	resp = do(t, app, httptest.NewRequest("GET", "/api/buildings/404", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, decode[utils.ErrorResponseStruct](t, resp).Ok)

	resp = do(t, app, httptest.NewRequest("GET", "/api/buildings/abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateBuilding(t *testing.T) {
	app := setupApp(t, nil)

	resp := do(t, app, jsonRequest("POST", "/api/buildings", map[string]any{
		"propertyName":      "Dockland Works",
		"address":           "1 Grand Canal Sq, Dublin 2",
		"yearBuilt":         1999,
		"areaSquareFootage": 42000,
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[models.Building](t, resp)
	assert.Equal(t, 7, created.ID)
	require.NotNil(t, created.Author)
	assert.Equal(t, "Front Desk", created.Author.DisplayName)

	resp = do(t, app, jsonRequest("POST", "/api/buildings", map[string]any{
		"address":   "Nowhere",
		"yearBuilt": 1700,
	}))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decode[utils.ErrorResponseStruct](t, resp)
	assert.Equal(t, "Property name is required", body.Fields["PropertyName"])
	assert.Equal(t, "Year built must be between 1800 and 2100", body.Fields["YearBuilt"])
	assert.Equal(t, "data.validation.input", body.Type)

	req := httptest.NewRequest("POST", "/api/buildings", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, fiber.StatusBadRequest, do(t, app, req).StatusCode)
}

func TestUpdateBuilding(t *testing.T) {
	app := setupApp(t, nil)

	resp := do(t, app, jsonRequest("PATCH", "/api/buildings/2", map[string]any{"propertyName": "Clarence Hotel"}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode[models.Building](t, resp)
	assert.Equal(t, "Clarence Hotel", updated.PropertyName)
	assert.Equal(t, "Front Desk", updated.Editor.DisplayName)

	resp = do(t, app, jsonRequest("PATCH", "/api/buildings/404", map[string]any{"propertyName": "x"}))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = do(t, app, jsonRequest("PATCH", "/api/buildings/2", map[string]any{"areaSquareFootage": -1}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteBuilding(t *testing.T) {
	app := setupApp(t, nil)

	resp := do(t, app, httptest.NewRequest("DELETE", "/api/buildings/3", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	ack := decode[utils.MutationResponseStruct](t, resp)
	assert.True(t, ack.Ok)
	assert.Equal(t, 3, ack.ID)

	resp = do(t, app, httptest.NewRequest("GET", "/api/buildings/3", nil))
	assert.True(t, decode[models.Building](t, resp).Deleted)

	resp = do(t, app, httptest.NewRequest("DELETE", "/api/buildings/3?hard=true", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = do(t, app, httptest.NewRequest("GET", "/api/buildings/3", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAuthorization(t *testing.T) {
	withCookie := func(req *http.Request) *http.Request {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "valid"})
		return req
	}

	t.Run("writes need a session", func(t *testing.T) {
		app := setupApp(t, &fakeAuth{roles: []string{"user"}})

		resp := do(t, app, jsonRequest("PATCH", "/api/buildings/2", map[string]any{"address": "x"}))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "data.authorization.user", decode[utils.ErrorResponseStruct](t, resp).Type)

		resp = do(t, app, withCookie(jsonRequest("PATCH", "/api/buildings/2", map[string]any{"address": "8 Clarence St"})))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Session User", decode[models.Building](t, resp).Editor.DisplayName)

		resp = do(t, app, httptest.NewRequest("GET", "/api/buildings", nil))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("hard delete needs admin", func(t *testing.T) {
		app := setupApp(t, &fakeAuth{roles: []string{"user"}})
		resp := do(t, app, withCookie(httptest.NewRequest("DELETE", "/api/buildings/4?hard=true", nil)))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "data.authorization.admin", decode[utils.ErrorResponseStruct](t, resp).Type)

		resp = do(t, app, withCookie(httptest.NewRequest("DELETE", "/api/buildings/4", nil)))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		admin := setupApp(t, &fakeAuth{roles: []string{"user", "admin"}})
		resp = do(t, admin, withCookie(httptest.NewRequest("DELETE", "/api/buildings/4?hard=true", nil)))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("authorizer down", func(t *testing.T) {
		app := setupApp(t, &fakeAuth{initErr: errors.New("dial tcp: refused")})
		resp := do(t, app, withCookie(httptest.NewRequest("DELETE", "/api/documents/1", nil)))
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestUploadAndDownload(t *testing.T) {
	app := setupApp(t, nil)

	resp := do(t, app, uploadRequest(t, "survey.pdf", []byte("%PDF-1.4 survey"), map[string]string{
		"buildingId":   "1",
		"documentType": "Report",
		"documentDate": "2025-02-01",
		"title":        "Roof Survey",
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	doc := decode[models.Document](t, resp)
	assert.Equal(t, "Roof Survey", doc.Title)
	assert.Equal(t, ".pdf", doc.FileExtension)
	assert.Equal(t, "Front Desk", doc.Author.DisplayName)

	resp = do(t, app, httptest.NewRequest("GET", "/api/buildings/1/documents", nil))
	docs := decode[[]models.Document](t, resp)
	require.Len(t, docs, 2)
	assert.Equal(t, doc.ID, docs[0].ID)

	resp = do(t, app, httptest.NewRequest("GET", fmt.Sprintf("/api/documents/%d", doc.ID), nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("GET", fmt.Sprintf("/api/documents/%d/content", doc.ID), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "survey.pdf")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 survey", string(data))
}

func TestUploadRejected(t *testing.T) {
	app := setupApp(t, nil)

	tests := []struct {
		name   string
		file   string
		data   []byte
		fields map[string]string
		field  string
	}{
		{
			name: "extension", file: "payload.exe", data: []byte("MZ"),
			fields: map[string]string{"buildingId": "1", "documentType": "Other"}, field: "File",
		},
		{
			name: "too large", file: "big.pdf", data: bytes.Repeat([]byte{'x'}, models.MaxFileSizeBytes+1),
			fields: map[string]string{"buildingId": "1", "documentType": "Other"}, field: "File",
		},
		{
			name: "document type", file: "a.pdf", data: []byte("x"),
			fields: map[string]string{"buildingId": "1", "documentType": "Memo"}, field: "DocumentType",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, app, uploadRequest(t, tt.file, tt.data, tt.fields))
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decode[utils.ErrorResponseStruct](t, resp).Fields, tt.field)
		})
	}

	resp := do(t, app, uploadRequest(t, "a.pdf", []byte("x"), map[string]string{"documentType": "Other"}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, uploadRequest(t, "a.pdf", []byte("x"), map[string]string{"buildingId": "42", "documentType": "Other"}))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteDocument(t *testing.T) {
	app := setupApp(t, nil)

	resp := do(t, app, httptest.NewRequest("DELETE", "/api/documents/1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("GET", "/api/buildings/1/documents", nil))
	assert.Empty(t, decode[[]models.Document](t, resp))

	resp = do(t, app, httptest.NewRequest("DELETE", "/api/documents/404", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVersionHeader(t *testing.T) {
	app := setupApp(t, nil)

	req := httptest.NewRequest("GET", "/api/buildings", nil)
	req.Header.Set("X-Api-Version", "1.0")
	resp := do(t, app, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))

	req = httptest.NewRequest("GET", "/api/buildings", nil)
	req.Header.Set("X-Api-Version", "2")
	resp = do(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "data.validation.version", decode[utils.ErrorResponseStruct](t, resp).Type)
}

func TestHealthAndUnavailable(t *testing.T) {
	app := setupApp(t, nil)
	resp := do(t, app, httptest.NewRequest("GET", "/api/health", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode[services.HealthCheckResult](t, resp)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, config.ServiceMock, result.Details["data_service"])

	down := newApp(services.NewMockService(services.WithLatency(0)), nil)
	resp = do(t, down, httptest.NewRequest("GET", "/api/health", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp = do(t, down, httptest.NewRequest("GET", "/api/buildings", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "data.unavailable", decode[utils.ErrorResponseStruct](t, resp).Type)
}

func TestNotFoundRoute(t *testing.T) {
	app := setupApp(t, nil)
	resp := do(t, app, httptest.NewRequest("GET", "/api/nothing-here", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "[404] Resource Not Found", decode[utils.ErrorResponseStruct](t, resp).Message)
}
