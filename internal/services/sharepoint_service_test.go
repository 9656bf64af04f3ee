// sharepoint_service_test.go
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
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/localnerve/opsregistry/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	itemIDPattern     = regexp.MustCompile(`/items\((\d+)\)$`)
	decodedURLPattern = regexp.MustCompile(`decodedurl='((?:[^']|'')*)'`)
)

// fakeSharePoint answers the subset of the SharePoint REST API used by SharePointService
type fakeSharePoint struct {
	mu        sync.Mutex
	buildings map[int]map[string]any
	documents map[int]map[string]any
	files     map[string][]byte
	nextID    int
	queries   []string
	methods   []string
	authz     string
	status    int
	failMerge bool
}

func newFakeSharePoint() *fakeSharePoint {
	created := "2024-01-15T00:00:00Z"
	return &fakeSharePoint{
		buildings: map[int]map[string]any{
			1: {"Id": 1, "Title": "The Gandon Building", "Address": "15-19 Amiens St, Dublin 1", "YearBuilt": 1878,
				"AreaSquareFootage": 45000, "Deleted": false, "Created": created, "Modified": created,
				"Author": map[string]any{"Title": "John Doe", "EMail": "john@kpfa.org"}},
			2: {"Id": 2, "Title": "Beacon Court", "Address": "Sandyford, Dublin 18", "YearBuilt": 2000,
				"AreaSquareFootage": 52000, "Deleted": true, "Created": created, "Modified": created},
		},
		documents: map[int]map[string]any{
			1: {"Id": 1, "FileLeafRef": "gandon_contract_2024.pdf", "Title": "", "BuildingId": 1,
				"Building": map[string]any{"Title": "The Gandon Building"}, "DocumentType": "Contract",
				"DocumentDate": created, "Status": "Active", "FileRef": "/sites/ops/KPFA_Documents/gandon_contract_2024.pdf",
				"File": map[string]any{"Length": "245000"}, "Created": created},
		},
		files:  map[string][]byte{"/sites/ops/KPFA_Documents/gandon_contract_2024.pdf": []byte("%PDF-1.4")},
		nextID: 100,
	}
}

func (f *fakeSharePoint) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"odata.error":{"code":"-1","message":{"lang":"en-US","value":%q}}}`, msg)
}

func (f *fakeSharePoint) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeSharePoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	method := r.Method
	if override := r.Header.Get("X-HTTP-Method"); override != "" {
		method = override
	}
	f.methods = append(f.methods, method+" "+path)
	f.queries = append(f.queries, r.URL.Query().Get("$filter"))
	f.authz = r.Header.Get("Authorization")

	if f.status != 0 {
		f.writeError(w, f.status, "forced failure")
		return
	}

	body, _ := io.ReadAll(r.Body)

	switch {
	case path == "/_api/web":
		f.writeJSON(w, map[string]any{"Title": "Operations"})

	case strings.Contains(path, "getbytitle('Buildings')/items"):
		f.serveItems(w, method, path, r.URL.Query().Get("$filter"), body, f.buildings)

	case strings.HasSuffix(path, "getbytitle('KPFA_Documents')/rootfolder"):
		f.writeJSON(w, map[string]any{"ServerRelativeUrl": "/sites/ops/KPFA_Documents"})

	case strings.Contains(path, "getbytitle('KPFA_Documents')/items"):
		f.serveItems(w, method, path, r.URL.Query().Get("$filter"), body, f.documents)

	case strings.Contains(path, "/Files/AddUsingPath"):
		m := decodedURLPattern.FindAllStringSubmatch(path, -1)
		folder, name := unquote(m[0][1]), unquote(m[1][1])
		f.files[folder+"/"+name] = body
		f.writeJSON(w, map[string]any{"ServerRelativeUrl": folder + "/" + name})

	case strings.HasSuffix(path, "/ListItemAllFields"):
		ref := unquote(decodedURLPattern.FindStringSubmatch(path)[1])
		f.nextID++
		f.documents[f.nextID] = map[string]any{
			"Id": f.nextID, "FileLeafRef": ref[strings.LastIndex(ref, "/")+1:], "FileRef": ref,
			"File": map[string]any{"Length": len(f.files[ref])}, "Created": time.Now().UTC().Format(time.RFC3339),
		}
		f.writeJSON(w, map[string]any{"Id": f.nextID})

	case strings.HasSuffix(path, "/$value"):
		ref := unquote(decodedURLPattern.FindStringSubmatch(path)[1])
		data, ok := f.files[ref]
		if !ok {
			f.writeError(w, http.StatusNotFound, "File Not Found.")
			return
		}
		_, _ = w.Write(data)

	case strings.Contains(path, "GetFileByServerRelativePath") && method == "DELETE":
		ref := unquote(decodedURLPattern.FindStringSubmatch(path)[1])
		delete(f.files, ref)
		w.WriteHeader(http.StatusOK)

	default:
		f.writeError(w, http.StatusBadRequest, "unexpected request "+method+" "+path)
	}
}

func (f *fakeSharePoint) serveItems(w http.ResponseWriter, method, path, filter string, body []byte, items map[int]map[string]any) {
	if m := itemIDPattern.FindStringSubmatch(path); m != nil {
		id, _ := strconv.Atoi(m[1])
		item, ok := items[id]
		if !ok {
			f.writeError(w, http.StatusNotFound, "Item does not exist. It may have been deleted by another user.")
			return
		}
		switch method {
		case http.MethodGet:
			f.writeJSON(w, item)
		case "MERGE":
			if f.failMerge {
				f.writeError(w, http.StatusBadRequest, "Column 'DocumentType' does not exist.")
				return
			}
			var fields map[string]any
			_ = json.Unmarshal(body, &fields)
			for k, v := range fields {
				item[k] = v
			}
			w.WriteHeader(http.StatusNoContent)
		case "DELETE":
			delete(items, id)
			w.WriteHeader(http.StatusOK)
		}
		return
	}

	if method == http.MethodPost {
		var fields map[string]any
		_ = json.Unmarshal(body, &fields)
		f.nextID++
		fields["Id"] = f.nextID
		fields["Created"] = "2025-03-14T09:30:00Z"
		fields["Modified"] = "2025-03-14T09:30:00Z"
		fields["Author"] = map[string]any{"Title": "Service Account", "EMail": "svc@kpfa.org"}
		items[f.nextID] = fields
		w.WriteHeader(http.StatusCreated)
		f.writeJSON(w, fields)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if strings.Contains(filter, "Deleted ne 1") && it["Deleted"] == true {
			continue
		}
		if strings.Contains(filter, "Status ne 'Deleted'") && it["Status"] == "Deleted" {
			continue
		}
		out = append(out, it)
	}
	f.writeJSON(w, map[string]any{"value": out})
}

func unquote(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}

func newTestSharePoint(t *testing.T) (*SharePointService, *fakeSharePoint) {
	t.Helper()
	fake := newFakeSharePoint()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc := NewSharePointService(SharePointConfig{
		SiteURL:     srv.URL + "/",
		AccessToken: "token-123",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, fake
}

func TestSharePointInitialize(t *testing.T) {
	fake := newFakeSharePoint()
	fake.status = http.StatusUnauthorized
	srv := httptest.NewServer(fake)
	defer srv.Close()

	svc := NewSharePointService(SharePointConfig{SiteURL: srv.URL})
	err := svc.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	_, err = svc.GetBuildings(context.Background(), false)
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = NewSharePointService(SharePointConfig{}).Initialize(context.Background())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestSharePointGetBuildings(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)

	active, err := svc.GetBuildings(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "The Gandon Building", active[0].PropertyName)
	assert.Equal(t, 1878, active[0].YearBuilt)
	require.NotNil(t, active[0].Author)
	assert.Equal(t, "john@kpfa.org", active[0].Author.Email)
	assert.Equal(t, "Bearer token-123", fake.authz)

	all, err := svc.GetBuildings(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.GetBuildingByID(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSharePointCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)

	created, err := svc.CreateBuilding(ctx, models.BuildingInput{
		PropertyName:      strPtr("  Spencer Dock "),
		Address:           strPtr("North Wall Quay, Dublin 1"),
		YearBuilt:         intPtr(2006),
		AreaSquareFootage: floatPtr(95000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Spencer Dock", created.PropertyName)
	assert.False(t, created.Deleted)
	assert.Equal(t, "Service Account", created.Author.DisplayName)

	updated, err := svc.UpdateBuilding(ctx, created.ID, models.BuildingInput{YearBuilt: intPtr(2007)})
	require.NoError(t, err)
	assert.Equal(t, 2007, updated.YearBuilt)
	assert.Equal(t, "Spencer Dock", updated.PropertyName)
	assert.Contains(t, fake.methods, fmt.Sprintf("MERGE /_api/web/lists/getbytitle('Buildings')/items(%d)", created.ID))

	_, err = svc.UpdateBuilding(ctx, 999, models.BuildingInput{YearBuilt: intPtr(2007)})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteBuilding(ctx, created.ID, true))
	soft, err := svc.GetBuildingByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, soft.Deleted)

	require.NoError(t, svc.DeleteBuilding(ctx, created.ID, false))
	_, err = svc.GetBuildingByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteBuilding(ctx, created.ID, true), ErrNotFound)
}

func TestSharePointSearchFilter(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)

	_, err := svc.SearchBuildings(ctx, " O'Brien ", false)
	require.NoError(t, err)
	last := fake.queries[len(fake.queries)-1]
	assert.Equal(t, "(substringof('O''Brien',Title) or substringof('O''Brien',Address)) and (Deleted ne 1)", last)

	_, err = svc.SearchBuildings(ctx, "   ", true)
	require.NoError(t, err)
	assert.Empty(t, fake.queries[len(fake.queries)-1])
}

func TestSharePointDocuments(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)

	docs, err := svc.GetDocumentsByBuilding(ctx, 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "gandon_contract_2024.pdf", docs[0].Title, "blank title falls back to file name")
	assert.Equal(t, int64(245000), docs[0].FileSize)
	assert.Equal(t, ".pdf", docs[0].FileExtension)
	assert.Equal(t, "The Gandon Building", docs[0].BuildingName)
	assert.Equal(t, "BuildingId eq 1 and Status ne 'Deleted'", fake.queries[len(fake.queries)-1])

	content, err := svc.DownloadDocument(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content.Data))
	assert.Equal(t, "application/pdf", content.ContentType)

	require.NoError(t, svc.DeleteDocument(ctx, 1))
	docs, err = svc.GetDocumentsByBuilding(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, docs)

	assert.ErrorIs(t, svc.DeleteDocument(ctx, 77), ErrNotFound)
	_, err = svc.GetDocumentByID(ctx, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSharePointUpload(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)

	var progress []int
	doc, err := svc.UploadDocument(ctx, models.DocumentUpload{
		FileName:     "roof survey.pdf",
		Data:         []byte("%PDF-1.7 survey"),
		Title:        "Roof Survey",
		BuildingID:   1,
		DocumentType: models.DocumentTypeReport,
		DocumentDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Description:  "Annual roof survey",
	}, func(p int) { progress = append(progress, p) })
	require.NoError(t, err)

	assert.Equal(t, []int{10, 30, 60, 90, 100}, progress)
	assert.Equal(t, "Roof Survey", doc.Title)
	assert.Equal(t, models.DocumentStatusActive, doc.Status)
	assert.Equal(t, models.DocumentTypeReport, doc.DocumentType)
	assert.Equal(t, "/sites/ops/KPFA_Documents/roof survey.pdf", doc.FileURL)
	assert.Equal(t, int64(len("%PDF-1.7 survey")), doc.FileSize)
	assert.Contains(t, fake.files, "/sites/ops/KPFA_Documents/roof survey.pdf")
}

func TestSharePointUploadRemovesOrphanedFile(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)
	fake.failMerge = true

	var progress []int
	_, err := svc.UploadDocument(ctx, models.DocumentUpload{
		FileName:   "orphan.pdf",
		Data:       []byte("%PDF"),
		BuildingID: 1,
	}, func(p int) { progress = append(progress, p) })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.NotContains(t, fake.files, "/sites/ops/KPFA_Documents/orphan.pdf")
	assert.Equal(t, []int{10, 30, 60}, progress)
}

func TestSharePointServerErrors(t *testing.T) {
	ctx := context.Background()
	svc, fake := newTestSharePoint(t)

	fake.mu.Lock()
	fake.status = http.StatusServiceUnavailable
	fake.mu.Unlock()
	_, err := svc.GetBuildings(ctx, false)
	assert.ErrorIs(t, err, ErrServiceUnavailable)

	fake.mu.Lock()
	fake.status = http.StatusInternalServerError
	fake.mu.Unlock()
	_, err = svc.GetBuildings(ctx, false)
	assert.ErrorIs(t, err, ErrOperationFailed)
	assert.Contains(t, err.Error(), "forced failure")
}

func TestSharePointHonoursCancelledContext(t *testing.T) {
	svc, _ := newTestSharePoint(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GetBuildings(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestODataHelpers(t *testing.T) {
	assert.Equal(t, "'it''s'", odataString("it's"))
	assert.Equal(t, "%27KPFA%20Docs%27", pathLiteral("KPFA Docs"))
	assert.Equal(t, "%27/sites/ops/a.pdf%27", pathLiteral("/sites/ops/a.pdf"))

	fields := buildingFields(models.BuildingInput{YearBuilt: intPtr(1900), Deleted: boolPtr(false)})
	assert.Equal(t, map[string]any{"YearBuilt": 1900, "Deleted": false}, fields)
}
