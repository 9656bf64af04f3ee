// sharepoint_service.go
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
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const odataJSON = "application/json;odata=nometadata"

var (
	buildingSelect = []string{
		"Id", "Title", "Address", "YearBuilt", "AreaSquareFootage", "Deleted", "CommissioningDate",
		"Created", "Modified", "Author/Title", "Author/EMail", "Editor/Title", "Editor/EMail",
	}
	buildingExpand = []string{"Author", "Editor"}

	documentSelect = []string{
		"Id", "FileLeafRef", "Title", "BuildingId", "Building/Title", "DocumentType", "DocumentDate",
		"Description", "Status", "FileRef", "File/Length", "Created", "Author/Title", "Author/EMail",
	}
	documentExpand = []string{"Building", "File", "Author"}
)

// SharePointConfig locates the site and the list and library holding the registry
type SharePointConfig struct {
	SiteURL          string
	AccessToken      string
	BuildingsList    string
	DocumentsLibrary string
	Timeout          time.Duration
}

// SharePointService is a DataService over the SharePoint REST API.
// List and library field names are kept as they are stored on the site.
type SharePointService struct {
	cfg         SharePointConfig
	initialized atomic.Bool
}

// NewSharePointService creates the remote service. Call Initialize before use.
func NewSharePointService(cfg SharePointConfig) *SharePointService {
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.BuildingsList == "" {
		cfg.BuildingsList = models.BuildingsList
	}
	if cfg.DocumentsLibrary == "" {
		cfg.DocumentsLibrary = models.DocumentsLibrary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SharePointService{cfg: cfg}
}

type spPerson struct {
	Title string `json:"Title"`
	EMail string `json:"EMail"`
}

func (p *spPerson) person() *models.Person {
	if p == nil || (p.Title == "" && p.EMail == "") {
		return nil
	}
	return &models.Person{DisplayName: p.Title, Email: p.EMail}
}

type spLookup struct {
	Title string `json:"Title"`
}

type spBuilding struct {
	ID                int        `json:"Id"`
	Title             string     `json:"Title"`
	Address           string     `json:"Address"`
	YearBuilt         float64    `json:"YearBuilt"`
	AreaSquareFootage float64    `json:"AreaSquareFootage"`
	Deleted           *bool      `json:"Deleted"`
	CommissioningDate *time.Time `json:"CommissioningDate"`
	Created           time.Time  `json:"Created"`
	Modified          time.Time  `json:"Modified"`
	Author            *spPerson  `json:"Author"`
	Editor            *spPerson  `json:"Editor"`
}

func (it spBuilding) building() models.Building {
	b := models.Building{
		ID:                it.ID,
		PropertyName:      it.Title,
		Address:           it.Address,
		YearBuilt:         int(it.YearBuilt),
		AreaSquareFootage: it.AreaSquareFootage,
		Deleted:           it.Deleted != nil && *it.Deleted,
		Created:           it.Created,
		Modified:          it.Modified,
		Author:            it.Author.person(),
		Editor:            it.Editor.person(),
	}
	if it.CommissioningDate != nil {
		d := datatypes.Date(*it.CommissioningDate)
		b.CommissioningDate = &d
	}
	return b
}

type spDocument struct {
	ID           int        `json:"Id"`
	FileLeafRef  string     `json:"FileLeafRef"`
	Title        string     `json:"Title"`
	BuildingID   int        `json:"BuildingId"`
	Building     *spLookup  `json:"Building"`
	DocumentType string     `json:"DocumentType"`
	DocumentDate *time.Time `json:"DocumentDate"`
	Description  string     `json:"Description"`
	Status       string     `json:"Status"`
	FileRef      string     `json:"FileRef"`
	File         *struct {
		Length types.FlexInt64 `json:"Length"`
	} `json:"File"`
	Created time.Time `json:"Created"`
	Author  *spPerson `json:"Author"`
}

func (it spDocument) document() models.Document {
	d := models.Document{
		ID:            it.ID,
		FileName:      it.FileLeafRef,
		Title:         it.Title,
		BuildingID:    it.BuildingID,
		DocumentType:  models.DocumentType(it.DocumentType),
		Description:   it.Description,
		Status:        models.DocumentStatus(it.Status),
		FileURL:       it.FileRef,
		FileExtension: models.FileExtension(it.FileLeafRef),
		Created:       it.Created,
		Author:        it.Author.person(),
	}
	if d.Title == "" {
		d.Title = d.FileName
	}
	if it.Building != nil {
		d.BuildingName = it.Building.Title
	}
	if it.DocumentDate != nil {
		d.DocumentDate = datatypes.Date(*it.DocumentDate)
	}
	if it.File != nil {
		d.FileSize = it.File.Length.Int64()
	}
	return d
}

type spCollection[T any] struct {
	Value []T `json:"value"`
}

// Initialize checks that the site answers with the configured credentials
func (s *SharePointService) Initialize(ctx context.Context) error {
	if s.cfg.SiteURL == "" {
		return fmt.Errorf("failed to initialize data service: %w: site url is not configured", ErrServiceUnavailable)
	}
	if err := s.ping(ctx); err != nil {
		logging.Logger.WithError(err).Error("Failed to initialize SharePointService")
		return fmt.Errorf("failed to initialize data service: %w: %w", ErrServiceUnavailable, err)
	}
	s.initialized.Store(true)
	logging.Logger.Info("SharePointService initialized")
	return nil
}

// Ping requests the site's web title
func (s *SharePointService) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *SharePointService) ping(ctx context.Context) error {
	_, err := s.send(ctx, spRequest{method: fiber.MethodGet, path: "/_api/web", query: odataQuery{"$select": "Title"}})
	return err
}

// GetBuildings lists buildings ordered by title
func (s *SharePointService) GetBuildings(ctx context.Context, includeDeleted bool) ([]models.Building, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logging.WithFields(logrus.Fields{"includeDeleted": includeDeleted}).Debug("Getting buildings")

	q := s.buildingQuery()
	if !includeDeleted {
		q["$filter"] = models.FieldDeleted + " ne 1"
	}
	out, err := s.listBuildings(ctx, q)
	if err != nil {
		return nil, opFailed(strings.ToLower(models.MsgLoadError), err)
	}
	return out, nil
}

// GetBuildingByID loads one list item
func (s *SharePointService) GetBuildingByID(ctx context.Context, id int) (*models.Building, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	b, err := s.getBuilding(ctx, id)
	if err != nil {
		return nil, opFailed("failed to load building", err)
	}
	return b, nil
}

// CreateBuilding adds a list item and reads it back
func (s *SharePointService) CreateBuilding(ctx context.Context, in models.BuildingInput) (*models.Building, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logging.WithFields(logrus.Fields{"propertyName": deref(in.PropertyName)}).Debug("Creating building")

	fields := buildingFields(in)
	fields[models.FieldDeleted] = false

	body, err := s.send(ctx, spRequest{
		method: fiber.MethodPost,
		path:   s.itemsPath(s.cfg.BuildingsList),
		body:   fields,
	})
	if err != nil {
		return nil, opFailed("failed to create building", err)
	}

	var created struct {
		ID int `json:"Id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == 0 {
		return nil, opFailed("failed to create building", fmt.Errorf("unexpected response: %s", truncateBody(body)))
	}

	logging.WithFields(logrus.Fields{"id": created.ID}).Info("Building created")
	b, err := s.getBuilding(ctx, created.ID)
	if err != nil {
		return nil, opFailed("failed to create building", err)
	}
	return b, nil
}

// UpdateBuilding merges the non-nil input fields into a list item
func (s *SharePointService) UpdateBuilding(ctx context.Context, id int, in models.BuildingInput) (*models.Building, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logging.WithFields(logrus.Fields{"id": id}).Debug("Updating building")

	if err := s.merge(ctx, s.cfg.BuildingsList, id, buildingFields(in)); err != nil {
		return nil, opFailed("failed to update building", err)
	}
	b, err := s.getBuilding(ctx, id)
	if err != nil {
		return nil, opFailed("failed to update building", err)
	}
	return b, nil
}

// DeleteBuilding sets Deleted on the item, or recycles it when softDelete is false
func (s *SharePointService) DeleteBuilding(ctx context.Context, id int, softDelete bool) error {
	if err := s.ready(); err != nil {
		return err
	}
	logging.WithFields(logrus.Fields{"id": id, "softDelete": softDelete}).Debug("Deleting building")

	var err error
	if softDelete {
		err = s.merge(ctx, s.cfg.BuildingsList, id, map[string]any{models.FieldDeleted: true})
	} else {
		_, err = s.send(ctx, spRequest{
			method: fiber.MethodPost,
			path:   s.itemPath(s.cfg.BuildingsList, id),
			headers: map[string]string{
				"X-HTTP-Method": "DELETE",
				"IF-MATCH":      "*",
			},
		})
	}
	if err != nil {
		return opFailed("failed to delete building", err)
	}
	logging.WithFields(logrus.Fields{"id": id, "softDelete": softDelete}).Info("Building deleted")
	return nil
}

// SearchBuildings filters on Title and Address with substringof
func (s *SharePointService) SearchBuildings(ctx context.Context, query string, includeDeleted bool) ([]models.Building, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return s.GetBuildings(ctx, includeDeleted)
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	logging.WithFields(logrus.Fields{"query": term, "includeDeleted": includeDeleted}).Debug("Searching buildings")

	lit := odataString(term)
	filter := fmt.Sprintf("(substringof(%s,%s) or substringof(%s,%s))", lit, models.FieldPropertyName, lit, models.FieldAddress)
	if !includeDeleted {
		filter += " and (" + models.FieldDeleted + " ne 1)"
	}
	q := s.buildingQuery()
	q["$filter"] = filter

	out, err := s.listBuildings(ctx, q)
	if err != nil {
		return nil, opFailed("failed to search buildings", err)
	}
	return out, nil
}

// GetDocumentsByBuilding lists the building's documents whose status is not Deleted, newest first
func (s *SharePointService) GetDocumentsByBuilding(ctx context.Context, buildingID int) ([]models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	q := s.documentQuery()
	q["$filter"] = fmt.Sprintf("%s eq %d and %s ne %s",
		models.FieldBuildingID, buildingID, models.FieldStatus, odataString(string(models.DocumentStatusDeleted)))
	q["$orderby"] = "Created desc"

	body, err := s.send(ctx, spRequest{method: fiber.MethodGet, path: s.itemsPath(s.cfg.DocumentsLibrary), query: q})
	if err != nil {
		return nil, opFailed(strings.ToLower(models.MsgDocumentsError), err)
	}
	var res spCollection[spDocument]
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, opFailed(strings.ToLower(models.MsgDocumentsError), err)
	}

	out := make([]models.Document, 0, len(res.Value))
	for _, it := range res.Value {
		out = append(out, it.document())
	}
	models.SortDocuments(out)
	logging.Logger.Debugf("Retrieved %d documents", len(out))
	return out, nil
}

// UploadDocument stores the file in the library root, then writes its metadata.
// The file is removed again when the metadata cannot be written.
func (s *SharePointService) UploadDocument(ctx context.Context, upload models.DocumentUpload, onProgress ProgressFunc) (*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	logging.WithFields(logrus.Fields{"fileName": upload.FileName, "buildingId": upload.BuildingID}).Debug("Uploading document")
	report(onProgress, 10)

	body, err := s.send(ctx, spRequest{
		method: fiber.MethodGet,
		path:   s.listPath(s.cfg.DocumentsLibrary) + "/rootfolder",
		query:  odataQuery{"$select": "ServerRelativeUrl"},
	})
	if err != nil {
		return nil, uploadFailed("failed to upload document", err)
	}
	var folder struct {
		ServerRelativeURL string `json:"ServerRelativeUrl"`
	}
	if err := json.Unmarshal(body, &folder); err != nil || folder.ServerRelativeURL == "" {
		return nil, uploadFailed("failed to upload document", fmt.Errorf("unexpected folder response: %s", truncateBody(body)))
	}
	report(onProgress, 30)

	_, err = s.send(ctx, spRequest{
		method: fiber.MethodPost,
		path: fmt.Sprintf("/_api/web/GetFolderByServerRelativePath(decodedurl=%s)/Files/AddUsingPath(decodedurl=%s,overwrite=true)",
			pathLiteral(folder.ServerRelativeURL), pathLiteral(upload.FileName)),
		raw:         upload.Data,
		contentType: "application/octet-stream",
	})
	if err != nil {
		return nil, uploadFailed("failed to upload document", err)
	}
	report(onProgress, 60)

	fileURL := strings.TrimRight(folder.ServerRelativeURL, "/") + "/" + upload.FileName
	doc, err := s.attachMetadata(ctx, fileURL, upload, onProgress)
	if err != nil {
		if cerr := s.deleteFile(context.WithoutCancel(ctx), fileURL); cerr != nil {
			logging.Logger.WithError(cerr).Errorf("Failed to remove orphaned file %s", fileURL)
		}
		return nil, uploadFailed("failed to upload document", err)
	}
	report(onProgress, 100)

	logging.WithFields(logrus.Fields{"id": doc.ID}).Info("Document uploaded successfully")
	return doc, nil
}

func (s *SharePointService) attachMetadata(ctx context.Context, fileURL string, upload models.DocumentUpload, onProgress ProgressFunc) (*models.Document, error) {
	body, err := s.send(ctx, spRequest{
		method: fiber.MethodGet,
		path:   fmt.Sprintf("/_api/web/GetFileByServerRelativePath(decodedurl=%s)/ListItemAllFields", pathLiteral(fileURL)),
		query:  odataQuery{"$select": "Id"},
	})
	if err != nil {
		return nil, err
	}
	var item struct {
		ID int `json:"Id"`
	}
	if err := json.Unmarshal(body, &item); err != nil || item.ID == 0 {
		return nil, fmt.Errorf("unexpected list item response: %s", truncateBody(body))
	}

	err = s.merge(ctx, s.cfg.DocumentsLibrary, item.ID, map[string]any{
		models.FieldTitle:        upload.EffectiveTitle(),
		models.FieldBuildingID:   upload.BuildingID,
		models.FieldDocumentType: string(upload.DocumentType),
		models.FieldDocumentDate: upload.DocumentDate.UTC().Format(time.RFC3339),
		models.FieldDescription:  upload.Description,
		models.FieldStatus:       string(models.DocumentStatusActive),
	})
	if err != nil {
		return nil, err
	}
	report(onProgress, 90)

	return s.getDocument(ctx, item.ID)
}

func (s *SharePointService) deleteFile(ctx context.Context, fileURL string) error {
	_, err := s.send(ctx, spRequest{
		method: fiber.MethodPost,
		path:   fmt.Sprintf("/_api/web/GetFileByServerRelativePath(decodedurl=%s)", pathLiteral(fileURL)),
		headers: map[string]string{
			"X-HTTP-Method": "DELETE",
			"IF-MATCH":      "*",
		},
	})
	return err
}

// DeleteDocument sets the item's status to Deleted
func (s *SharePointService) DeleteDocument(ctx context.Context, id int) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.merge(ctx, s.cfg.DocumentsLibrary, id, map[string]any{
		models.FieldStatus: string(models.DocumentStatusDeleted),
	})
	if err != nil {
		return opFailed("failed to delete document", err)
	}
	logging.WithFields(logrus.Fields{"id": id}).Info("Document deleted")
	return nil
}

// DownloadDocument resolves the item's file and returns its bytes
func (s *SharePointService) DownloadDocument(ctx context.Context, id int) (*models.FileContent, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	body, err := s.send(ctx, spRequest{
		method: fiber.MethodGet,
		path:   s.itemPath(s.cfg.DocumentsLibrary, id),
		query:  odataQuery{"$select": "FileRef,FileLeafRef"},
	})
	if err != nil {
		return nil, opFailed("failed to download document", err)
	}
	var ref struct {
		FileRef     string `json:"FileRef"`
		FileLeafRef string `json:"FileLeafRef"`
	}
	if err := json.Unmarshal(body, &ref); err != nil || ref.FileRef == "" {
		return nil, opFailed("failed to download document", fmt.Errorf("unexpected item response: %s", truncateBody(body)))
	}

	data, err := s.send(ctx, spRequest{
		method: fiber.MethodGet,
		path:   fmt.Sprintf("/_api/web/GetFileByServerRelativePath(decodedurl=%s)/$value", pathLiteral(ref.FileRef)),
		accept: "*/*",
	})
	if err != nil {
		return nil, opFailed("failed to download document", err)
	}

	return &models.FileContent{
		FileName:    ref.FileLeafRef,
		ContentType: contentTypeOf(models.DocumentUpload{FileName: ref.FileLeafRef, Data: data}),
		Data:        data,
	}, nil
}

// GetDocumentByID loads one library item
func (s *SharePointService) GetDocumentByID(ctx context.Context, id int) (*models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	d, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, opFailed("failed to load document", err)
	}
	return d, nil
}

func (s *SharePointService) ready() error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

func (s *SharePointService) listBuildings(ctx context.Context, q odataQuery) ([]models.Building, error) {
	q["$orderby"] = models.FieldPropertyName + " asc"
	body, err := s.send(ctx, spRequest{method: fiber.MethodGet, path: s.itemsPath(s.cfg.BuildingsList), query: q})
	if err != nil {
		return nil, err
	}
	var res spCollection[spBuilding]
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}
	out := make([]models.Building, 0, len(res.Value))
	for _, it := range res.Value {
		out = append(out, it.building())
	}
	logging.Logger.Debugf("Retrieved %d buildings", len(out))
	return out, nil
}

func (s *SharePointService) getBuilding(ctx context.Context, id int) (*models.Building, error) {
	body, err := s.send(ctx, spRequest{method: fiber.MethodGet, path: s.itemPath(s.cfg.BuildingsList, id), query: s.buildingQuery()})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, buildingNotFound(id)
		}
		return nil, err
	}
	var it spBuilding
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, err
	}
	b := it.building()
	return &b, nil
}

func (s *SharePointService) getDocument(ctx context.Context, id int) (*models.Document, error) {
	body, err := s.send(ctx, spRequest{method: fiber.MethodGet, path: s.itemPath(s.cfg.DocumentsLibrary, id), query: s.documentQuery()})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, documentNotFound(id)
		}
		return nil, err
	}
	var it spDocument
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, err
	}
	d := it.document()
	return &d, nil
}

func (s *SharePointService) merge(ctx context.Context, list string, id int, fields map[string]any) error {
	_, err := s.send(ctx, spRequest{
		method: fiber.MethodPost,
		path:   s.itemPath(list, id),
		body:   fields,
		headers: map[string]string{
			"X-HTTP-Method": "MERGE",
			"IF-MATCH":      "*",
		},
	})
	return err
}

func (s *SharePointService) buildingQuery() odataQuery {
	return odataQuery{
		"$select": strings.Join(buildingSelect, ","),
		"$expand": strings.Join(buildingExpand, ","),
	}
}

func (s *SharePointService) documentQuery() odataQuery {
	return odataQuery{
		"$select": strings.Join(documentSelect, ","),
		"$expand": strings.Join(documentExpand, ","),
	}
}

func (s *SharePointService) listPath(title string) string {
	return "/_api/web/lists/getbytitle(" + pathLiteral(title) + ")"
}

func (s *SharePointService) itemsPath(title string) string {
	return s.listPath(title) + "/items"
}

func (s *SharePointService) itemPath(title string, id int) string {
	return s.itemsPath(title) + "(" + strconv.Itoa(id) + ")"
}

// buildingFields maps the non-nil input fields to list field names
func buildingFields(in models.BuildingInput) map[string]any {
	fields := make(map[string]any)
	if in.PropertyName != nil {
		fields[models.FieldPropertyName] = strings.TrimSpace(*in.PropertyName)
	}
	if in.Address != nil {
		fields[models.FieldAddress] = strings.TrimSpace(*in.Address)
	}
	if in.YearBuilt != nil {
		fields[models.FieldYearBuilt] = *in.YearBuilt
	}
	if in.AreaSquareFootage != nil {
		fields[models.FieldArea] = *in.AreaSquareFootage
	}
	if in.Deleted != nil {
		fields[models.FieldDeleted] = *in.Deleted
	}
	if in.CommissioningDate != nil {
		fields[models.FieldCommissioningDate] = in.CommissioningDate.UTC().Format(time.RFC3339)
	}
	return fields
}

type odataQuery map[string]string

func (q odataQuery) encode() string {
	if len(q) == 0 {
		return ""
	}
	v := url.Values{}
	for k, val := range q {
		v.Set(k, val)
	}
	return strings.ReplaceAll(v.Encode(), "+", "%20")
}

// odataString quotes s as an OData string literal
func odataString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// pathLiteral quotes s as an OData literal inside a URL path
func pathLiteral(s string) string {
	return strings.ReplaceAll(url.PathEscape(odataString(s)), "%2F", "/")
}

type spRequest struct {
	method      string
	path        string
	query       odataQuery
	headers     map[string]string
	body        any
	raw         []byte
	contentType string
	accept      string
}

type spErrorBody struct {
	ODataError *struct {
		Code    string `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"odata.error"`
}

// send performs one REST call with the fiber client agent and maps the status to the error kinds
func (s *SharePointService) send(ctx context.Context, r spRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := s.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until < timeout {
			timeout = until
		}
	}

	uri := s.cfg.SiteURL + r.path
	if qs := r.query.encode(); qs != "" {
		uri += "?" + qs
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(r.method)
	req.SetRequestURI(uri)

	accept := r.accept
	if accept == "" {
		accept = odataJSON
	}
	a.Set(fiber.HeaderAccept, accept)
	if s.cfg.AccessToken != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+s.cfg.AccessToken)
	}
	for k, v := range r.headers {
		a.Set(k, v)
	}

	switch {
	case r.raw != nil:
		ct := r.contentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		a.ContentType(ct)
		a.Body(r.raw)
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			fiber.ReleaseAgent(a)
			return nil, err
		}
		a.ContentType(odataJSON)
		a.Body(b)
	}
	a.Timeout(timeout)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s %s: %w: %w", r.method, r.path, ErrServiceUnavailable, errors.Join(errs...))
	}
	if code >= 200 && code < 300 {
		return body, nil
	}

	msg := fmt.Sprintf("status %d", code)
	var spErr spErrorBody
	if json.Unmarshal(body, &spErr) == nil && spErr.ODataError != nil && spErr.ODataError.Message.Value != "" {
		msg = fmt.Sprintf("status %d: %s", code, spErr.ODataError.Message.Value)
	}

	switch code {
	case fiber.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", msg, ErrNotFound)
	case fiber.StatusUnauthorized, fiber.StatusForbidden, fiber.StatusBadGateway,
		fiber.StatusServiceUnavailable, fiber.StatusGatewayTimeout:
		return nil, fmt.Errorf("%s: %w", msg, ErrServiceUnavailable)
	}
	return nil, fmt.Errorf("%s: %w", msg, ErrOperationFailed)
}

func truncateBody(b []byte) string {
	return models.Truncate(string(b), 200)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
