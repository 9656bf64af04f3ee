// mock_service.go
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
	"fmt"
	"sync"
	"time"

	"github.com/localnerve/opsregistry/data"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// MockService is an in-memory DataService seeded with sample data.
// It simulates network latency and upload progress for local development.
type MockService struct {
	mu          sync.Mutex
	initialized bool
	buildings   []models.Building
	documents   []models.Document
	content     map[int][]byte
	nextBldgID  int
	nextDocID   int

	latency       time.Duration
	stepDelay     time.Duration
	lenientDelete bool
	now           func() time.Time
}

// MockOption configures a MockService
type MockOption func(*MockService)

// WithLatency sets the simulated per-call delay. Upload progress steps wait a third of it.
func WithLatency(d time.Duration) MockOption {
	return func(m *MockService) {
		m.latency = d
		m.stepDelay = d / 3
	}
}

// WithLenientDocumentDelete makes DeleteDocument ignore unknown ids instead of failing with ErrNotFound
func WithLenientDocumentDelete() MockOption {
	return func(m *MockService) {
		m.lenientDelete = true
	}
}

// WithClock overrides the time source used for audit fields
func WithClock(now func() time.Time) MockOption {
	return func(m *MockService) {
		m.now = now
	}
}

// NewMockService creates a mock service. It holds no data until Initialize.
func NewMockService(opts ...MockOption) *MockService {
	m := &MockService{
		latency:   300 * time.Millisecond,
		stepDelay: 100 * time.Millisecond,
		now:       time.Now,
		content:   make(map[int][]byte),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize loads the seed data, discarding anything held before
func (m *MockService) Initialize(ctx context.Context) error {
	buildings, err := data.SeedBuildings()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	documents, err := data.SeedDocuments()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.buildings = buildings
	m.documents = documents
	m.content = make(map[int][]byte)
	m.nextBldgID, m.nextDocID = 1, 1
	for _, b := range buildings {
		if b.ID >= m.nextBldgID {
			m.nextBldgID = b.ID + 1
		}
	}
	for _, d := range documents {
		if d.ID >= m.nextDocID {
			m.nextDocID = d.ID + 1
		}
	}
	m.initialized = true

	logging.Logger.Info("MockDataService initialized")
	return nil
}

// Ping reports whether the mock has been initialized
func (m *MockService) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return ErrNotInitialized
	}
	return nil
}

// GetBuildings returns buildings ordered by property name
func (m *MockService) GetBuildings(ctx context.Context, includeDeleted bool) ([]models.Building, error) {
	return m.SearchBuildings(ctx, "", includeDeleted)
}

// GetBuildingByID returns a copy of one building
func (m *MockService) GetBuildingByID(ctx context.Context, id int) (*models.Building, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.buildingIndex(id)
	if i < 0 {
		return nil, buildingNotFound(id)
	}
	b := m.buildings[i].Clone()
	return &b, nil
}

// CreateBuilding appends a new building with the next id
func (m *MockService) CreateBuilding(ctx context.Context, in models.BuildingInput) (*models.Building, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	actor := ActorFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b := models.Building{YearBuilt: now.Year()}
	in.ApplyTo(&b)
	b.ID = m.nextBldgID
	b.Deleted = false
	b.Created = now
	b.Modified = now
	b.Author = &actor
	m.nextBldgID++
	m.buildings = append(m.buildings, b)

	logging.WithFields(logrus.Fields{"id": b.ID}).Debug("MockDataService: Building created")
	out := b.Clone()
	return &out, nil
}

// UpdateBuilding merges the non-nil input fields into an existing building
func (m *MockService) UpdateBuilding(ctx context.Context, id int, in models.BuildingInput) (*models.Building, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	actor := ActorFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.buildingIndex(id)
	if i < 0 {
		return nil, buildingNotFound(id)
	}
	b := m.buildings[i].Clone()
	in.ApplyTo(&b)
	b.Modified = m.now()
	b.Editor = &actor
	m.buildings[i] = b

	logging.WithFields(logrus.Fields{"id": id}).Debug("MockDataService: Building updated")
	out := b.Clone()
	return &out, nil
}

// DeleteBuilding flags the building deleted, or removes it when softDelete is false
func (m *MockService) DeleteBuilding(ctx context.Context, id int, softDelete bool) error {
	if err := m.enter(ctx, m.latency); err != nil {
		return err
	}
	actor := ActorFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.buildingIndex(id)
	if i < 0 {
		return buildingNotFound(id)
	}
	if softDelete {
		m.buildings[i].Deleted = true
		m.buildings[i].Modified = m.now()
		m.buildings[i].Editor = &actor
		logging.WithFields(logrus.Fields{"id": id}).Debug("MockDataService: Building soft deleted")
		return nil
	}
	m.buildings = append(m.buildings[:i], m.buildings[i+1:]...)
	logging.WithFields(logrus.Fields{"id": id}).Debug("MockDataService: Building permanently deleted")
	return nil
}

// SearchBuildings matches query against property name and address, ignoring case
func (m *MockService) SearchBuildings(ctx context.Context, query string, includeDeleted bool) ([]models.Building, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := models.FilterBuildings(m.buildings, query, includeDeleted)
	models.SortBuildings(out)
	logging.Logger.Debugf("MockDataService: Search found %d buildings", len(out))
	return out, nil
}

// GetDocumentsByBuilding returns the building's documents that are not deleted, newest first
func (m *MockService) GetDocumentsByBuilding(ctx context.Context, buildingID int) ([]models.Document, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Document, 0)
	for _, d := range m.documents {
		if d.BuildingID == buildingID && d.Status != models.DocumentStatusDeleted {
			out = append(out, d.Clone())
		}
	}
	models.SortDocuments(out)
	logging.Logger.Debugf("MockDataService: Found %d documents for building %d", len(out), buildingID)
	return out, nil
}

// UploadDocument reports progress 0, 20, ... 100, then records the document
func (m *MockService) UploadDocument(ctx context.Context, upload models.DocumentUpload, onProgress ProgressFunc) (*models.Document, error) {
	if err := m.enter(ctx, 0); err != nil {
		return nil, uploadFailed("upload document", err)
	}

	m.mu.Lock()
	_, ok := m.buildingName(upload.BuildingID)
	m.mu.Unlock()
	if !ok {
		return nil, uploadFailed("upload document", buildingNotFound(upload.BuildingID))
	}

	for p := 0; p <= 100; p += 20 {
		if err := sleep(ctx, m.stepDelay); err != nil {
			return nil, uploadFailed("upload document", err)
		}
		report(onProgress, p)
	}

	actor := ActorFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	// the building may have been removed while progress was reported
	name, ok := m.buildingName(upload.BuildingID)
	if !ok {
		return nil, uploadFailed("upload document", buildingNotFound(upload.BuildingID))
	}
	doc := models.Document{
		ID:            m.nextDocID,
		FileName:      upload.FileName,
		Title:         upload.EffectiveTitle(),
		BuildingID:    upload.BuildingID,
		BuildingName:  name,
		DocumentType:  upload.DocumentType,
		DocumentDate:  datatypes.Date(upload.DocumentDate),
		Description:   upload.Description,
		Status:        models.DocumentStatusActive,
		FileURL:       "/documents/" + upload.FileName,
		FileSize:      upload.Size(),
		FileExtension: models.FileExtension(upload.FileName),
		ContentType:   contentTypeOf(upload),
		Created:       m.now(),
		Author:        &actor,
	}
	m.nextDocID++
	m.documents = append(m.documents, doc)
	m.content[doc.ID] = append([]byte(nil), upload.Data...)

	logging.WithFields(logrus.Fields{"id": doc.ID}).Debug("MockDataService: Document uploaded")
	out := doc.Clone()
	return &out, nil
}

// DeleteDocument sets the document status to Deleted
func (m *MockService) DeleteDocument(ctx context.Context, id int) error {
	if err := m.enter(ctx, m.latency); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.documentIndex(id)
	if i < 0 {
		if m.lenientDelete {
			return nil
		}
		return documentNotFound(id)
	}
	m.documents[i].Status = models.DocumentStatusDeleted
	logging.WithFields(logrus.Fields{"id": id}).Debug("MockDataService: Document deleted")
	return nil
}

// DownloadDocument returns the uploaded bytes, or a text placeholder for seeded documents
func (m *MockService) DownloadDocument(ctx context.Context, id int) (*models.FileContent, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.documentIndex(id)
	if i < 0 {
		return nil, documentNotFound(id)
	}
	doc := m.documents[i]
	if b, ok := m.content[id]; ok {
		return &models.FileContent{
			FileName:    doc.FileName,
			ContentType: doc.ContentType,
			Data:        append([]byte(nil), b...),
		}, nil
	}
	return &models.FileContent{
		FileName:    doc.FileName,
		ContentType: "text/plain",
		Data:        []byte(fmt.Sprintf("Mock document content for document ID: %d", id)),
	}, nil
}

// GetDocumentByID returns one document's metadata
func (m *MockService) GetDocumentByID(ctx context.Context, id int) (*models.Document, error) {
	if err := m.enter(ctx, m.latency); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.documentIndex(id)
	if i < 0 {
		return nil, documentNotFound(id)
	}
	d := m.documents[i].Clone()
	return &d, nil
}

// enter waits out the simulated latency and checks initialization
func (m *MockService) enter(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	ready := m.initialized
	m.mu.Unlock()
	if !ready {
		return ErrNotInitialized
	}
	return sleep(ctx, d)
}

func (m *MockService) buildingIndex(id int) int {
	for i := range m.buildings {
		if m.buildings[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MockService) documentIndex(id int) int {
	for i := range m.documents {
		if m.documents[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MockService) buildingName(id int) (string, bool) {
	if i := m.buildingIndex(id); i >= 0 {
		return m.buildings[i].PropertyName, true
	}
	return "", false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
