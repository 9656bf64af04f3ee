// database_service.go
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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/opsregistry/data"
	"github.com/localnerve/opsregistry/internal/blob"
	"github.com/localnerve/opsregistry/internal/database"
	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// DatabaseService stores buildings and document metadata in a SQL database
// through gorm, and document bytes in a blob store.
type DatabaseService struct {
	db          *gorm.DB
	blobs       blob.Store
	seed        bool
	now         func() time.Time
	initialized atomic.Bool
}

// DatabaseOption configures a DatabaseService
type DatabaseOption func(*DatabaseService)

// WithSeed loads the sample data on Initialize when the buildings table is empty
func WithSeed(seed bool) DatabaseOption {
	return func(s *DatabaseService) {
		s.seed = seed
	}
}

// WithDatabaseClock overrides the time source used for audit fields
func WithDatabaseClock(now func() time.Time) DatabaseOption {
	return func(s *DatabaseService) {
		s.now = now
	}
}

// NewDatabaseService creates a database backed service
func NewDatabaseService(db *gorm.DB, blobs blob.Store, opts ...DatabaseOption) *DatabaseService {
	s := &DatabaseService{db: db, blobs: blobs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize checks connectivity, migrates the schema and optionally seeds it
func (s *DatabaseService) Initialize(ctx context.Context) error {
	if err := s.ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	if err := database.AutoMigrate(s.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrServiceUnavailable, err)
	}
	if s.seed {
		if err := s.seedIfEmpty(ctx); err != nil {
			return fmt.Errorf("%w: seed: %w", ErrServiceUnavailable, err)
		}
	}
	s.initialized.Store(true)

	logging.WithFields(logrus.Fields{
		"dialect": s.db.Dialector.Name(),
		"blob":    s.blobs.Driver(),
	}).Info("DatabaseDataService initialized")
	return nil
}

// Ping checks the database connection
func (s *DatabaseService) Ping(ctx context.Context) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	return s.ping(ctx)
}

// Close releases the database pool
func (s *DatabaseService) Close() error {
	s.initialized.Store(false)
	return database.Close(s.db)
}

func (s *DatabaseService) ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetBuildings returns buildings ordered by property name
func (s *DatabaseService) GetBuildings(ctx context.Context, includeDeleted bool) ([]models.Building, error) {
	return s.SearchBuildings(ctx, "", includeDeleted)
}

// GetBuildingByID returns one building
func (s *DatabaseService) GetBuildingByID(ctx context.Context, id int) (*models.Building, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}
	var b models.Building
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, s.lookupErr(err, buildingNotFound(id), "get building")
	}
	return &b, nil
}

// CreateBuilding inserts a building and returns it with its assigned id
func (s *DatabaseService) CreateBuilding(ctx context.Context, in models.BuildingInput) (*models.Building, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}
	actor := ActorFromContext(ctx)
	now := s.now().UTC()

	b := models.Building{YearBuilt: now.Year()}
	in.ApplyTo(&b)
	b.ID = 0
	b.Deleted = false
	b.Created = now
	b.Modified = now
	b.Author = &actor

	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, opFailed("create building", err)
	}
	logging.WithFields(logrus.Fields{"id": b.ID}).Debug("DatabaseDataService: Building created")
	return &b, nil
}

// UpdateBuilding merges the non-nil input fields into a building.
// A rename is copied to the BuildingName of its documents.
func (s *DatabaseService) UpdateBuilding(ctx context.Context, id int, in models.BuildingInput) (*models.Building, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}
	actor := ActorFromContext(ctx)

	var b models.Building
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.forUpdate(tx).First(&b, id).Error; err != nil {
			return err
		}
		oldName := b.PropertyName
		in.ApplyTo(&b)
		b.Modified = s.now().UTC()
		b.Editor = &actor

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		if b.PropertyName != oldName {
			return tx.Model(&models.Document{}).
				Where("building_id = ?", id).
				Update("building_name", b.PropertyName).Error
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupErr(err, buildingNotFound(id), "update building")
	}
	logging.WithFields(logrus.Fields{"id": id}).Debug("DatabaseDataService: Building updated")
	return &b, nil
}

// DeleteBuilding flags the building deleted, or removes it when softDelete is false
func (s *DatabaseService) DeleteBuilding(ctx context.Context, id int, softDelete bool) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	if !softDelete {
		return s.deleteBuildingHard(ctx, id)
	}

	actor := ActorFromContext(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Building
		if err := s.forUpdate(tx).First(&b, id).Error; err != nil {
			return err
		}
		return tx.Model(&b).Updates(map[string]any{
			"deleted":  true,
			"modified": s.now().UTC(),
			"editor":   actor,
		}).Error
	})
	if err != nil {
		return s.lookupErr(err, buildingNotFound(id), "delete building")
	}
	logging.WithFields(logrus.Fields{"id": id}).Debug("DatabaseDataService: Building soft deleted")
	return nil
}

// SearchBuildings matches query against property name and address, ignoring case
func (s *DatabaseService) SearchBuildings(ctx context.Context, query string, includeDeleted bool) ([]models.Building, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}

	q := s.db.WithContext(ctx).Model(&models.Building{})
	if s.db.Dialector.Name() == "mysql" {
		q = q.Clauses(hints.UseIndex("idx_buildings_title"))
	}
	if !includeDeleted {
		q = q.Where("deleted = ?", false)
	}
	if term := strings.TrimSpace(query); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(address) LIKE ? ESCAPE '!'", like, like)
	}

	out := make([]models.Building, 0)
	if err := q.Order("title").Find(&out).Error; err != nil {
		return nil, opFailed("search buildings", err)
	}
	models.SortBuildings(out)
	logging.Logger.Debugf("DatabaseDataService: Search found %d buildings", len(out))
	return out, nil
}

// GetDocumentsByBuilding returns the building's documents that are not deleted, newest first
func (s *DatabaseService) GetDocumentsByBuilding(ctx context.Context, buildingID int) ([]models.Document, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}
	out := make([]models.Document, 0)
	err := s.db.WithContext(ctx).
		Where("building_id = ? AND status <> ?", buildingID, models.DocumentStatusDeleted).
		Order("created DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, opFailed("get documents", err)
	}
	return out, nil
}

// UploadDocument stores the file bytes, then the metadata row.
// If the row cannot be written the stored bytes are removed again.
func (s *DatabaseService) UploadDocument(ctx context.Context, upload models.DocumentUpload, onProgress ProgressFunc) (*models.Document, error) {
	if !s.initialized.Load() {
		return nil, uploadFailed("upload document", ErrNotInitialized)
	}

	var b models.Building
	if err := s.db.WithContext(ctx).First(&b, upload.BuildingID).Error; err != nil {
		return nil, uploadFailed("upload document", s.lookupErr(err, buildingNotFound(upload.BuildingID), "get building"))
	}
	report(onProgress, 10)

	contentType := contentTypeOf(upload)
	key := storageKey(upload.BuildingID, upload.FileName)
	if _, err := s.blobs.Put(ctx, key, bytes.NewReader(upload.Data), blob.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"building": fmt.Sprint(upload.BuildingID), "file": upload.FileName},
	}); err != nil {
		return nil, uploadFailed("store file", err)
	}
	report(onProgress, 60)

	actor := ActorFromContext(ctx)
	doc := models.Document{
		FileName:      upload.FileName,
		Title:         upload.EffectiveTitle(),
		BuildingID:    b.ID,
		BuildingName:  b.PropertyName,
		DocumentType:  upload.DocumentType,
		DocumentDate:  datatypes.Date(upload.DocumentDate),
		Description:   upload.Description,
		Status:        models.DocumentStatusActive,
		FileURL:       "/" + models.DocumentsLibrary + "/" + key,
		FileSize:      upload.Size(),
		FileExtension: models.FileExtension(upload.FileName),
		ContentType:   contentType,
		StorageKey:    key,
		Created:       s.now().UTC(),
		Author:        &actor,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		s.removeBlob(ctx, key)
		return nil, uploadFailed("save document metadata", err)
	}
	report(onProgress, 90)

	logging.WithFields(logrus.Fields{"id": doc.ID, "key": key}).Debug("DatabaseDataService: Document uploaded")
	report(onProgress, 100)
	return &doc, nil
}

// DeleteDocument sets the document status to Deleted
func (s *DatabaseService) DeleteDocument(ctx context.Context, id int) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Document
		if err := s.forUpdate(tx).First(&d, id).Error; err != nil {
			return err
		}
		return tx.Model(&d).Update("status", models.DocumentStatusDeleted).Error
	})
	if err != nil {
		return s.lookupErr(err, documentNotFound(id), "delete document")
	}
	logging.WithFields(logrus.Fields{"id": id}).Debug("DatabaseDataService: Document deleted")
	return nil
}

// DownloadDocument reads the stored bytes of a document
func (s *DatabaseService) DownloadDocument(ctx context.Context, id int) (*models.FileContent, error) {
	doc, err := s.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.StorageKey == "" {
		return nil, fmt.Errorf("document %d has no stored content: %w", id, ErrNotFound)
	}

	info, rc, err := s.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("document %d content: %w", id, ErrNotFound)
		}
		return nil, opFailed("download document", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, opFailed("download document", err)
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	return &models.FileContent{FileName: doc.FileName, ContentType: contentType, Data: b}, nil
}

// GetDocumentByID returns one document's metadata
func (s *DatabaseService) GetDocumentByID(ctx context.Context, id int) (*models.Document, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}
	var d models.Document
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, s.lookupErr(err, documentNotFound(id), "get document")
	}
	return &d, nil
}

// forUpdate adds a row lock where the dialect supports one
func (s *DatabaseService) forUpdate(tx *gorm.DB) *gorm.DB {
	if database.IsSQLite(s.db.Dialector.Name()) {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *DatabaseService) lookupErr(err, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return opFailed(msg, err)
}

func (s *DatabaseService) removeBlob(ctx context.Context, key string) {
	if _, err := s.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		logging.WithFields(logrus.Fields{"key": key}).Errorf("DatabaseDataService: failed to remove orphaned file: %v", err)
		return
	}
	logging.WithFields(logrus.Fields{"key": key}).Warn("DatabaseDataService: removed file after metadata failure")
}

// seedIfEmpty loads the sample buildings and documents into an empty database.
// Ids are assigned by the database and the document references remapped.
func (s *DatabaseService) seedIfEmpty(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Building{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	buildings, err := data.SeedBuildings()
	if err != nil {
		return err
	}
	documents, err := data.SeedDocuments()
	if err != nil {
		return err
	}

	var stored []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[int]int, len(buildings))
		for i := range buildings {
			seedID := buildings[i].ID
			buildings[i].ID = 0
			if err := tx.Create(&buildings[i]).Error; err != nil {
				return err
			}
			ids[seedID] = buildings[i].ID
		}

		for i := range documents {
			d := &documents[i]
			d.ID = 0
			d.BuildingID = ids[d.BuildingID]
			d.StorageKey = storageKey(d.BuildingID, d.FileName)
			d.ContentType = "text/plain"
			body := fmt.Sprintf("Sample content for %s", d.Title)
			if _, err := s.blobs.Put(ctx, d.StorageKey, strings.NewReader(body), blob.PutOptions{ContentType: d.ContentType}); err != nil {
				return err
			}
			stored = append(stored, d.StorageKey)
			if err := tx.Create(d).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, key := range stored {
			s.removeBlob(ctx, key)
		}
		return err
	}

	logging.Logger.Infof("DatabaseDataService: seeded %d buildings, %d documents", len(buildings), len(documents))
	return nil
}

func storageKey(buildingID int, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		name = "file"
	}
	return fmt.Sprintf("buildings/%d/%s/%s", buildingID, uuid.NewString(), name)
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
