// instrumented.go
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
	"errors"
	"io"
	"time"

	"github.com/localnerve/opsregistry/internal/metrics"
	"github.com/localnerve/opsregistry/internal/models"
)

// instrumented records every call of the wrapped service with a metrics.Recorder
type instrumented struct {
	next DataService
	rec  *metrics.Recorder
}

// Instrument wraps svc so each operation is counted and timed
func Instrument(svc DataService, rec *metrics.Recorder) DataService {
	if rec == nil {
		return svc
	}
	return &instrumented{next: svc, rec: rec}
}

// Outcome classifies an error for the outcome metric label
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	s.rec.Observe(op, Outcome(err), time.Since(start))
}

func (s *instrumented) Initialize(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("Initialize", start, err) }(time.Now())
	return s.next.Initialize(ctx)
}

// Ping delegates to the wrapped service when it can report reachability
func (s *instrumented) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the wrapped service when it holds resources
func (s *instrumented) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *instrumented) GetBuildings(ctx context.Context, includeDeleted bool) (out []models.Building, err error) {
	defer func(start time.Time) { s.observe("GetBuildings", start, err) }(time.Now())
	return s.next.GetBuildings(ctx, includeDeleted)
}

func (s *instrumented) GetBuildingByID(ctx context.Context, id int) (out *models.Building, err error) {
	defer func(start time.Time) { s.observe("GetBuildingByID", start, err) }(time.Now())
	return s.next.GetBuildingByID(ctx, id)
}

func (s *instrumented) CreateBuilding(ctx context.Context, in models.BuildingInput) (out *models.Building, err error) {
	defer func(start time.Time) { s.observe("CreateBuilding", start, err) }(time.Now())
	return s.next.CreateBuilding(ctx, in)
}

func (s *instrumented) UpdateBuilding(ctx context.Context, id int, in models.BuildingInput) (out *models.Building, err error) {
	defer func(start time.Time) { s.observe("UpdateBuilding", start, err) }(time.Now())
	return s.next.UpdateBuilding(ctx, id, in)
}

func (s *instrumented) DeleteBuilding(ctx context.Context, id int, softDelete bool) (err error) {
	defer func(start time.Time) { s.observe("DeleteBuilding", start, err) }(time.Now())
	return s.next.DeleteBuilding(ctx, id, softDelete)
}

func (s *instrumented) SearchBuildings(ctx context.Context, query string, includeDeleted bool) (out []models.Building, err error) {
	defer func(start time.Time) { s.observe("SearchBuildings", start, err) }(time.Now())
	return s.next.SearchBuildings(ctx, query, includeDeleted)
}

func (s *instrumented) GetDocumentsByBuilding(ctx context.Context, buildingID int) (out []models.Document, err error) {
	defer func(start time.Time) { s.observe("GetDocumentsByBuilding", start, err) }(time.Now())
	return s.next.GetDocumentsByBuilding(ctx, buildingID)
}

func (s *instrumented) UploadDocument(ctx context.Context, upload models.DocumentUpload, onProgress ProgressFunc) (out *models.Document, err error) {
	defer func(start time.Time) {
		s.observe("UploadDocument", start, err)
		if err == nil {
			s.rec.AddUploaded(upload.Size())
		}
	}(time.Now())
	return s.next.UploadDocument(ctx, upload, onProgress)
}

func (s *instrumented) DeleteDocument(ctx context.Context, id int) (err error) {
	defer func(start time.Time) { s.observe("DeleteDocument", start, err) }(time.Now())
	return s.next.DeleteDocument(ctx, id)
}

func (s *instrumented) DownloadDocument(ctx context.Context, id int) (out *models.FileContent, err error) {
	defer func(start time.Time) { s.observe("DownloadDocument", start, err) }(time.Now())
	return s.next.DownloadDocument(ctx, id)
}

func (s *instrumented) GetDocumentByID(ctx context.Context, id int) (out *models.Document, err error) {
	defer func(start time.Time) { s.observe("GetDocumentByID", start, err) }(time.Now())
	return s.next.GetDocumentByID(ctx, id)
}
