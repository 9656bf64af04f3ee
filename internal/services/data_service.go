// data_service.go
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

	"github.com/localnerve/opsregistry/internal/models"
)

// ProgressFunc receives upload progress as a percentage in [0, 100]
type ProgressFunc func(progress int)

// DataService abstracts persistence of buildings and documents.
// Initialize must succeed before any other call; until then every operation
// fails with ErrNotInitialized.
type DataService interface {
	Initialize(ctx context.Context) error

	// Buildings
	GetBuildings(ctx context.Context, includeDeleted bool) ([]models.Building, error)
	GetBuildingByID(ctx context.Context, id int) (*models.Building, error)
	CreateBuilding(ctx context.Context, in models.BuildingInput) (*models.Building, error)
	UpdateBuilding(ctx context.Context, id int, in models.BuildingInput) (*models.Building, error)
	DeleteBuilding(ctx context.Context, id int, softDelete bool) error
	SearchBuildings(ctx context.Context, query string, includeDeleted bool) ([]models.Building, error)

	// Documents
	GetDocumentsByBuilding(ctx context.Context, buildingID int) ([]models.Document, error)
	UploadDocument(ctx context.Context, upload models.DocumentUpload, onProgress ProgressFunc) (*models.Document, error)
	DeleteDocument(ctx context.Context, id int) error
	DownloadDocument(ctx context.Context, id int) (*models.FileContent, error)
	GetDocumentByID(ctx context.Context, id int) (*models.Document, error)
}

// Pinger is implemented by services that can report backend reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

type actorKey struct{}

// DefaultActor is recorded as author or editor when the context carries no identity
var DefaultActor = models.Person{DisplayName: "Current User", Email: "user@kpfa.org"}

// WithActor returns a context that records p as the author/editor of writes
func WithActor(ctx context.Context, p models.Person) context.Context {
	return context.WithValue(ctx, actorKey{}, p)
}

// ActorFromContext returns the identity stored by WithActor, or DefaultActor
func ActorFromContext(ctx context.Context) models.Person {
	if p, ok := ctx.Value(actorKey{}).(models.Person); ok && (p.DisplayName != "" || p.Email != "") {
		return p
	}
	return DefaultActor
}

func report(onProgress ProgressFunc, p int) {
	if onProgress != nil {
		onProgress(p)
	}
}
