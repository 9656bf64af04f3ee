// state.go
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

// Package store holds the registry UI state and the actions that change it.
//
// State only changes through Reduce, a pure function of the previous state and
// an Action. Store runs the asynchronous actions against a DataService and
// tags every buildings load and every selection with a generation token so a
// response that arrives after a newer request is dropped.
package store

import (
	"github.com/localnerve/opsregistry/internal/models"
)

// State is the single source of truth of a registry client
type State struct {
	Buildings         []models.Building
	FilteredBuildings []models.Building
	SelectedBuilding  *models.Building
	Documents         []models.Document

	SearchQuery string
	ShowDeleted bool
	IsLoading   bool
	Error       string
	ActiveTab   models.Tab

	IsAddEditDialogOpen bool
	IsUploadDialogOpen  bool
	IsDeleteDialogOpen  bool
	EditingBuilding     *models.Building

	UploadProgress int

	// LoadGen and SelectGen are the tokens of the latest buildings load and selection
	LoadGen   uint64
	SelectGen uint64
}

// InitialState returns the state of a freshly mounted client
func InitialState() State {
	return State{
		Buildings:         []models.Building{},
		FilteredBuildings: []models.Building{},
		Documents:         []models.Document{},
		ActiveTab:         models.TabDetails,
	}
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	out := s
	out.Buildings = cloneBuildings(s.Buildings)
	out.FilteredBuildings = cloneBuildings(s.FilteredBuildings)
	out.Documents = cloneDocuments(s.Documents)
	out.SelectedBuilding = cloneBuilding(s.SelectedBuilding)
	out.EditingBuilding = cloneBuilding(s.EditingBuilding)
	return out
}

func cloneBuilding(b *models.Building) *models.Building {
	if b == nil {
		return nil
	}
	c := b.Clone()
	return &c
}

func cloneBuildings(in []models.Building) []models.Building {
	out := make([]models.Building, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneDocuments(in []models.Document) []models.Document {
	out := make([]models.Document, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
