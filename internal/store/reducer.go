// reducer.go
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

package store

import (
	"github.com/localnerve/opsregistry/internal/models"
)

// Reduce returns the state that follows s after a. It never modifies s:
// every changed slice is rebuilt. Results tagged with a load or selection
// token older than the current one are ignored.
func Reduce(s State, a Action) State {
	next := s

	switch a := a.(type) {
	case BuildingsLoadStarted:
		if a.Gen < s.LoadGen {
			return s
		}
		next.LoadGen = a.Gen
		next.IsLoading = true
		next.Error = ""

	case BuildingsLoaded:
		if a.Gen != s.LoadGen {
			return s
		}
		next.Buildings = cloneBuildings(a.Buildings)
		next.IsLoading = false
		refilter(&next)

	case BuildingsLoadFailed:
		if a.Gen != s.LoadGen {
			return s
		}
		next.Error = a.Message
		next.IsLoading = false

	case SelectionChanged:
		if a.Gen < s.SelectGen {
			return s
		}
		next.SelectGen = a.Gen
		next.SelectedBuilding = cloneBuilding(a.Building)
		next.Documents = []models.Document{}
		next.ActiveTab = models.TabDetails
		next.IsLoading = a.Building != nil
		next.Error = ""

	case DocumentsLoaded:
		if a.Gen != s.SelectGen {
			return s
		}
		next.Documents = cloneDocuments(a.Documents)
		next.IsLoading = false

	case DocumentsLoadFailed:
		if a.Gen != s.SelectGen {
			return s
		}
		next.Error = a.Message
		next.IsLoading = false

	case SaveStarted, DeleteStarted, DocumentRemoveStarted:
		next.IsLoading = true
		next.Error = ""

	case BuildingCreated:
		next.Buildings = append(cloneBuildings(s.Buildings), a.Building.Clone())
		next.IsLoading = false
		closeAddEdit(&next)
		refilter(&next)

	case BuildingUpdated:
		next.Buildings = cloneBuildings(s.Buildings)
		for i := range next.Buildings {
			if next.Buildings[i].ID == a.Building.ID {
				next.Buildings[i] = a.Building.Clone()
			}
		}
		if s.SelectedBuilding != nil && s.SelectedBuilding.ID == a.Building.ID {
			next.SelectedBuilding = cloneBuilding(&a.Building)
		}
		next.IsLoading = false
		closeAddEdit(&next)
		refilter(&next)

	case SaveFailed:
		next.Error = a.Message
		next.IsLoading = false

	case DeleteSucceeded:
		if a.SelectGen >= s.SelectGen {
			next.SelectGen = a.SelectGen
			next.SelectedBuilding = nil
			next.Documents = []models.Document{}
		}
		next.IsDeleteDialogOpen = false
		next.EditingBuilding = nil
		next.IsLoading = false

	case DeleteFailed:
		next.Error = a.Message
		next.IsLoading = false

	case UploadStarted:
		next.IsLoading = true
		next.Error = ""
		next.UploadProgress = 0

	case UploadProgressed:
		p := min(max(a.Progress, 0), 100)
		next.UploadProgress = max(s.UploadProgress, p)

	case UploadSucceeded:
		if s.SelectedBuilding != nil && s.SelectedBuilding.ID == a.Document.BuildingID {
			next.Documents = append(cloneDocuments(s.Documents), a.Document.Clone())
			models.SortDocuments(next.Documents)
		}
		next.IsUploadDialogOpen = false
		next.UploadProgress = 0
		next.IsLoading = false

	case UploadFailed:
		next.Error = a.Message
		next.UploadProgress = 0
		next.IsLoading = false

	case DocumentRemoved:
		next.Documents = make([]models.Document, 0, len(s.Documents))
		for _, d := range s.Documents {
			if d.ID != a.ID {
				next.Documents = append(next.Documents, d.Clone())
			}
		}
		next.IsLoading = false

	case DocumentRemoveFailed:
		next.Error = a.Message
		next.IsLoading = false

	case SearchQuerySet:
		next.SearchQuery = a.Query
		refilter(&next)

	case ShowDeletedSet:
		next.ShowDeleted = a.Show
		refilter(&next)

	case ActiveTabSet:
		next.ActiveTab = a.Tab

	case AddDialogOpened:
		next.IsAddEditDialogOpen = true
		next.EditingBuilding = nil

	case EditDialogOpened:
		next.IsAddEditDialogOpen = true
		next.EditingBuilding = cloneBuilding(&a.Building)

	case AddEditDialogClosed:
		closeAddEdit(&next)

	case DeleteDialogOpened:
		next.IsDeleteDialogOpen = true
		next.EditingBuilding = cloneBuilding(&a.Building)

	case DeleteDialogClosed:
		next.IsDeleteDialogOpen = false
		next.EditingBuilding = nil

	case UploadDialogOpened:
		next.IsUploadDialogOpen = true

	case UploadDialogClosed:
		next.IsUploadDialogOpen = false
		next.UploadProgress = 0

	case ErrorRaised:
		next.Error = a.Message
		next.IsLoading = false

	case ErrorCleared:
		next.Error = ""

	default:
		return s
	}

	return next
}

func refilter(s *State) {
	s.FilteredBuildings = models.FilterBuildings(s.Buildings, s.SearchQuery, s.ShowDeleted)
}

func closeAddEdit(s *State) {
	s.IsAddEditDialogOpen = false
	s.EditingBuilding = nil
}
