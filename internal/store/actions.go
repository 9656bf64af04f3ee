// actions.go
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

import "github.com/localnerve/opsregistry/internal/models"

// Action is a state transition. The set of actions is closed to this package.
type Action interface {
	isAction()
}

// Buildings list
type (
	BuildingsLoadStarted struct{ Gen uint64 }
	BuildingsLoaded      struct {
		Gen       uint64
		Buildings []models.Building
	}
	BuildingsLoadFailed struct {
		Gen     uint64
		Message string
	}
)

// Selection and documents
type (
	SelectionChanged struct {
		Gen      uint64
		Building *models.Building
	}
	DocumentsLoaded struct {
		Gen       uint64
		Documents []models.Document
	}
	DocumentsLoadFailed struct {
		Gen     uint64
		Message string
	}
)

// Create, update and delete
type (
	SaveStarted     struct{}
	BuildingCreated struct{ Building models.Building }
	BuildingUpdated struct{ Building models.Building }
	SaveFailed      struct{ Message string }
	DeleteStarted   struct{}
	// DeleteSucceeded clears the selection under a new selection token
	DeleteSucceeded struct{ SelectGen uint64 }
	DeleteFailed    struct{ Message string }
)

// Document upload and removal
type (
	UploadStarted         struct{}
	UploadProgressed      struct{ Progress int }
	UploadSucceeded       struct{ Document models.Document }
	UploadFailed          struct{ Message string }
	DocumentRemoveStarted struct{}
	DocumentRemoved       struct{ ID int }
	DocumentRemoveFailed  struct{ Message string }
)

// Filters, tabs and dialogs
type (
	SearchQuerySet      struct{ Query string }
	ShowDeletedSet      struct{ Show bool }
	ActiveTabSet        struct{ Tab models.Tab }
	AddDialogOpened     struct{}
	EditDialogOpened    struct{ Building models.Building }
	AddEditDialogClosed struct{}
	DeleteDialogOpened  struct{ Building models.Building }
	DeleteDialogClosed  struct{}
	UploadDialogOpened  struct{}
	UploadDialogClosed  struct{}
	ErrorRaised         struct{ Message string }
	ErrorCleared        struct{}
)

func (BuildingsLoadStarted) isAction()  {}
func (BuildingsLoaded) isAction()       {}
func (BuildingsLoadFailed) isAction()   {}
func (SelectionChanged) isAction()      {}
func (DocumentsLoaded) isAction()       {}
func (DocumentsLoadFailed) isAction()   {}
func (SaveStarted) isAction()           {}
func (BuildingCreated) isAction()       {}
func (BuildingUpdated) isAction()       {}
func (SaveFailed) isAction()            {}
func (DeleteStarted) isAction()         {}
func (DeleteSucceeded) isAction()       {}
func (DeleteFailed) isAction()          {}
func (UploadStarted) isAction()         {}
func (UploadProgressed) isAction()      {}
func (UploadSucceeded) isAction()       {}
func (UploadFailed) isAction()          {}
func (DocumentRemoveStarted) isAction() {}
func (DocumentRemoved) isAction()       {}
func (DocumentRemoveFailed) isAction()  {}
func (SearchQuerySet) isAction()        {}
func (ShowDeletedSet) isAction()        {}
func (ActiveTabSet) isAction()          {}
func (AddDialogOpened) isAction()       {}
func (EditDialogOpened) isAction()      {}
func (AddEditDialogClosed) isAction()   {}
func (DeleteDialogOpened) isAction()    {}
func (DeleteDialogClosed) isAction()    {}
func (UploadDialogOpened) isAction()    {}
func (UploadDialogClosed) isAction()    {}
func (ErrorRaised) isAction()           {}
func (ErrorCleared) isAction()          {}
