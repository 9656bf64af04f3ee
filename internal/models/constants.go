// constants.go
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

package models

import "time"

// Hosted list and library names
const (
	BuildingsList    = "Buildings"
	DocumentsLibrary = "KPFA_Documents"
)

// Field internal names of the Buildings list
const (
	FieldPropertyName      = "Title"
	FieldAddress           = "Address"
	FieldYearBuilt         = "YearBuilt"
	FieldArea              = "AreaSquareFootage"
	FieldDeleted           = "Deleted"
	FieldCommissioningDate = "CommissioningDate"
)

// Field internal names of the documents library
const (
	FieldTitle        = "Title"
	FieldBuildingID   = "BuildingId"
	FieldDocumentType = "DocumentType"
	FieldDocumentDate = "DocumentDate"
	FieldDescription  = "Description"
	FieldStatus       = "Status"
	FieldFileRef      = "FileRef"
	FieldFileLeafRef  = "FileLeafRef"
)

// Upload limits
const (
	MaxFileSizeMB    = 10
	MaxFileSizeBytes = MaxFileSizeMB * 1024 * 1024
)

// AllowedFileExtensions is the upload allow-list
var AllowedFileExtensions = []string{
	".pdf", ".doc", ".docx", ".xlsx", ".xls",
	".jpg", ".jpeg", ".png", ".gif", ".bmp",
}

// SearchDebounce is the delay before a typed search query is committed
const SearchDebounce = 300 * time.Millisecond

// User facing messages
const (
	MsgLoadError      = "Failed to load buildings"
	MsgDocumentsError = "Failed to load documents"
	MsgSaveError      = "Error saving building"
	MsgDeleteError    = "Error deleting building"
	MsgUploadError    = "Error uploading document"
	MsgDownloadError  = "Failed to download document"
	MsgDeleteDocError = "Failed to delete document"
	MsgInitError      = "Failed to initialize application"
	MsgNotInitialized = "Service not initialized"
	MsgNoBuildings    = "No buildings found"
	MsgNoDocuments    = "No documents found for this building"
	MsgSelectBuilding = "Select a building to view details"
	MsgUploadSuccess  = "Document uploaded successfully"
	MsgSaveSuccess    = "Building saved successfully"
	MsgDeleteSuccess  = "Building deleted successfully"
	MsgDeleteConfirm  = "Are you sure you want to delete this building?"
)
