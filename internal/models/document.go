// document.go
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

import (
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Document represents a file attached to a building
type Document struct {
	ID            int            `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName      string         `gorm:"column:file_leaf_ref;size:255;not null" json:"fileName"`
	Title         string         `gorm:"size:255" json:"title"`
	BuildingID    int            `gorm:"not null;index:idx_documents_building" json:"buildingId"`
	BuildingName  string         `gorm:"size:255" json:"buildingName,omitempty"`
	DocumentType  DocumentType   `gorm:"size:32;not null" json:"documentType"`
	DocumentDate  datatypes.Date `json:"documentDate"`
	Description   string         `gorm:"size:2000" json:"description"`
	Status        DocumentStatus `gorm:"size:32;not null;index:idx_documents_building" json:"status"`
	FileURL       string         `gorm:"column:file_ref;size:1024" json:"fileUrl"`
	FileSize      int64          `json:"fileSize"`
	FileExtension string         `gorm:"size:16" json:"fileExtension"`
	ContentType   string         `gorm:"size:128" json:"contentType,omitempty"`
	StorageKey    string         `gorm:"size:512" json:"-"`
	Created       time.Time      `json:"created"`
	Author        *Person        `json:"author,omitempty"`
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// Clone returns a deep copy of the document
func (d Document) Clone() Document {
	out := d
	if d.Author != nil {
		p := *d.Author
		out.Author = &p
	}
	return out
}

// FileExtension returns the lower-cased extension of name including the dot,
// or an empty string when name has none.
func FileExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(ext)
}
