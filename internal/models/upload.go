// upload.go
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
	"strings"
	"time"
)

// DocumentUpload is the file plus metadata of a new document
type DocumentUpload struct {
	FileName     string       `json:"fileName"`
	Data         []byte       `json:"-"`
	ContentType  string       `json:"contentType,omitempty"`
	Title        string       `json:"title"`
	BuildingID   int          `json:"buildingId"`
	DocumentType DocumentType `json:"documentType"`
	DocumentDate time.Time    `json:"documentDate"`
	Description  string       `json:"description"`
}

// Size returns the number of file bytes
func (u DocumentUpload) Size() int64 {
	return int64(len(u.Data))
}

// EffectiveTitle returns the trimmed title, or the file name when the title is blank
func (u DocumentUpload) EffectiveTitle() string {
	if t := strings.TrimSpace(u.Title); t != "" {
		return t
	}
	return u.FileName
}

// FileContent is a downloaded document body
type FileContent struct {
	FileName    string
	ContentType string
	Data        []byte
}
