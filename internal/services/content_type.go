// content_type.go
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
	"mime"

	"github.com/gabriel-vasile/mimetype"
	"github.com/localnerve/opsregistry/internal/models"
)

// contentTypeOf returns the declared content type of an upload, falling back
// to the file extension and then to sniffing the bytes.
func contentTypeOf(upload models.DocumentUpload) string {
	if upload.ContentType != "" && upload.ContentType != "application/octet-stream" {
		return upload.ContentType
	}
	if ct := mime.TypeByExtension(models.FileExtension(upload.FileName)); ct != "" {
		return ct
	}
	return mimetype.Detect(upload.Data).String()
}
