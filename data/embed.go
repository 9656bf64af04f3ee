// embed.go
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

package data

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/localnerve/opsregistry/internal/models"
)

//go:embed initdb/mariadb/001-ddl-privileges.sql
var InitdbMariaDBPrivileges string

//go:embed seed/buildings.json
var seedBuildings []byte

//go:embed seed/documents.json
var seedDocuments []byte

// SeedBuildings decodes a fresh copy of the sample buildings
func SeedBuildings() ([]models.Building, error) {
	var out []models.Building
	if err := json.Unmarshal(seedBuildings, &out); err != nil {
		return nil, fmt.Errorf("decode seed buildings: %w", err)
	}
	return out, nil
}

// SeedDocuments decodes a fresh copy of the sample documents
func SeedDocuments() ([]models.Document, error) {
	var out []models.Document
	if err := json.Unmarshal(seedDocuments, &out); err != nil {
		return nil, fmt.Errorf("decode seed documents: %w", err)
	}
	return out, nil
}
