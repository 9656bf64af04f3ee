// filter.go
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
	"sort"
	"strings"
)

// Matches reports whether the property name or address contains query, ignoring case.
// A blank query matches every building.
func (b Building) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.PropertyName), q) ||
		strings.Contains(strings.ToLower(b.Address), q)
}

// FilterBuildings returns the buildings matching query, dropping soft-deleted
// ones unless includeDeleted is set. Order is preserved and the input is not modified.
func FilterBuildings(buildings []Building, query string, includeDeleted bool) []Building {
	out := make([]Building, 0, len(buildings))
	for _, b := range buildings {
		if b.Deleted && !includeDeleted {
			continue
		}
		if b.Matches(query) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// SortBuildings orders buildings by property name, case-insensitively, then by id
func SortBuildings(buildings []Building) {
	sort.SliceStable(buildings, func(i, j int) bool {
		a, b := strings.ToLower(buildings[i].PropertyName), strings.ToLower(buildings[j].PropertyName)
		if a != b {
			return a < b
		}
		return buildings[i].ID < buildings[j].ID
	})
}

// SortDocuments orders documents newest first, breaking ties by higher id
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].Created.Equal(docs[j].Created) {
			return docs[i].Created.After(docs[j].Created)
		}
		return docs[i].ID > docs[j].ID
	})
}
