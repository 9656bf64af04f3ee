// enums.go
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

// DocumentType classifies a stored document
type DocumentType string

const (
	DocumentTypeContract DocumentType = "Contract"
	DocumentTypeInvoice  DocumentType = "Invoice"
	DocumentTypePhoto    DocumentType = "Photo"
	DocumentTypeReport   DocumentType = "Report"
	DocumentTypeOther    DocumentType = "Other"
)

// DocumentTypes lists every valid DocumentType in display order
var DocumentTypes = []DocumentType{
	DocumentTypeContract,
	DocumentTypeInvoice,
	DocumentTypePhoto,
	DocumentTypeReport,
	DocumentTypeOther,
}

// IsValid reports whether t is one of the known document types
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeContract, DocumentTypeInvoice, DocumentTypePhoto, DocumentTypeReport, DocumentTypeOther:
		return true
	}
	return false
}

// DocumentStatus is the lifecycle status of a document
type DocumentStatus string

const (
	DocumentStatusActive   DocumentStatus = "Active"
	DocumentStatusArchived DocumentStatus = "Archived"
	DocumentStatusDeleted  DocumentStatus = "Deleted"
)

// IsValid reports whether s is one of the known statuses
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusActive, DocumentStatusArchived, DocumentStatusDeleted:
		return true
	}
	return false
}

// Tab is the active detail view of a selected building
type Tab string

const (
	TabDetails   Tab = "details"
	TabDocuments Tab = "documents"
)
