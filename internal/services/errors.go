// errors.go
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
	"errors"
	"fmt"
)

// Error kinds returned by every DataService implementation.
// Callers test them with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUploadFailed       = errors.New("upload failed")
	ErrOperationFailed    = errors.New("operation failed")
	ErrNotInitialized     = errors.New("service not initialized")
)

func buildingNotFound(id int) error {
	return fmt.Errorf("building with id %d: %w", id, ErrNotFound)
}

func documentNotFound(id int) error {
	return fmt.Errorf("document with id %d: %w", id, ErrNotFound)
}

// opFailed wraps err as ErrOperationFailed unless it already carries one of the kinds above
func opFailed(msg string, err error) error {
	if isKnown(err) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrOperationFailed, err)
}

func uploadFailed(msg string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotInitialized) || errors.Is(err, ErrUploadFailed) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrUploadFailed, err)
}

func isKnown(err error) bool {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrServiceUnavailable, ErrUploadFailed, ErrOperationFailed, ErrNotInitialized} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
