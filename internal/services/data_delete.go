// data_delete.go
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
	"context"

	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// deleteBuildingHard removes a building row. Its documents stay on record,
// moved to the Deleted status by the orphan cleanup in the same transaction.
func (s *DatabaseService) deleteBuildingHard(ctx context.Context, id int) error {
	var orphaned int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Building
		if err := s.forUpdate(tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})).
			First(&b, id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&b).Error; err != nil {
			return err
		}

		n, err := cleanupDocumentOrphans(tx)
		if err != nil {
			return err
		}
		orphaned = n
		return nil
	})
	if err != nil {
		return s.lookupErr(err, buildingNotFound(id), "delete building")
	}

	logging.WithFields(logrus.Fields{"id": id, "documents": orphaned}).
		Debug("DatabaseDataService: Building permanently deleted")
	return nil
}

// cleanupDocumentOrphans marks documents whose building no longer exists as Deleted
func cleanupDocumentOrphans(tx *gorm.DB) (int64, error) {
	result := tx.Exec(`UPDATE documents SET status = ?
		WHERE status <> ? AND building_id NOT IN (SELECT id FROM buildings)`,
		models.DocumentStatusDeleted, models.DocumentStatusDeleted)
	return result.RowsAffected, result.Error
}
