// building.go
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
	"time"

	"gorm.io/datatypes"
)

// Building represents a property in the registry.
// PropertyName is persisted in the "title" column to match the Title field of the hosted list.
type Building struct {
	ID                int             `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyName      string          `gorm:"column:title;size:255;not null;index:idx_buildings_title" json:"propertyName"`
	Address           string          `gorm:"size:1000;not null" json:"address"`
	YearBuilt         int             `gorm:"not null" json:"yearBuilt"`
	AreaSquareFootage float64         `gorm:"column:area_square_footage;not null" json:"areaSquareFootage"`
	Deleted           bool            `gorm:"not null;default:false;index:idx_buildings_deleted" json:"deleted"`
	CommissioningDate *datatypes.Date `json:"commissioningDate,omitempty"`
	Created           time.Time       `json:"created"`
	Modified          time.Time       `json:"modified"`
	Author            *Person         `json:"author,omitempty"`
	Editor            *Person         `json:"editor,omitempty"`
}

// TableName overrides the table name for Building
func (Building) TableName() string {
	return "buildings"
}

// Clone returns a deep copy of the building
func (b Building) Clone() Building {
	out := b
	if b.CommissioningDate != nil {
		d := *b.CommissioningDate
		out.CommissioningDate = &d
	}
	if b.Author != nil {
		p := *b.Author
		out.Author = &p
	}
	if b.Editor != nil {
		p := *b.Editor
		out.Editor = &p
	}
	return out
}

// BuildingInput carries the caller-supplied fields of a create or update.
// Nil fields are left untouched by an update.
type BuildingInput struct {
	PropertyName      *string    `json:"propertyName,omitempty" validate:"omitempty,max=255"`
	Address           *string    `json:"address,omitempty" validate:"omitempty,max=1000"`
	YearBuilt         *int       `json:"yearBuilt,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	AreaSquareFootage *float64   `json:"areaSquareFootage,omitempty" validate:"omitempty,gt=0,lte=999999999.99"`
	CommissioningDate *time.Time `json:"commissioningDate,omitempty"`
	Deleted           *bool      `json:"deleted,omitempty"`
}

// InputFromBuilding builds a full input from an existing record
func InputFromBuilding(b Building) BuildingInput {
	in := BuildingInput{
		PropertyName:      &b.PropertyName,
		Address:           &b.Address,
		YearBuilt:         &b.YearBuilt,
		AreaSquareFootage: &b.AreaSquareFootage,
		Deleted:           &b.Deleted,
	}
	if b.CommissioningDate != nil {
		t := time.Time(*b.CommissioningDate)
		in.CommissioningDate = &t
	}
	return in
}

// ApplyTo merges the non-nil fields into b
func (in BuildingInput) ApplyTo(b *Building) {
	if in.PropertyName != nil {
		b.PropertyName = *in.PropertyName
	}
	if in.Address != nil {
		b.Address = *in.Address
	}
	if in.YearBuilt != nil {
		b.YearBuilt = *in.YearBuilt
	}
	if in.AreaSquareFootage != nil {
		b.AreaSquareFootage = *in.AreaSquareFootage
	}
	if in.Deleted != nil {
		b.Deleted = *in.Deleted
	}
	if in.CommissioningDate != nil {
		d := datatypes.Date(*in.CommissioningDate)
		b.CommissioningDate = &d
	}
}
