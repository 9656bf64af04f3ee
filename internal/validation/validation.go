// validation.go
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

// Package validation checks building and upload input before it reaches a data service.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		return models.DocumentType(fl.Field().String()).IsValid()
	})
}

// Error holds one message per invalid field. It matches services.ErrValidation.
type Error struct {
	Fields map[string]string
	order  []string
}

func (e *Error) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
	e.order = append(e.order, field)
}

// Error joins the field messages in the order they were found
func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, f := range e.order {
		msgs = append(msgs, e.Fields[f])
	}
	return strings.Join(msgs, "; ")
}

// First returns the first field message
func (e *Error) First() string {
	if len(e.order) == 0 {
		return ""
	}
	return e.Fields[e.order[0]]
}

func (e *Error) Unwrap() error { return services.ErrValidation }

func (e *Error) orNil() error {
	if len(e.order) == 0 {
		return nil
	}
	return e
}

// Message returns the text to show for err: the first field message of a
// validation error, otherwise fallback.
func Message(err error, fallback string) string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.First()
	}
	return fallback
}

type buildingRules struct {
	PropertyName      string  `validate:"required,max=255"`
	Address           string  `validate:"required,max=1000"`
	YearBuilt         int     `validate:"required,gte=1800,lte=2100"`
	AreaSquareFootage float64 `validate:"required,gt=0,lte=999999999.99"`
}

var buildingMessages = map[string]map[string]string{
	"PropertyName": {
		"required": "Property name is required",
		"max":      "Property name must not exceed 255 characters",
	},
	"Address": {
		"required": "Address is required",
		"max":      "Address must not exceed 1000 characters",
	},
	"YearBuilt": {
		"required": "Year built is required",
		"gte":      "Year built must be between 1800 and 2100",
		"lte":      "Year built must be between 1800 and 2100",
	},
	"AreaSquareFootage": {
		"required": "Area/Square footage is required",
		"gt":       "Area must be greater than 0",
		"lte":      "Area value is too large",
	},
}

// ValidateBuildingCreate requires every building field
func ValidateBuildingCreate(in models.BuildingInput) error {
	return validateBuilding(in, nil)
}

// ValidateBuildingUpdate checks only the fields present in the input
func ValidateBuildingUpdate(in models.BuildingInput) error {
	set := map[string]bool{
		"PropertyName":      in.PropertyName != nil,
		"Address":           in.Address != nil,
		"YearBuilt":         in.YearBuilt != nil,
		"AreaSquareFootage": in.AreaSquareFootage != nil,
	}
	return validateBuilding(in, set)
}

func validateBuilding(in models.BuildingInput, only map[string]bool) error {
	rules := buildingRules{
		PropertyName:      strings.TrimSpace(deref(in.PropertyName)),
		Address:           strings.TrimSpace(deref(in.Address)),
		YearBuilt:         deref(in.YearBuilt),
		AreaSquareFootage: deref(in.AreaSquareFootage),
	}
	verr := &Error{}
	if err := validate.Struct(rules); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return err
		}
		for _, fe := range fes {
			if only != nil && !only[fe.Field()] {
				continue
			}
			verr.add(fe.Field(), buildingMessages[fe.Field()][fe.Tag()])
		}
	}
	return verr.orNil()
}

type uploadRules struct {
	Size         int64  `validate:"gt=0,lte=10485760"`
	Title        string `validate:"max=255"`
	Description  string `validate:"max=2000"`
	BuildingID   int    `validate:"gt=0"`
	DocumentType string `validate:"doctype"`
}

var uploadMessages = map[string]map[string]string{
	"Size": {
		"gt":  "File is required",
		"lte": fmt.Sprintf("File size must not exceed %dMB", models.MaxFileSizeMB),
	},
	"Title":        {"max": "Document title must not exceed 255 characters"},
	"Description":  {"max": "Description must not exceed 2000 characters"},
	"BuildingID":   {"gt": "Building is required"},
	"DocumentType": {"doctype": "Invalid document type"},
}

var uploadFields = map[string]string{
	"Size":         "File",
	"Title":        "Title",
	"Description":  "Description",
	"BuildingID":   "BuildingID",
	"DocumentType": "DocumentType",
}

// ValidateUpload applies the size limit, the extension allow-list and the metadata limits
func ValidateUpload(u models.DocumentUpload) error {
	verr := &Error{}
	if strings.TrimSpace(u.FileName) == "" {
		verr.add("File", "File is required")
	} else {
		ext := models.FileExtension(u.FileName)
		if err := validate.Var(ext, "oneof="+strings.Join(models.AllowedFileExtensions, " ")); err != nil {
			verr.add("File", fmt.Sprintf("File type %s is not allowed. Allowed types: %s",
				ext, strings.Join(models.AllowedFileExtensions, ", ")))
		}
	}

	rules := uploadRules{
		Size:         u.Size(),
		Title:        strings.TrimSpace(u.Title),
		Description:  u.Description,
		BuildingID:   u.BuildingID,
		DocumentType: string(u.DocumentType),
	}
	if err := validate.Struct(rules); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			return err
		}
		for _, fe := range fes {
			verr.add(uploadFields[fe.Field()], uploadMessages[fe.Field()][fe.Tag()])
		}
	}
	return verr.orNil()
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
