// commands.go
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

package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/store"
)

func (c *Console) list() {
	st := c.store.State()
	if len(st.FilteredBuildings) == 0 {
		c.println(models.MsgNoBuildings)
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROPERTY\tADDRESS\tBUILT\t")
	for _, b := range st.FilteredBuildings {
		name := b.PropertyName
		if b.Deleted {
			name += " (deleted)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t\n", b.ID, name, models.Truncate(b.Address, 40), b.YearBuilt)
	}
	_ = w.Flush()
}

func (c *Console) showDeleted(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		c.println("Usage: deleted on|off")
		return
	}
	c.store.SetShowDeleted(args[0] == "on")
	c.list()
}

func (c *Console) selectBuilding(ctx context.Context, args []string) {
	id, ok := parseID(args, 0)
	if !ok {
		c.println("Usage: select <id>")
		return
	}
	for _, b := range c.store.State().Buildings {
		if b.ID == id {
			if err := c.store.SelectBuilding(ctx, &b); err == nil {
				c.show()
			}
			return
		}
	}
	c.println("No building with id", id)
}

func (c *Console) selected() (models.Building, bool) {
	st := c.store.State()
	if st.SelectedBuilding == nil {
		c.println(models.MsgSelectBuilding)
		return models.Building{}, false
	}
	return *st.SelectedBuilding, true
}

func (c *Console) show() {
	b, ok := c.selected()
	if !ok {
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Property\t%s\n", b.PropertyName)
	fmt.Fprintf(w, "Address\t%s\n", b.Address)
	fmt.Fprintf(w, "Year built\t%d\n", b.YearBuilt)
	fmt.Fprintf(w, "Area\t%s\n", models.FormatArea(b.AreaSquareFootage))
	if b.CommissioningDate != nil {
		fmt.Fprintf(w, "Commissioned\t%s\n", models.FormatDate(time.Time(*b.CommissioningDate)))
	}
	fmt.Fprintf(w, "Created\t%s by %s\n", models.FormatDate(b.Created), b.Author)
	if b.Editor != nil {
		fmt.Fprintf(w, "Modified\t%s by %s\n", models.FormatDate(b.Modified), b.Editor)
	}
	if b.Deleted {
		fmt.Fprintf(w, "Status\tdeleted\n")
	}
	_ = w.Flush()
}

func (c *Console) docs() {
	if _, ok := c.selected(); !ok {
		return
	}
	c.store.SetActiveTab(models.TabDocuments)
	st := c.store.State()
	if len(st.Documents) == 0 {
		c.println(models.MsgNoDocuments)
		return
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tDATE\tSIZE\t")
	for _, d := range st.Documents {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", d.ID, models.Truncate(d.Title, 40), d.DocumentType,
			models.FormatDate(time.Time(d.DocumentDate)), models.FormatFileSize(d.FileSize))
	}
	_ = w.Flush()
}

func (c *Console) tab(args []string) {
	if len(args) != 1 {
		c.println("Usage: tab details|documents")
		return
	}
	switch t := models.Tab(args[0]); t {
	case models.TabDetails:
		c.store.SetActiveTab(t)
		c.show()
	case models.TabDocuments:
		c.docs()
	default:
		c.println("Usage: tab details|documents")
	}
}

// readBuilding prompts for every building field, offering the values of current
func (c *Console) readBuilding(current models.BuildingInput) (models.BuildingInput, error) {
	var in models.BuildingInput

	name, err := c.ask("Property name", deref(current.PropertyName))
	if err != nil {
		return in, err
	}
	address, err := c.ask("Address", deref(current.Address))
	if err != nil {
		return in, err
	}
	year, err := c.ask("Year built", numberString(current.YearBuilt))
	if err != nil {
		return in, err
	}
	area, err := c.ask("Area (sq ft)", numberString(current.AreaSquareFootage))
	if err != nil {
		return in, err
	}
	commissioned, err := c.ask("Commissioning date (YYYY-MM-DD)", dateString(current.CommissioningDate))
	if err != nil {
		return in, err
	}

	in.PropertyName = &name
	in.Address = &address
	if y, err := strconv.Atoi(year); err == nil {
		in.YearBuilt = &y
	} else if year != "" {
		return in, fmt.Errorf("year built %q is not a number", year)
	}
	if a, err := strconv.ParseFloat(strings.ReplaceAll(area, ",", ""), 64); err == nil {
		in.AreaSquareFootage = &a
	} else if area != "" {
		return in, fmt.Errorf("area %q is not a number", area)
	}
	if in.CommissioningDate, err = parseOptionalDate(commissioned); err != nil {
		return in, fmt.Errorf("commissioning date %q is not YYYY-MM-DD", commissioned)
	}
	return in, nil
}

func (c *Console) add(ctx context.Context) {
	c.store.OpenAddDialog()
	in, err := c.readBuilding(models.BuildingInput{})
	if err != nil {
		c.store.Dispatch(store.ErrorRaised{Message: err.Error()})
		return
	}
	if b, err := c.store.AddBuilding(ctx, in); err == nil {
		c.println(models.MsgSaveSuccess, "- id", b.ID)
	}
}

func (c *Console) edit(ctx context.Context) {
	b, ok := c.selected()
	if !ok {
		return
	}
	c.store.OpenEditDialog(b)
	in, err := c.readBuilding(models.InputFromBuilding(b))
	if err != nil {
		c.store.Dispatch(store.ErrorRaised{Message: err.Error()})
		return
	}
	if _, err := c.store.UpdateBuilding(ctx, b.ID, changed(b, in)); err == nil {
		c.println(models.MsgSaveSuccess)
	}
}

// changed keeps only the fields of in that differ from b
func changed(b models.Building, in models.BuildingInput) models.BuildingInput {
	cur := models.InputFromBuilding(b)
	var out models.BuildingInput
	if deref(in.PropertyName) != deref(cur.PropertyName) {
		out.PropertyName = in.PropertyName
	}
	if deref(in.Address) != deref(cur.Address) {
		out.Address = in.Address
	}
	if deref(in.YearBuilt) != deref(cur.YearBuilt) {
		out.YearBuilt = in.YearBuilt
	}
	if deref(in.AreaSquareFootage) != deref(cur.AreaSquareFootage) {
		out.AreaSquareFootage = in.AreaSquareFootage
	}
	if dateString(in.CommissioningDate) != dateString(cur.CommissioningDate) {
		out.CommissioningDate = in.CommissioningDate
	}
	return out
}

func (c *Console) delete(ctx context.Context) {
	b, ok := c.selected()
	if !ok {
		return
	}
	c.store.OpenDeleteDialog(b)
	if !c.confirm(models.MsgDeleteConfirm) {
		c.store.CloseDeleteDialog()
		return
	}
	if err := c.store.DeleteBuilding(ctx, b.ID); err == nil {
		c.println(models.MsgDeleteSuccess)
	}
}

func (c *Console) upload(ctx context.Context, args []string) {
	if len(args) != 1 {
		c.println("Usage: upload <path>")
		return
	}
	b, ok := c.selected()
	if !ok {
		return
	}
	c.store.OpenUploadDialog()

	data, err := os.ReadFile(args[0])
	if err != nil {
		c.store.Dispatch(store.ErrorRaised{Message: err.Error()})
		return
	}
	fileName := filepath.Base(args[0])

	docType, err := c.ask("Document type (Contract, Invoice, Photo, Report, Other)", string(models.DocumentTypeOther))
	if err != nil {
		return
	}
	title, err := c.ask("Title", fileName)
	if err != nil {
		return
	}
	date, err := c.ask("Document date (YYYY-MM-DD)", time.Now().Format(time.DateOnly))
	if err != nil {
		return
	}
	description, err := c.ask("Description", "")
	if err != nil {
		return
	}
	documentDate, err := time.Parse(time.DateOnly, date)
	if err != nil {
		c.store.Dispatch(store.ErrorRaised{Message: fmt.Sprintf("document date %q is not YYYY-MM-DD", date)})
		return
	}

	last := 0
	unsubscribe := c.store.Subscribe(func(st store.State) {
		if st.UploadProgress > last {
			last = st.UploadProgress
			c.printf("  uploading %d%%\n", last)
		}
	})
	doc, err := c.store.UploadDocument(ctx, models.DocumentUpload{
		FileName:     fileName,
		Data:         data,
		Title:        title,
		BuildingID:   b.ID,
		DocumentType: models.DocumentType(docType),
		DocumentDate: documentDate,
		Description:  description,
	})
	unsubscribe()
	if err == nil {
		c.println(models.MsgUploadSuccess, "- id", doc.ID)
	}
}

func (c *Console) download(ctx context.Context, args []string) {
	id, ok := parseID(args, 0)
	if !ok || len(args) != 2 {
		c.println("Usage: download <docId> <path>")
		return
	}
	content, err := c.store.DownloadDocument(ctx, id)
	if err != nil {
		return
	}
	if err := os.WriteFile(args[1], content.Data, 0o644); err != nil {
		c.store.Dispatch(store.ErrorRaised{Message: err.Error()})
		return
	}
	c.printf("Saved %s (%s) to %s\n", content.FileName, models.FormatFileSize(int64(len(content.Data))), args[1])
}

func (c *Console) removeDocument(ctx context.Context, args []string) {
	id, ok := parseID(args, 0)
	if !ok {
		c.println("Usage: rmdoc <docId>")
		return
	}
	if err := c.store.DeleteDocument(ctx, id); err == nil {
		c.println("Document", id, "deleted")
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func numberString[T int | float64](p *T) string {
	if p == nil {
		return ""
	}
	return fmt.Sprint(*p)
}
