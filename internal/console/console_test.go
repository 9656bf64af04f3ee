// console_test.go
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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	m := services.NewMockService(services.WithLatency(0))
	s := store.New(func(ctx context.Context) (services.DataService, error) {
		return m, m.Initialize(ctx)
	}, store.WithStoreActor(models.Person{DisplayName: "Console User"}))
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func run(t *testing.T, s *store.Store, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	c := New(s, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, WithoutPrompt())
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsoleSession(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "survey.pdf")
	dst := filepath.Join(dir, "copy.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 roof"), 0o600))

	s := newTestStore(t)
	out := run(t, s,
		"search gas",
		"list",
		"search",
		"deleted on",
		"select 1",
		"docs",
		"add",
		"Dockland Works",
		"1 Grand Canal Sq, Dublin 2",
		"1999",
		"42000",
		"",
		"edit",
		"Dockland Works II",
		"", "", "", "",
		"upload "+src,
		"Report",
		"",
		"2025-02-01",
		"Roof survey",
		"download 4 "+dst,
		"rmdoc 4",
		"delete",
		"y",
		"select 99",
		"bogus",
		"exit",
	)

	assert.Contains(t, out, "The Gasworks")
	assert.Contains(t, out, "Beacon Court (Deleted) (deleted)")
	assert.Contains(t, out, "Maintenance Contract 2024")
	assert.Contains(t, out, models.MsgSaveSuccess+" - id 7")
	assert.Contains(t, out, "uploading 100%")
	assert.Contains(t, out, models.MsgUploadSuccess+" - id 4")
	assert.Contains(t, out, "Document 4 deleted")
	assert.Contains(t, out, models.MsgDeleteSuccess)
	assert.Contains(t, out, "No building with id 99")
	assert.Contains(t, out, "Unknown command: bogus")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"))

	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 roof", string(copied))

	st := s.State()
	assert.Nil(t, st.SelectedBuilding)
	assert.Empty(t, st.Error)
	var renamed *models.Building
	for i := range st.Buildings {
		if st.Buildings[i].ID == 7 {
			renamed = &st.Buildings[i]
		}
	}
	require.NotNil(t, renamed)
	assert.Equal(t, "Dockland Works II", renamed.PropertyName)
	assert.True(t, renamed.Deleted)
	assert.Equal(t, "Console User", renamed.Editor.DisplayName)
}

func TestConsoleFiltersBeforeListing(t *testing.T) {
	out := run(t, newTestStore(t), "search clarence", "list", "exit")
	assert.Contains(t, out, "Clarence House")
	assert.NotContains(t, out, "The Gasworks")
}

func TestConsoleErrorBanner(t *testing.T) {
	s := newTestStore(t)
	out := run(t, s,
		"add",
		"", "Somewhere", "1990", "100", "",
		"show",
		"dismiss",
		"cancel",
	)

	assert.Contains(t, out, "! Property name is required (dismiss to clear)")
	assert.Contains(t, out, models.MsgSelectBuilding)
	st := s.State()
	assert.Empty(t, st.Error)
	assert.False(t, st.IsAddEditDialogOpen)
}

func TestConsoleDeclinedDelete(t *testing.T) {
	s := newTestStore(t)
	run(t, s, "select 2", "delete", "n")

	st := s.State()
	require.NotNil(t, st.SelectedBuilding)
	assert.False(t, st.SelectedBuilding.Deleted)
	assert.False(t, st.IsDeleteDialogOpen)
}

func TestConsoleUsage(t *testing.T) {
	out := run(t, newTestStore(t), "select", "deleted maybe", "tab sideways", "download 1", "rmdoc x", "upload")
	assert.Contains(t, out, "Usage: select <id>")
	assert.Contains(t, out, "Usage: deleted on|off")
	assert.Contains(t, out, "Usage: tab details|documents")
	assert.Contains(t, out, "Usage: download <docId> <path>")
	assert.Contains(t, out, "Usage: rmdoc <docId>")
	assert.Contains(t, out, "Usage: upload <path>")
}

func TestChangedKeepsOnlyEdits(t *testing.T) {
	b := models.Building{ID: 2, PropertyName: "Clarence House", Address: "7 Clarence St", YearBuilt: 1890, AreaSquareFootage: 100}
	in := models.InputFromBuilding(b)
	name := "Clarence Hotel"
	in.PropertyName = &name

	got := changed(b, in)
	require.NotNil(t, got.PropertyName)
	assert.Equal(t, name, *got.PropertyName)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.YearBuilt)
	assert.Nil(t, got.AreaSquareFootage)
	assert.Nil(t, got.CommissioningDate)
}
