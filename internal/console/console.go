// console.go
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

// Package console is an interactive line client for the registry.
//
// Each command maps onto one store action. The prompt shows the selected
// building, a loading marker and upload progress; the current error is printed
// as a banner above it until dismissed.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/store"
)

const helpText = `Commands:
  load                      reload buildings
  list                      list buildings matching the search
  search <text>             filter by property name or address (blank clears)
  deleted on|off            include soft-deleted buildings
  select <id>               select a building and load its documents
  show                      details of the selected building
  docs                      documents of the selected building
  add | edit | delete       change buildings
  upload <path>             upload a file to the selected building
  download <docId> <path>   save a document to a file
  rmdoc <docId>             delete a document
  tab details|documents     switch the detail view
  cancel                    close open dialogs
  dismiss                   clear the error banner
  exit | quit               leave`

// Console reads commands from in and writes results to out
type Console struct {
	store  *store.Store
	search *store.Debouncer
	in     *bufio.Reader
	out    io.Writer
	prompt bool
}

// Option configures a Console
type Option func(*Console)

// WithoutPrompt suppresses the prompt line, for piped input
func WithoutPrompt() Option {
	return func(c *Console) {
		c.prompt = false
	}
}

// New creates a console over an initialized store
func New(s *store.Store, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		store:  s,
		in:     bufio.NewReader(in),
		out:    out,
		prompt: true,
	}
	c.search = store.NewDebouncer(models.SearchDebounce, s.SetSearchQuery)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes commands until exit, end of input or ctx is done
func (c *Console) Run(ctx context.Context) error {
	defer c.search.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.banner()
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if quit := c.exec(ctx, fields[0], fields[1:]); quit {
			c.println("Bye!")
			return nil
		}
	}
}

func (c *Console) exec(ctx context.Context, cmd string, args []string) bool {
	// a pending search applies before anything reads the list
	if cmd != "search" {
		c.search.Flush()
	}

	switch cmd {
	case "help", "?":
		c.println(helpText)
	case "load":
		_ = c.store.LoadBuildings(ctx)
		c.list()
	case "l", "list":
		c.list()
	case "search":
		c.search.Push(strings.Join(args, " "))
	case "deleted":
		c.showDeleted(args)
	case "select":
		c.selectBuilding(ctx, args)
	case "show":
		c.show()
	case "docs":
		c.docs()
	case "add":
		c.add(ctx)
	case "edit":
		c.edit(ctx)
	case "delete":
		c.delete(ctx)
	case "upload":
		c.upload(ctx, args)
	case "download":
		c.download(ctx, args)
	case "rmdoc":
		c.removeDocument(ctx, args)
	case "tab":
		c.tab(args)
	case "cancel":
		c.store.CloseAddEditDialog()
		c.store.CloseDeleteDialog()
		c.store.CloseUploadDialog()
	case "dismiss":
		c.store.ClearError()
	case "exit", "quit":
		return true
	default:
		c.println("Unknown command:", cmd)
	}
	return false
}

func (c *Console) banner() {
	st := c.store.State()
	if st.Error != "" {
		c.println("!", st.Error, "(dismiss to clear)")
	}
	if !c.prompt {
		return
	}

	var b strings.Builder
	b.WriteString("ops")
	if st.SelectedBuilding != nil {
		fmt.Fprintf(&b, " [%d %s]", st.SelectedBuilding.ID, models.Truncate(st.SelectedBuilding.PropertyName, 24))
	}
	if st.IsLoading {
		b.WriteString(" (loading)")
	}
	if st.UploadProgress > 0 {
		fmt.Fprintf(&b, " upload %d%%", st.UploadProgress)
	}
	b.WriteString(" > ")
	fmt.Fprint(c.out, b.String())
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}
