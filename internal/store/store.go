// store.go
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

package store

import (
	"context"
	"sync"

	"github.com/localnerve/opsregistry/internal/logging"
	"github.com/localnerve/opsregistry/internal/models"
	"github.com/localnerve/opsregistry/internal/services"
	"github.com/localnerve/opsregistry/internal/validation"
	"github.com/sirupsen/logrus"
)

// Provider yields the data service the store talks to
type Provider func(ctx context.Context) (services.DataService, error)

// Store runs registry actions against a data service and keeps the resulting state
type Store struct {
	mu        sync.Mutex
	state     State
	provider  Provider
	svc       services.DataService
	actor     *models.Person
	loadGen   uint64
	selectGen uint64
	subs      map[int]func(State)
	nextSub   int
}

// Option configures a Store
type Option func(*Store)

// WithStoreActor attributes every write made through the store to p
func WithStoreActor(p models.Person) Option {
	return func(s *Store) {
		s.actor = &p
	}
}

// New creates a store. Nothing is loaded until Initialize.
func New(provider Provider, opts ...Option) *Store {
	s := &Store{
		state:    InitialState(),
		provider: provider,
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every transition.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies a to the state and notifies subscribers
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	snapshot := s.state.Clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Initialize obtains the data service and loads the buildings
func (s *Store) Initialize(ctx context.Context) error {
	svc, err := s.provider(ctx)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to initialize data service")
		s.Dispatch(ErrorRaised{Message: models.MsgInitError})
		return err
	}
	s.mu.Lock()
	s.svc = svc
	s.mu.Unlock()

	return s.LoadBuildings(ctx)
}

// LoadBuildings fetches every building, including soft-deleted ones
func (s *Store) LoadBuildings(ctx context.Context) error {
	svc, err := s.service()
	if err != nil {
		return err
	}
	gen := s.nextLoad()
	s.Dispatch(BuildingsLoadStarted{Gen: gen})

	buildings, err := svc.GetBuildings(s.ctx(ctx), true)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to load buildings")
		s.Dispatch(BuildingsLoadFailed{Gen: gen, Message: models.MsgLoadError})
		return err
	}
	s.Dispatch(BuildingsLoaded{Gen: gen, Buildings: buildings})
	return nil
}

// SelectBuilding makes b the selection and loads its documents. A nil b clears the selection.
func (s *Store) SelectBuilding(ctx context.Context, b *models.Building) error {
	gen := s.nextSelect()
	if b == nil {
		s.Dispatch(SelectionChanged{Gen: gen})
		return nil
	}
	svc, err := s.service()
	if err != nil {
		return err
	}
	s.Dispatch(SelectionChanged{Gen: gen, Building: b})

	docs, err := svc.GetDocumentsByBuilding(s.ctx(ctx), b.ID)
	if err != nil {
		logging.WithFields(logrus.Fields{"buildingId": b.ID}).WithError(err).Error("Failed to load documents")
		s.Dispatch(DocumentsLoadFailed{Gen: gen, Message: models.MsgDocumentsError})
		return err
	}
	s.Dispatch(DocumentsLoaded{Gen: gen, Documents: docs})
	return nil
}

// AddBuilding validates and creates a building, then selects it
func (s *Store) AddBuilding(ctx context.Context, in models.BuildingInput) (*models.Building, error) {
	if err := validation.ValidateBuildingCreate(in); err != nil {
		s.Dispatch(ErrorRaised{Message: validation.Message(err, models.MsgSaveError)})
		return nil, err
	}
	svc, err := s.service()
	if err != nil {
		return nil, err
	}
	s.Dispatch(SaveStarted{})

	created, err := svc.CreateBuilding(s.ctx(ctx), in)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to create building")
		s.Dispatch(SaveFailed{Message: models.MsgSaveError})
		return nil, err
	}
	s.Dispatch(BuildingCreated{Building: *created})

	if err := s.SelectBuilding(ctx, created); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateBuilding validates the present fields and saves them
func (s *Store) UpdateBuilding(ctx context.Context, id int, in models.BuildingInput) (*models.Building, error) {
	if err := validation.ValidateBuildingUpdate(in); err != nil {
		s.Dispatch(ErrorRaised{Message: validation.Message(err, models.MsgSaveError)})
		return nil, err
	}
	svc, err := s.service()
	if err != nil {
		return nil, err
	}
	s.Dispatch(SaveStarted{})

	updated, err := svc.UpdateBuilding(s.ctx(ctx), id, in)
	if err != nil {
		logging.WithFields(logrus.Fields{"id": id}).WithError(err).Error("Failed to update building")
		s.Dispatch(SaveFailed{Message: models.MsgSaveError})
		return nil, err
	}
	s.Dispatch(BuildingUpdated{Building: *updated})
	return updated, nil
}

// DeleteBuilding soft deletes a building, reloads the list and clears the selection
func (s *Store) DeleteBuilding(ctx context.Context, id int) error {
	svc, err := s.service()
	if err != nil {
		return err
	}
	s.Dispatch(DeleteStarted{})

	if err := svc.DeleteBuilding(s.ctx(ctx), id, true); err != nil {
		logging.WithFields(logrus.Fields{"id": id}).WithError(err).Error("Failed to delete building")
		s.Dispatch(DeleteFailed{Message: models.MsgDeleteError})
		return err
	}

	// a failed reload leaves its own error in the state
	_ = s.LoadBuildings(ctx)
	s.Dispatch(DeleteSucceeded{SelectGen: s.nextSelect()})
	return nil
}

// SetSearchQuery filters the building list
func (s *Store) SetSearchQuery(q string) {
	s.Dispatch(SearchQuerySet{Query: q})
}

// SetShowDeleted toggles soft-deleted buildings in the filtered list
func (s *Store) SetShowDeleted(show bool) {
	s.Dispatch(ShowDeletedSet{Show: show})
}

// UploadDocument validates and uploads a file, tracking progress in the state
func (s *Store) UploadDocument(ctx context.Context, upload models.DocumentUpload) (*models.Document, error) {
	if err := validation.ValidateUpload(upload); err != nil {
		s.Dispatch(ErrorRaised{Message: validation.Message(err, models.MsgUploadError)})
		return nil, err
	}
	svc, err := s.service()
	if err != nil {
		return nil, err
	}
	s.Dispatch(UploadStarted{})

	doc, err := svc.UploadDocument(s.ctx(ctx), upload, func(p int) {
		s.Dispatch(UploadProgressed{Progress: p})
	})
	if err != nil {
		logging.WithFields(logrus.Fields{"fileName": upload.FileName}).WithError(err).Error("Failed to upload document")
		s.Dispatch(UploadFailed{Message: models.MsgUploadError})
		return nil, err
	}
	s.Dispatch(UploadSucceeded{Document: *doc})
	return doc, nil
}

// DownloadDocument returns a document's file content
func (s *Store) DownloadDocument(ctx context.Context, id int) (*models.FileContent, error) {
	svc, err := s.service()
	if err != nil {
		return nil, err
	}
	content, err := svc.DownloadDocument(s.ctx(ctx), id)
	if err != nil {
		logging.WithFields(logrus.Fields{"id": id}).WithError(err).Error("Failed to download document")
		s.Dispatch(ErrorRaised{Message: models.MsgDownloadError})
		return nil, err
	}
	return content, nil
}

// DeleteDocument marks a document deleted and drops it from the list
func (s *Store) DeleteDocument(ctx context.Context, id int) error {
	svc, err := s.service()
	if err != nil {
		return err
	}
	s.Dispatch(DocumentRemoveStarted{})

	if err := svc.DeleteDocument(s.ctx(ctx), id); err != nil {
		logging.WithFields(logrus.Fields{"id": id}).WithError(err).Error("Failed to delete document")
		s.Dispatch(DocumentRemoveFailed{Message: models.MsgDeleteDocError})
		return err
	}
	s.Dispatch(DocumentRemoved{ID: id})
	return nil
}

func (s *Store) SetActiveTab(tab models.Tab) { s.Dispatch(ActiveTabSet{Tab: tab}) }

func (s *Store) OpenAddDialog() { s.Dispatch(AddDialogOpened{}) }

func (s *Store) OpenEditDialog(b models.Building) { s.Dispatch(EditDialogOpened{Building: b}) }

func (s *Store) CloseAddEditDialog() { s.Dispatch(AddEditDialogClosed{}) }

func (s *Store) OpenDeleteDialog(b models.Building) { s.Dispatch(DeleteDialogOpened{Building: b}) }

func (s *Store) CloseDeleteDialog() { s.Dispatch(DeleteDialogClosed{}) }

func (s *Store) OpenUploadDialog() { s.Dispatch(UploadDialogOpened{}) }

func (s *Store) CloseUploadDialog() { s.Dispatch(UploadDialogClosed{}) }

// ClearError dismisses the error banner
func (s *Store) ClearError() { s.Dispatch(ErrorCleared{}) }

func (s *Store) service() (services.DataService, error) {
	s.mu.Lock()
	svc := s.svc
	s.mu.Unlock()
	if svc == nil {
		s.Dispatch(ErrorRaised{Message: models.MsgNotInitialized})
		return nil, services.ErrNotInitialized
	}
	return svc, nil
}

func (s *Store) ctx(ctx context.Context) context.Context {
	if s.actor == nil {
		return ctx
	}
	return services.WithActor(ctx, *s.actor)
}

func (s *Store) nextLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGen++
	return s.loadGen
}

func (s *Store) nextSelect() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectGen++
	return s.selectGen
}
