// Package store provides registration application persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"eventhub/internal/application/models"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

// InMemory keeps applications in a map guarded by one mutex. It enforces the
// same one-live-application rule the Postgres store gets from its partial
// unique index.
type InMemory struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]*models.Application
	seq  int64
}

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[id.ApplicationID]*models.Application)}
}

// Create assigns an ID and stores the application. Returns
// sentinel.ErrAlreadyUsed when the applicant already has a live (pending or
// approved) application for the event.
func (s *InMemory) Create(_ context.Context, app *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.apps {
		if existing.EventID == app.EventID && existing.UserID == app.UserID && existing.Status.Live() {
			return nil, sentinel.ErrAlreadyUsed
		}
	}

	s.seq++
	stored := app.Clone()
	stored.ID = id.ApplicationID(s.seq)
	s.apps[stored.ID] = stored
	return stored.Clone(), nil
}

// Get returns a copy of the application.
func (s *InMemory) Get(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

// ListByEvent returns the event's applications, newest first.
func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Application, error) {
	return s.list(func(a *models.Application) bool { return a.EventID == eventID })
}

// ListByApplicant returns the user's applications, newest first.
func (s *InMemory) ListByApplicant(_ context.Context, userID id.UserID) ([]*models.Application, error) {
	return s.list(func(a *models.Application) bool { return a.UserID == userID })
}

func (s *InMemory) list(match func(*models.Application) bool) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Application
	for _, app := range s.apps {
		if match(app) {
			matched = append(matched, app.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ApplicationDate.Equal(matched[j].ApplicationDate) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].ApplicationDate.After(matched[j].ApplicationDate)
	})
	return matched, nil
}

// Execute loads the application, applies fn to a copy under the write lock,
// and stores the result. A failing fn leaves the stored application
// untouched.
func (s *InMemory) Execute(_ context.Context, appID id.ApplicationID, fn func(*models.Application) error) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	updated := app.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.apps[appID] = updated
	return updated.Clone(), nil
}
