// Package store provides event persistence: an in-memory implementation for
// tests and local runs, a Postgres implementation, and a Redis read cache
// decorator.
package store

import (
	"context"
	"sort"
	"sync"

	"eventhub/internal/event/models"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

// InMemory keeps events in a map guarded by one mutex. Execute runs its
// callback under the write lock, which gives the same validate-and-mutate
// atomicity the Postgres store gets from row locks.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.EventID]*models.Event
	seq    int64
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]*models.Event)}
}

// Create assigns an ID and stores the event.
func (s *InMemory) Create(_ context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := event.Clone()
	stored.ID = id.EventID(s.seq)
	s.events[stored.ID] = stored
	return stored.Clone(), nil
}

// Get returns a copy of the event.
func (s *InMemory) Get(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return event.Clone(), nil
}

// List returns events matching the filter, newest first.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Event
	for _, event := range s.events {
		if filter.Matches(event) {
			matched = append(matched, event.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), nil
}

// Execute loads the event, applies fn to a copy under the write lock, and
// stores the result. A failing fn leaves the stored event untouched.
func (s *InMemory) Execute(_ context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	updated := event.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.events[eventID] = updated
	return updated.Clone(), nil
}

// IncrementViews bumps the view counter without the Execute machinery.
func (s *InMemory) IncrementViews(_ context.Context, eventID id.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return sentinel.ErrNotFound
	}
	event.ViewsCount++
	return nil
}

func paginate(events []*models.Event, limit, offset int) []*models.Event {
	if offset > 0 {
		if offset >= len(events) {
			return nil
		}
		events = events[offset:]
	}
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}
