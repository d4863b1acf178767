// Package store provides category persistence.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"eventhub/internal/category/models"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
)

// InMemory keeps categories in a map guarded by one mutex, enforcing the
// case-insensitive name uniqueness the Postgres store gets from its index.
type InMemory struct {
	mu         sync.RWMutex
	categories map[id.CategoryID]*models.Category
	seq        int64
}

func NewInMemory() *InMemory {
	return &InMemory{categories: make(map[id.CategoryID]*models.Category)}
}

// Create assigns an ID and stores the category. Returns
// sentinel.ErrAlreadyUsed on a duplicate name.
func (s *InMemory) Create(_ context.Context, category *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, category.Name) {
			return nil, sentinel.ErrAlreadyUsed
		}
	}

	s.seq++
	stored := category.Clone()
	stored.ID = id.CategoryID(s.seq)
	s.categories[stored.ID] = stored
	return stored.Clone(), nil
}

// Get returns a copy of the category.
func (s *InMemory) Get(_ context.Context, categoryID id.CategoryID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[categoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return category.Clone(), nil
}

// List returns categories ordered by sort order, then name. With activeOnly
// set, inactive categories are skipped.
func (s *InMemory) List(_ context.Context, activeOnly bool) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Category
	for _, category := range s.categories {
		if activeOnly && !category.IsActive {
			continue
		}
		matched = append(matched, category.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SortOrder != matched[j].SortOrder {
			return matched[i].SortOrder < matched[j].SortOrder
		}
		return matched[i].Name < matched[j].Name
	})
	return matched, nil
}

// Execute loads the category, applies fn to a copy under the write lock, and
// stores the result.
func (s *InMemory) Execute(_ context.Context, categoryID id.CategoryID, fn func(*models.Category) error) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, ok := s.categories[categoryID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	updated := category.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	s.categories[categoryID] = updated
	return updated.Clone(), nil
}
