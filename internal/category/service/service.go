// Package service orchestrates category management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"eventhub/internal/audit"
	"eventhub/internal/category/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/requestcontext"
)

// Store is the category persistence contract.
type Store interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Get(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Category, error)
	Execute(ctx context.Context, categoryID id.CategoryID, fn func(*models.Category) error) (*models.Category, error)
}

// Service orchestrates category management.
type Service struct {
	store  Store
	logger *slog.Logger
	audit  audit.Recorder
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(s *Service) { s.audit = recorder }
}

// New constructs a Service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("category store is required")
	}
	s := &Service{store: store, logger: slog.Default(), audit: audit.Noop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create adds a new active category.
func (s *Service) Create(ctx context.Context, name string) (*models.Category, error) {
	category, err := models.NewCategory(strings.TrimSpace(name), requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, category)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "category name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create category")
	}

	s.logger.InfoContext(ctx, "category created",
		"category_id", created.ID, "name", created.Name,
		"request_id", requestcontext.RequestID(ctx))
	s.audit.Record(ctx, audit.ActionCategoryCreated, audit.EntityCategory, int64(created.ID))
	return created, nil
}

// Get loads a single category.
func (s *Service) Get(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	category, err := s.store.Get(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load category")
	}
	return category, nil
}

// List returns categories, optionally only the active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*models.Category, error) {
	categories, err := s.store.List(ctx, activeOnly)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return categories, nil
}

// Activate makes the category available for new events.
func (s *Service) Activate(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	return s.execute(ctx, categoryID, func(category *models.Category) error {
		category.Activate(requestcontext.Now(ctx))
		return nil
	})
}

// Deactivate hides the category from new events.
func (s *Service) Deactivate(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	return s.execute(ctx, categoryID, func(category *models.Category) error {
		category.Deactivate(requestcontext.Now(ctx))
		return nil
	})
}

// UpdateAppearance sets the category's display attributes.
func (s *Service) UpdateAppearance(ctx context.Context, categoryID id.CategoryID, description, color, icon string, sortOrder int) (*models.Category, error) {
	return s.execute(ctx, categoryID, func(category *models.Category) error {
		return category.UpdateAppearance(description, color, icon, sortOrder, requestcontext.Now(ctx))
	})
}

func (s *Service) execute(ctx context.Context, categoryID id.CategoryID, fn func(*models.Category) error) (*models.Category, error) {
	category, err := s.store.Execute(ctx, categoryID, fn)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "category not found")
		}
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update category")
	}
	s.audit.Record(ctx, audit.ActionCategoryUpdated, audit.EntityCategory, int64(category.ID))
	return category, nil
}
