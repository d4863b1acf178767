package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

const maxNameLength = 100

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category groups events for browsing. Names are unique case-insensitively;
// the persistence layer enforces that.
type Category struct {
	ID          id.CategoryID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Color       string        `json:"color,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	IsActive    bool          `json:"is_active"`
	SortOrder   int           `json:"sort_order"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewCategory constructs an active category.
func NewCategory(name string, now time.Time) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "category name cannot be blank")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "category name must be 100 characters or less")
	}
	return &Category{
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Activate makes the category available for new events. Idempotent.
func (c *Category) Activate(now time.Time) {
	if c.IsActive {
		return
	}
	c.IsActive = true
	c.UpdatedAt = now
}

// Deactivate hides the category from new events. Existing events keep their
// category reference. Idempotent.
func (c *Category) Deactivate(now time.Time) {
	if !c.IsActive {
		return
	}
	c.IsActive = false
	c.UpdatedAt = now
}

// UpdateAppearance sets the display attributes. Color, when set, must be a
// #RRGGBB hex value.
func (c *Category) UpdateAppearance(description, color, icon string, sortOrder int, now time.Time) error {
	if color != "" && !colorPattern.MatchString(color) {
		return dErrors.New(dErrors.CodeValidation, "category color must be a #RRGGBB hex value")
	}
	c.Description = description
	c.Color = color
	c.Icon = icon
	c.SortOrder = sortOrder
	c.UpdatedAt = now
	return nil
}

// Clone returns a copy for memory stores.
func (c *Category) Clone() *Category {
	clone := *c
	return &clone
}
