package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "eventhub/pkg/domain-errors"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestNewCategory(t *testing.T) {
	t.Run("valid name yields active category", func(t *testing.T) {
		c, err := NewCategory("Environment", testNow)
		require.NoError(t, err)
		assert.True(t, c.IsActive)
		assert.Equal(t, "Environment", c.Name)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		_, err := NewCategory("  ", testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("overlong name is rejected", func(t *testing.T) {
		_, err := NewCategory(strings.Repeat("x", 101), testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestCategoryActivation(t *testing.T) {
	c, err := NewCategory("Environment", testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)

	c.Activate(later)
	assert.Equal(t, testNow, c.UpdatedAt, "activating an active category changes nothing")

	c.Deactivate(later)
	assert.False(t, c.IsActive)
	assert.Equal(t, later, c.UpdatedAt)

	c.Deactivate(later.Add(time.Hour))
	assert.Equal(t, later, c.UpdatedAt, "deactivating an inactive category changes nothing")

	c.Activate(later.Add(time.Hour))
	assert.True(t, c.IsActive)
}

func TestCategoryUpdateAppearance(t *testing.T) {
	c, err := NewCategory("Environment", testNow)
	require.NoError(t, err)

	t.Run("valid color is accepted", func(t *testing.T) {
		require.NoError(t, c.UpdateAppearance("Nature events", "#00AA77", "leaf", 3, testNow))
		assert.Equal(t, "#00AA77", c.Color)
		assert.Equal(t, 3, c.SortOrder)
	})

	t.Run("empty color is accepted", func(t *testing.T) {
		assert.NoError(t, c.UpdateAppearance("", "", "", 0, testNow))
	})

	t.Run("malformed colors are rejected", func(t *testing.T) {
		for _, color := range []string{"00AA77", "#00AA7", "#00AA77F", "#00GG77", "red"} {
			err := c.UpdateAppearance("", color, "", 0, testNow)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "color %q", color)
		}
	})
}
