package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "eventhub/pkg/domain-errors"
)

func TestParseID_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-7"},
		{"float", "1.5"},
		{"trailing garbage", "42x"},
		{"overflow", "92233720368547758080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestParseID_AcceptsPositiveIntegers(t *testing.T) {
	id, err := ParseEventID("42")
	require.NoError(t, err)
	assert.Equal(t, EventID(42), id)
	assert.True(t, id.Valid())
	assert.Equal(t, "42", id.String())
}

func TestZeroValueIsInvalid(t *testing.T) {
	assert.False(t, EventID(0).Valid())
	assert.False(t, ApplicationID(0).Valid())
	assert.False(t, CategoryID(0).Valid())
	assert.False(t, UserID(0).Valid())
	assert.False(t, UserID(-1).Valid())
}
