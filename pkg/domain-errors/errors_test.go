package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode_WalksWrappedChains(t *testing.T) {
	base := New(CodeCapacityExceeded, "event has no available slots")
	wrapped := fmt.Errorf("approve application: %w", base)

	assert.True(t, HasCode(wrapped, CodeCapacityExceeded))
	assert.False(t, HasCode(wrapped, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeCapacityExceeded))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load event")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "failed to load event", MessageOf(err))
	assert.Equal(t, "failed to load event: connection refused", err.Error())
}

func TestCodeOf_DefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("unclassified")))
}
