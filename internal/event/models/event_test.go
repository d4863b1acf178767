package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

var (
	testNow   = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	testStart = testNow.Add(48 * time.Hour)
	testEnd   = testStart.Add(2 * time.Hour)
)

func testSchedule(t *testing.T) Schedule {
	t.Helper()
	s, err := NewSchedule(testStart, testEnd, nil)
	require.NoError(t, err)
	return s
}

func testEvent(t *testing.T) *Event {
	t.Helper()
	e, err := NewEvent(id.UserID(7), "Beach cleanup", id.CategoryID(1), testSchedule(t), testNow)
	require.NoError(t, err)
	return e
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func TestNewEvent(t *testing.T) {
	t.Run("valid input returns draft event", func(t *testing.T) {
		e := testEvent(t)
		assert.Equal(t, StatusDraft, e.Status)
		assert.Equal(t, ModeOnline, e.Mode)
		assert.Equal(t, 0, e.Capacity.Current)
		assert.Nil(t, e.Capacity.Max)
		assert.Nil(t, e.PublishedAt)
		assert.Equal(t, testNow, e.CreatedAt)
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		_, err := NewEvent(id.UserID(7), "   ", id.CategoryID(1), testSchedule(t), testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("title over 200 characters is rejected", func(t *testing.T) {
		long := make([]rune, 201)
		for i := range long {
			long[i] = 'x'
		}
		_, err := NewEvent(id.UserID(7), string(long), id.CategoryID(1), testSchedule(t), testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("missing author is rejected", func(t *testing.T) {
		_, err := NewEvent(0, "Beach cleanup", id.CategoryID(1), testSchedule(t), testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("invalid schedule is rejected", func(t *testing.T) {
		bad := Schedule{Start: testEnd, End: testStart}
		_, err := NewEvent(id.UserID(7), "Beach cleanup", id.CategoryID(1), bad, testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Lifecycle Transition Tests
// =============================================================================

func TestEventLifecycle(t *testing.T) {
	t.Run("publish from draft stamps PublishedAt", func(t *testing.T) {
		e := testEvent(t)
		later := testNow.Add(time.Hour)

		assert.True(t, e.Publish(later))
		assert.Equal(t, StatusPublished, e.Status)
		require.NotNil(t, e.PublishedAt)
		assert.Equal(t, later, *e.PublishedAt)
	})

	t.Run("publish outside draft is a silent no-op", func(t *testing.T) {
		e := testEvent(t)
		e.Publish(testNow)
		e.Cancel(testNow)

		assert.False(t, e.Publish(testNow.Add(time.Hour)))
		assert.Equal(t, StatusCancelled, e.Status)
	})

	t.Run("cancel from draft and from published", func(t *testing.T) {
		draft := testEvent(t)
		assert.True(t, draft.Cancel(testNow))
		assert.Equal(t, StatusCancelled, draft.Status)

		published := testEvent(t)
		published.Publish(testNow)
		assert.True(t, published.Cancel(testNow))
		assert.Equal(t, StatusCancelled, published.Status)
	})

	t.Run("cancel of completed event is a silent no-op", func(t *testing.T) {
		e := testEvent(t)
		e.Complete(testNow)
		assert.False(t, e.Cancel(testNow))
		assert.Equal(t, StatusCompleted, e.Status)
	})

	t.Run("complete is allowed from any state", func(t *testing.T) {
		for _, from := range []Status{StatusDraft, StatusPublished, StatusCancelled} {
			e := testEvent(t)
			e.Status = from
			assert.True(t, e.Complete(testNow), "from %s", from)
			assert.Equal(t, StatusCompleted, e.Status)
		}

		e := testEvent(t)
		e.Complete(testNow)
		assert.False(t, e.Complete(testNow))
	})
}

// =============================================================================
// Registration Window Tests
// =============================================================================

func TestEventCanRegister(t *testing.T) {
	t.Run("draft never accepts registration", func(t *testing.T) {
		e := testEvent(t)
		assert.False(t, e.CanRegister(testNow))
	})

	t.Run("published accepts registration before start", func(t *testing.T) {
		e := testEvent(t)
		e.Publish(testNow)
		assert.True(t, e.CanRegister(testNow))
		assert.True(t, e.CanRegister(testStart.Add(-time.Second)))
	})

	t.Run("registration closes once the event has started when no deadline is set", func(t *testing.T) {
		e := testEvent(t)
		e.Publish(testNow)
		assert.True(t, e.CanRegister(testStart), "still open at the start instant")
		assert.False(t, e.CanRegister(testStart.Add(time.Second)))
		assert.False(t, e.CanRegister(testStart.Add(time.Hour)))
	})

	t.Run("explicit deadline closes registration earlier", func(t *testing.T) {
		deadline := testNow.Add(24 * time.Hour)
		schedule, err := NewSchedule(testStart, testEnd, &deadline)
		require.NoError(t, err)

		e, err := NewEvent(id.UserID(7), "Beach cleanup", id.CategoryID(1), schedule, testNow)
		require.NoError(t, err)
		e.Publish(testNow)

		assert.True(t, e.CanRegister(deadline.Add(-time.Second)))
		assert.False(t, e.CanRegister(deadline))
	})

	t.Run("cancelled event never accepts registration", func(t *testing.T) {
		e := testEvent(t)
		e.Publish(testNow)
		e.Cancel(testNow)
		assert.False(t, e.CanRegister(testNow))
	})
}

// =============================================================================
// Slot Accounting Tests
// =============================================================================

func TestEventSlots(t *testing.T) {
	t.Run("reserve fills up to the limit then fails", func(t *testing.T) {
		e := testEvent(t)
		require.NoError(t, e.SetMaxParticipants(2, testNow))

		require.NoError(t, e.ReserveSlot(testNow))
		require.NoError(t, e.ReserveSlot(testNow))
		assert.Equal(t, 2, e.Capacity.Current)

		err := e.ReserveSlot(testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeCapacityExceeded))
		assert.Equal(t, 2, e.Capacity.Current, "failed reserve must not change the count")
	})

	t.Run("release gives a slot back", func(t *testing.T) {
		e := testEvent(t)
		require.NoError(t, e.SetMaxParticipants(1, testNow))
		require.NoError(t, e.ReserveSlot(testNow))
		require.NoError(t, e.ReleaseSlot(testNow))
		assert.Equal(t, 0, e.Capacity.Current)
		require.NoError(t, e.ReserveSlot(testNow))
	})

	t.Run("release below zero is an invariant violation", func(t *testing.T) {
		e := testEvent(t)
		err := e.ReleaseSlot(testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("unlimited capacity always has slots", func(t *testing.T) {
		e := testEvent(t)
		for i := 0; i < 100; i++ {
			require.NoError(t, e.ReserveSlot(testNow))
		}
		assert.NoError(t, e.CanReserveSlot())
	})

	t.Run("limit cannot drop below reserved count", func(t *testing.T) {
		e := testEvent(t)
		require.NoError(t, e.SetMaxParticipants(3, testNow))
		require.NoError(t, e.ReserveSlot(testNow))
		require.NoError(t, e.ReserveSlot(testNow))

		err := e.SetMaxParticipants(1, testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		require.NoError(t, e.SetMaxParticipants(2, testNow))
	})
}

// =============================================================================
// Clone and Filter Tests
// =============================================================================

func TestEventClone(t *testing.T) {
	e := testEvent(t)
	require.NoError(t, e.SetMaxParticipants(5, testNow))
	e.Tags = []string{"outdoors", "community"}
	e.Publish(testNow)

	clone := e.Clone()
	*clone.Capacity.Max = 99
	*clone.PublishedAt = testNow.Add(time.Hour)
	clone.Tags[0] = "changed"

	assert.Equal(t, 5, *e.Capacity.Max)
	assert.Equal(t, testNow, *e.PublishedAt)
	assert.Equal(t, "outdoors", e.Tags[0])
}

func TestFilterMatches(t *testing.T) {
	e := testEvent(t)
	e.Description = "Annual shoreline cleanup"
	e.Publish(testNow)

	assert.True(t, Filter{}.Matches(e))
	assert.True(t, Filter{Status: StatusPublished, CategoryID: id.CategoryID(1)}.Matches(e))
	assert.False(t, Filter{Status: StatusDraft}.Matches(e))
	assert.False(t, Filter{CategoryID: id.CategoryID(2)}.Matches(e))
	assert.False(t, Filter{AuthorID: id.UserID(99)}.Matches(e))
	assert.True(t, Filter{Search: "SHORELINE"}.Matches(e))
	assert.False(t, Filter{Search: "garbage"}.Matches(e))

	featured := true
	assert.False(t, Filter{Featured: &featured}.Matches(e))
	e.IsFeatured = true
	assert.True(t, Filter{Featured: &featured}.Matches(e))

	assert.True(t, Filter{Mode: ModeOnline}.Matches(e))
	assert.False(t, Filter{Mode: ModeOffline}.Matches(e))

	assert.True(t, Filter{UpcomingAfter: &testNow}.Matches(e))
	afterStart := testStart.Add(time.Minute)
	assert.False(t, Filter{UpcomingAfter: &afterStart}.Matches(e))
}
