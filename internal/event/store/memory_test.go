package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventhub/internal/event/models"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
	"eventhub/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	now   time.Time
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *InMemorySuite) newEvent(title string) *models.Event {
	schedule, err := models.NewSchedule(s.now.Add(48*time.Hour), s.now.Add(50*time.Hour), nil)
	s.Require().NoError(err)
	event, err := models.NewEvent(id.UserID(1), title, id.CategoryID(1), schedule, s.now)
	s.Require().NoError(err)
	return event
}

func (s *InMemorySuite) TestCreateAssignsSequentialIDs() {
	ctx := context.Background()

	first, err := s.store.Create(ctx, s.newEvent("First"))
	s.Require().NoError(err)
	second, err := s.store.Create(ctx, s.newEvent("Second"))
	s.Require().NoError(err)

	s.Equal(id.EventID(1), first.ID)
	s.Equal(id.EventID(2), second.ID)
}

func (s *InMemorySuite) TestGetReturnsIsolatedCopy() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newEvent("First"))
	s.Require().NoError(err)

	got, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	got.Title = "mutated"

	again, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("First", again.Title)
}

func (s *InMemorySuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(context.Background(), id.EventID(404))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestExecuteAppliesMutation() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newEvent("First"))
	s.Require().NoError(err)

	updated, err := s.store.Execute(ctx, created.ID, func(e *models.Event) error {
		e.Publish(s.now)
		return nil
	})
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, updated.Status)

	got, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, got.Status)
}

func (s *InMemorySuite) TestExecuteFailureLeavesEventUntouched() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newEvent("First"))
	s.Require().NoError(err)

	boom := errors.New("boom")
	_, err = s.store.Execute(ctx, created.ID, func(e *models.Event) error {
		e.Publish(s.now)
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, got.Status)
}

func (s *InMemorySuite) TestExecuteSerializesCapacity() {
	ctx := context.Background()
	event := s.newEvent("Limited")
	s.Require().NoError(event.SetMaxParticipants(5, s.now))
	created, err := s.store.Create(ctx, event)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, created.ID, func(e *models.Event) error {
				return e.ReserveSlot(s.now)
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, exceeded int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeCapacityExceeded):
			exceeded++
		default:
			s.FailNow("unexpected error", err)
		}
	}
	s.Equal(5, succeeded)
	s.Equal(15, exceeded)

	got, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(5, got.Capacity.Current)
}

func (s *InMemorySuite) TestListFiltersAndPaginates() {
	ctx := context.Background()
	for i, title := range []string{"Alpha", "Beta", "Gamma"} {
		event := s.newEvent(title)
		event.CreatedAt = s.now.Add(time.Duration(i) * time.Minute)
		_, err := s.store.Create(ctx, event)
		s.Require().NoError(err)
	}
	_, err := s.store.Execute(ctx, id.EventID(2), func(e *models.Event) error {
		e.Publish(s.now)
		return nil
	})
	s.Require().NoError(err)

	published, err := s.store.List(ctx, models.Filter{Status: models.StatusPublished})
	s.Require().NoError(err)
	s.Len(published, 1)
	s.Equal("Beta", published[0].Title)

	all, err := s.store.List(ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("Gamma", all[0].Title, "newest first")

	page, err := s.store.List(ctx, models.Filter{Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Len(page, 1)
	s.Equal("Beta", page[0].Title)
}

func (s *InMemorySuite) TestIncrementViews() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newEvent("First"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.IncrementViews(ctx, created.ID))
	s.Require().NoError(s.store.IncrementViews(ctx, created.ID))

	got, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), got.ViewsCount)

	s.ErrorIs(s.store.IncrementViews(ctx, id.EventID(404)), sentinel.ErrNotFound)
}
