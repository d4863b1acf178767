//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"eventhub/internal/application/models"
	"eventhub/internal/application/store"
	categoryModels "eventhub/internal/category/models"
	categoryStore "eventhub/internal/category/store"
	eventModels "eventhub/internal/event/models"
	eventStore "eventhub/internal/event/store"
	id "eventhub/pkg/domain"
	"eventhub/pkg/platform/sentinel"
	"eventhub/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	postgres   *containers.PostgresContainer
	store      *store.Postgres
	events     *eventStore.Postgres
	categories *categoryStore.Postgres
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.postgres = containers.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.events = eventStore.NewPostgres(s.postgres.DB)
	s.categories = categoryStore.NewPostgres(s.postgres.DB)
}

func (s *PostgresSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "audit_log", "event_applications", "events", "categories")
	s.Require().NoError(err)
}

func (s *PostgresSuite) publishedEvent() *eventModels.Event {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	category, err := categoryModels.NewCategory("Volunteering "+uuid.NewString(), now)
	s.Require().NoError(err)
	category, err = s.categories.Create(ctx, category)
	s.Require().NoError(err)

	schedule, err := eventModels.NewSchedule(now.Add(48*time.Hour), now.Add(50*time.Hour), nil)
	s.Require().NoError(err)
	event, err := eventModels.NewEvent(7, "Food drive", category.ID, schedule, now)
	s.Require().NoError(err)
	event.Publish(now)

	event, err = s.events.Create(ctx, event)
	s.Require().NoError(err)
	return event
}

func (s *PostgresSuite) apply(event *eventModels.Event, userID id.UserID) *models.Application {
	now := time.Now().UTC().Truncate(time.Microsecond)
	app, err := models.NewApplication(event, userID, map[string]any{"phone": "+4912345"}, "count me in", now)
	s.Require().NoError(err)
	stored, err := s.store.Create(context.Background(), app)
	s.Require().NoError(err)
	return stored
}

// =====================================================================
// One live application per (event, applicant)
// =====================================================================

// TestConcurrentDuplicateApplications verifies that the partial unique index
// lets exactly one of many racing submissions through.
func (s *PostgresSuite) TestConcurrentDuplicateApplications() {
	ctx := context.Background()
	event := s.publishedEvent()
	now := time.Now().UTC()

	const goroutines = 20
	var wg sync.WaitGroup
	var created, conflicted atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := models.NewApplication(event, 42, nil, "", now)
			if err != nil {
				return
			}
			_, err = s.store.Create(ctx, app)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), created.Load(), "exactly one submission should win")
	s.Equal(int32(goroutines-1), conflicted.Load(), "all others should conflict")

	apps, err := s.store.ListByEvent(ctx, event.ID)
	s.Require().NoError(err)
	s.Len(apps, 1)
}

func (s *PostgresSuite) TestCancelledApplicationDoesNotBlockReapply() {
	ctx := context.Background()
	event := s.publishedEvent()
	first := s.apply(event, 42)

	_, err := s.store.Execute(ctx, first.ID, func(app *models.Application) error {
		return app.Cancel(time.Now().UTC())
	})
	s.Require().NoError(err)

	second := s.apply(event, 42)
	s.NotEqual(first.ID, second.ID)
	s.Equal(models.StatusPending, second.Status)
}

func (s *PostgresSuite) TestApprovedApplicationBlocksReapply() {
	ctx := context.Background()
	event := s.publishedEvent()
	app := s.apply(event, 42)

	_, err := s.store.Execute(ctx, app.ID, func(app *models.Application) error {
		return app.Approve(7, time.Now().UTC())
	})
	s.Require().NoError(err)

	dup, err := models.NewApplication(event, 42, nil, "", time.Now().UTC())
	s.Require().NoError(err)
	_, err = s.store.Create(ctx, dup)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

// =====================================================================
// Round trips
// =====================================================================

func (s *PostgresSuite) TestReviewFieldsRoundTrip() {
	ctx := context.Background()
	event := s.publishedEvent()
	app := s.apply(event, 42)

	reviewTime := time.Now().UTC().Truncate(time.Microsecond)
	_, err := s.store.Execute(ctx, app.ID, func(app *models.Application) error {
		return app.Reject(7, "event is full", reviewTime)
	})
	s.Require().NoError(err)

	loaded, err := s.store.Get(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, loaded.Status)
	s.Require().NotNil(loaded.ReviewedBy)
	s.Equal(id.UserID(7), *loaded.ReviewedBy)
	s.Require().NotNil(loaded.ReviewDate)
	s.True(loaded.ReviewDate.Equal(reviewTime))
	s.Equal("event is full", loaded.ReviewComment)
	s.Equal(map[string]any{"phone": "+4912345"}, loaded.ContactInfo)
}

func (s *PostgresSuite) TestListByApplicantNewestFirst() {
	ctx := context.Background()
	first := s.publishedEvent()
	second := s.publishedEvent()
	s.apply(first, 42)
	latest := s.apply(second, 42)
	s.apply(first, 99)

	apps, err := s.store.ListByApplicant(ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Equal(latest.ID, apps[0].ID)
}

func (s *PostgresSuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(context.Background(), 9999)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Execute(context.Background(), 9999, func(*models.Application) error {
		s.Fail("callback must not run for a missing application")
		return nil
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}
