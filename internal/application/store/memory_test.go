package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventhub/internal/application/models"
	eventModels "eventhub/internal/event/models"
	id "eventhub/pkg/domain"
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

func (s *InMemorySuite) newApplication(eventID id.EventID, userID id.UserID) *models.Application {
	schedule, err := eventModels.NewSchedule(s.now.Add(48*time.Hour), s.now.Add(50*time.Hour), nil)
	s.Require().NoError(err)
	event, err := eventModels.NewEvent(id.UserID(1), "Beach cleanup", id.CategoryID(1), schedule, s.now)
	s.Require().NoError(err)
	event.ID = eventID
	event.Publish(s.now)

	app, err := models.NewApplication(event, userID, nil, "", s.now)
	s.Require().NoError(err)
	return app
}

func (s *InMemorySuite) TestCreateEnforcesOneLiveApplication() {
	ctx := context.Background()

	first, err := s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(42)))
	s.Require().NoError(err)
	s.Equal(id.ApplicationID(1), first.ID)

	_, err = s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(42)))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	// Different event or different user is fine.
	_, err = s.store.Create(ctx, s.newApplication(id.EventID(11), id.UserID(42)))
	s.NoError(err)
	_, err = s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(43)))
	s.NoError(err)
}

func (s *InMemorySuite) TestCancelledApplicationDoesNotBlockReapply() {
	ctx := context.Background()

	first, err := s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(42)))
	s.Require().NoError(err)

	_, err = s.store.Execute(ctx, first.ID, func(a *models.Application) error {
		return a.Cancel(s.now)
	})
	s.Require().NoError(err)

	_, err = s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(42)))
	s.NoError(err)
}

func (s *InMemorySuite) TestExecuteFailureLeavesApplicationUntouched() {
	ctx := context.Background()
	created, err := s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(42)))
	s.Require().NoError(err)

	_, err = s.store.Execute(ctx, created.ID, func(a *models.Application) error {
		s.Require().NoError(a.Approve(id.UserID(7), s.now))
		return sentinel.ErrConflict
	})
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
}

func (s *InMemorySuite) TestListByEventAndApplicant() {
	ctx := context.Background()

	a1, err := s.store.Create(ctx, s.newApplication(id.EventID(10), id.UserID(42)))
	s.Require().NoError(err)

	later := s.newApplication(id.EventID(10), id.UserID(43))
	later.ApplicationDate = s.now.Add(time.Minute)
	a2, err := s.store.Create(ctx, later)
	s.Require().NoError(err)

	_, err = s.store.Create(ctx, s.newApplication(id.EventID(11), id.UserID(42)))
	s.Require().NoError(err)

	byEvent, err := s.store.ListByEvent(ctx, id.EventID(10))
	s.Require().NoError(err)
	s.Len(byEvent, 2)
	s.Equal(a2.ID, byEvent[0].ID, "newest first")
	s.Equal(a1.ID, byEvent[1].ID)

	byUser, err := s.store.ListByApplicant(ctx, id.UserID(42))
	s.Require().NoError(err)
	s.Len(byUser, 2)
}

func (s *InMemorySuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(context.Background(), id.ApplicationID(404))
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Execute(context.Background(), id.ApplicationID(404), func(*models.Application) error { return nil })
	s.ErrorIs(err, sentinel.ErrNotFound)
}
