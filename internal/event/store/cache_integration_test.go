//go:build integration

package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"eventhub/internal/event/models"
	"eventhub/internal/event/store"
	"eventhub/pkg/testutil/containers"
)

type CachedStoreSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	inner  *store.InMemory
	cached *store.Cached
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.GetRedis(s.T())
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.inner = store.NewInMemory()
	s.cached = store.NewCached(s.inner, s.redis.Client, time.Minute, logger)
}

func (s *CachedStoreSuite) createEvent() *models.Event {
	now := time.Now().UTC()
	schedule, err := models.NewSchedule(now.Add(48*time.Hour), now.Add(50*time.Hour), nil)
	s.Require().NoError(err)
	event, err := models.NewEvent(7, "Cached event", 1, schedule, now)
	s.Require().NoError(err)
	stored, err := s.cached.Create(context.Background(), event)
	s.Require().NoError(err)
	return stored
}

// =====================================================================
// Read-through
// =====================================================================

// TestGetServesFromCache verifies the second read comes from Redis: a change
// applied behind the decorator's back is not visible until eviction.
func (s *CachedStoreSuite) TestGetServesFromCache() {
	ctx := context.Background()
	event := s.createEvent()

	first, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, first.Status)

	// Mutate the inner store directly so the cache entry goes stale.
	_, err = s.inner.Execute(ctx, event.ID, func(e *models.Event) error {
		e.Publish(time.Now().UTC())
		return nil
	})
	s.Require().NoError(err)

	stale, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, stale.Status)
}

func (s *CachedStoreSuite) TestExecuteEvictsCacheEntry() {
	ctx := context.Background()
	event := s.createEvent()

	_, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)

	_, err = s.cached.Execute(ctx, event.ID, func(e *models.Event) error {
		e.Publish(time.Now().UTC())
		return nil
	})
	s.Require().NoError(err)

	fresh, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPublished, fresh.Status)
}

func (s *CachedStoreSuite) TestIncrementViewsEvictsCacheEntry() {
	ctx := context.Background()
	event := s.createEvent()

	_, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.cached.IncrementViews(ctx, event.ID))

	fresh, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), fresh.ViewsCount)
}

func (s *CachedStoreSuite) TestCorruptEntryFallsBackToStore() {
	ctx := context.Background()
	event := s.createEvent()

	key := "eventhub:event:" + event.ID.String()
	s.Require().NoError(s.redis.Client.Set(ctx, key, "not json", time.Minute).Err())

	loaded, err := s.cached.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(event.ID, loaded.ID)
	s.Equal("Cached event", loaded.Title)
}
