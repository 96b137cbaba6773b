//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sangham/internal/admin/models"
	"sangham/internal/admin/store"
	"sangham/pkg/platform/sentinel"
	"sangham/pkg/testutil/containers"
)

type RedisSessionStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisSessionStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisSessionStoreSuite))
}

func (s *RedisSessionStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisSessionStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisSessionStoreSuite) TestSaveFindDelete() {
	ctx := context.Background()
	session := &models.Session{CreatedAt: time.Now().UTC().Truncate(time.Millisecond), Device: "Safari on iPhone", ClientIP: "192.0.2.1"}

	s.Require().NoError(s.store.Save(ctx, "token-a", session))

	found, err := s.store.Find(ctx, "token-a")
	s.Require().NoError(err)
	s.Equal(session.Device, found.Device)
	s.True(session.CreatedAt.Equal(found.CreatedAt))

	s.Require().NoError(s.store.Delete(ctx, "token-a"))
	_, err = s.store.Find(ctx, "token-a")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionStoreSuite) TestKeysDoNotContainToken() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "plain-secret-token", &models.Session{CreatedAt: time.Now()}))

	keys, err := s.redis.Client.Keys(ctx, "*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	s.NotContains(keys[0], "plain-secret-token")
	s.Equal(store.Key("plain-secret-token"), keys[0])

	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(-1), ttl, "sessions do not expire")
}
