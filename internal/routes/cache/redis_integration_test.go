//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/routes/cache"
	"github.com/leynos/wildside-sub003/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache[cachedPlan]
	key   ports.RouteCacheKey
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis[cachedPlan](s.redis.Client.Client, cache.DefaultKeyPrefix, time.Minute)
	key, err := ports.NewRouteCacheKey("route:abc")
	s.Require().NoError(err)
	s.key = key
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestMissThenHit() {
	ctx := context.Background()
	_, found, err := s.cache.Get(ctx, s.key)
	s.Require().NoError(err)
	s.False(found)

	want := cachedPlan{ID: "p1", POIs: []string{"node/1"}}
	s.Require().NoError(s.cache.Put(ctx, s.key, want))

	got, found, err := s.cache.Get(ctx, s.key)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(want, got)

	ttl, err := s.redis.Client.TTL(ctx, cache.DefaultKeyPrefix+s.key.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisCacheSuite) TestCorruptValueIsSerializationError() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, cache.DefaultKeyPrefix+s.key.String(), "{", 0).Err())

	_, _, err := s.cache.Get(ctx, s.key)
	var cacheErr *ports.RouteCacheError
	s.Require().ErrorAs(err, &cacheErr)
	s.Equal(ports.RouteCacheSerialization, cacheErr.Kind)
}
