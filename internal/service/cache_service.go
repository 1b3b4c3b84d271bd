package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"livepoll/internal/domain"
	"livepoll/pkg/redis"
)

// cacheWriteTimeout bounds the async write-back goroutines. It is an
// operation timeout, independent of how long a written key lives; a wedged
// Redis must not pin a goroutine for the key's whole TTL.
const cacheWriteTimeout = 3 * time.Second

// CacheService provides cache-aside poll reads on Redis. Every method
// degrades to the database fallback when Redis is absent or failing; the
// cache is an accelerator, never a source of truth.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service. redisClient may be nil.
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetPollWithCache retrieves a poll by slug with cache-aside semantics
func (c *CacheService) GetPollWithCache(ctx context.Context, slug string, dbFallback func(ctx context.Context, slug string) (*domain.Poll, error)) (*domain.Poll, error) {
	if c.redis == nil {
		return dbFallback(ctx, slug)
	}

	cacheKey := c.redis.KeyBuilder.KeyPollBySlug(slug)

	cached, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		var poll domain.Poll
		if unmarshalErr := json.Unmarshal([]byte(cached), &poll); unmarshalErr == nil {
			c.logger.Debug("poll cache hit", zap.String("slug", slug))
			return &poll, nil
		}
		c.logger.Warn("poll cache corrupted, falling back to database",
			zap.String("slug", slug))
	} else if err != nil && !redis.IsNil(err) {
		c.logger.Warn("poll cache error, falling back to database",
			zap.String("slug", slug),
			zap.Error(err))
	}

	poll, err := dbFallback(ctx, slug)
	if err != nil {
		return nil, err
	}

	if poll != nil {
		go c.cachePollAsync(slug, poll)
	}

	return poll, nil
}

// GetResultsWithCache retrieves poll results with cache-aside semantics
func (c *CacheService) GetResultsWithCache(ctx context.Context, pollID int64, dbFallback func(ctx context.Context, pollID int64) (*domain.PollResults, error)) (*domain.PollResults, error) {
	if c.redis == nil {
		return dbFallback(ctx, pollID)
	}

	cacheKey := c.redis.KeyBuilder.KeyPollResults(pollID)

	cached, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cached != "" {
		var results domain.PollResults
		if unmarshalErr := json.Unmarshal([]byte(cached), &results); unmarshalErr == nil {
			c.logger.Debug("results cache hit", zap.Int64("poll_id", pollID))
			return &results, nil
		}
	} else if err != nil && !redis.IsNil(err) {
		c.logger.Warn("results cache error, falling back to database",
			zap.Int64("poll_id", pollID),
			zap.Error(err))
	}

	results, err := dbFallback(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if results != nil {
		go c.cacheResultsAsync(pollID, results)
	}

	return results, nil
}

// InvalidatePoll drops the cached poll and its results after a mutation
func (c *CacheService) InvalidatePoll(ctx context.Context, slug string, pollID int64) {
	if c.redis == nil {
		return
	}
	err := c.redis.Delete(ctx,
		c.redis.KeyBuilder.KeyPollBySlug(slug),
		c.redis.KeyBuilder.KeyPollResults(pollID),
	)
	if err != nil {
		c.logger.Warn("failed to invalidate poll cache",
			zap.String("slug", slug),
			zap.Int64("poll_id", pollID),
			zap.Error(err))
	}
}

// InvalidateResults drops only the cached results, used after a vote
func (c *CacheService) InvalidateResults(ctx context.Context, pollID int64) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyPollResults(pollID)); err != nil {
		c.logger.Warn("failed to invalidate results cache",
			zap.Int64("poll_id", pollID),
			zap.Error(err))
	}
}

func (c *CacheService) cachePollAsync(slug string, poll *domain.Poll) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	data, err := json.Marshal(poll)
	if err != nil {
		c.logger.Warn("failed to marshal poll for cache", zap.String("slug", slug), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyPollBySlug(slug), data, redis.TTLPoll); err != nil {
		c.logger.Debug("failed to cache poll", zap.String("slug", slug), zap.Error(err))
	}
}

func (c *CacheService) cacheResultsAsync(pollID int64, results *domain.PollResults) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Warn("failed to marshal results for cache", zap.Int64("poll_id", pollID), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyPollResults(pollID), data, redis.TTLResults); err != nil {
		c.logger.Debug("failed to cache results", zap.Int64("poll_id", pollID), zap.Error(err))
	}
}
