package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"onlinecourse_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const popularCoursesKey = "course:popular"

// CourseCache 缓存热门课程列表。Client 为空时所有操作都是空操作。
type CourseCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCourseCache(client *redis.Client, ttl time.Duration) *CourseCache {
	return &CourseCache{Client: client, TTL: ttl}
}

func (c *CourseCache) enabled() bool {
	return c != nil && c.Client != nil
}

// GetPopular returns the cached list. Any redis failure reads as a miss.
func (c *CourseCache) GetPopular(ctx context.Context) ([]CourseListItem, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.Client.Get(ctx, popularCoursesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("course cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var items []CourseListItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.L().Warn("course cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return items, true
}

func (c *CourseCache) SetPopular(ctx context.Context, items []CourseListItem) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, popularCoursesKey, data, c.TTL).Err(); err != nil {
		logger.L().Warn("course cache write failed", zap.Error(err))
	}
}

func (c *CourseCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.Client.Del(ctx, popularCoursesKey).Err(); err != nil {
		logger.L().Warn("course cache invalidate failed", zap.Error(err))
	}
}
