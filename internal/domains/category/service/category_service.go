package service

import (
	"context"
	"time"

	"clubelocal-backend/internal/domains/category"
	"clubelocal-backend/pkg/cache"
	"clubelocal-backend/pkg/logger"
)

const (
	cacheKey = cache.KeyCategoriesLive
	cacheTTL = 60 * time.Second
)

type CategoryService struct {
	repo  category.Repository
	cache cache.Cache
}

func NewCategoryService(repo category.Repository, cache cache.Cache) *CategoryService {
	return &CategoryService{repo: repo, cache: cache}
}

var _ category.Service = (*CategoryService)(nil)

// List serves from Redis when possible. The live counts shift with the
// clock, so the entry is kept short-lived instead of being invalidated on
// every coupon mutation.
func (s *CategoryService) List(ctx context.Context) ([]*category.WithCount, error) {
	if s.cache != nil {
		var cached []*category.WithCount
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("category cache read failed", map[string]interface{}{"error": err.Error()})
		} else if hit {
			return cached, nil
		}
	}

	categories, err := s.repo.ListWithLiveCounts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, categories, cacheTTL); err != nil {
			logger.Warn("category cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return categories, nil
}
