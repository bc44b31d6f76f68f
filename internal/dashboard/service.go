package dashboard

import (
	"context"
	"time"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/config"

	"go.uber.org/zap"
)

const (
	cacheKey    = "dashboard:stats"
	recentForms = 5
	topStates   = 5
	dailyWindow = 30 * 24 * time.Hour
)

// Cache is satisfied by config.RedisCache.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type StatsService struct {
	store Store
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

func NewStatsService(store Store, cache Cache, cfg *config.Config, log *zap.Logger) *StatsService {
	return &StatsService{store: store, cache: cache, ttl: cfg.StatsCacheTTL, log: log, now: time.Now}
}

// Stats returns the dashboard summary, served from the cache while it is fresh.
// Cache errors are logged and otherwise ignored.
func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	if s.cache != nil && s.ttl > 0 {
		var cached Stats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Warn("reading cached stats", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err, "Failed to get dashboard statistics.")
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, cacheKey, stats, s.ttl); err != nil {
			s.log.Warn("caching stats", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *StatsService) compute(ctx context.Context) (*Stats, error) {
	total, completed, err := s.store.FormCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentForms(ctx, recentForms)
	if err != nil {
		return nil, err
	}
	daily, err := s.store.DailyCounts(ctx, s.now().Add(-dailyWindow))
	if err != nil {
		return nil, err
	}
	pincodes, err := s.store.PincodeCounts(ctx)
	if err != nil {
		return nil, err
	}
	states, err := s.store.TopStates(ctx, topStates)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Forms: FormStats{
			Total:          total,
			Completed:      completed,
			Incomplete:     total - completed,
			CompletionRate: completionRate(completed, total),
		},
		Pincodes: pincodes,
		Recent: Recent{
			Forms:     recent,
			Stats:     daily,
			TopStates: states,
		},
	}, nil
}
