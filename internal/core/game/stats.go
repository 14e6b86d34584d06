// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/internal/platform/metrics"
	"github.com/taibuivan/jasht/pkg/slice"
)

// # Statistics

// StatsCache stores computed dashboards between requests.
type StatsCache interface {
	// Get returns the cached dashboard for key. A miss is (nil, false, nil).
	Get(context stdctx.Context, key string) (*Dashboard, bool, error)

	// Set stores the dashboard for ttl.
	Set(context stdctx.Context, key string, dashboard *Dashboard, ttl time.Duration) error
}

/*
TopCopiedTitles ranks catalog keys by the number of library copies.

Description: Display fields come from the catalog entry under each key.
Keys whose entry was deleted fall back to the parts of the key itself.
*/
func (service *Service) TopCopiedTitles(context stdctx.Context, limit int) ([]CopyCount, error) {
	counts, err := service.repository.CountCopiesByKey(context, limit)
	if err != nil {
		return nil, err
	}

	keys := slice.Map(counts, func(count CopyCount) string { return count.Key })

	entries, err := service.repository.FindPublicByKeys(context, keys)
	if err != nil {
		return nil, err
	}

	for index := range counts {
		count := &counts[index]
		if entry, ok := entries[count.Key]; ok {
			count.Title, count.Developer, count.Image = entry.Title, entry.Developer, entry.Image
			continue
		}
		count.Title, count.Developer = SplitKey(count.Key)
	}
	return counts, nil
}

/*
BestAndWorstRatedTitles ranks keys by the mean of their shared reviews.

Description: Both rankings are read concurrently. Legacy keys written with
the "|" separator are normalized before the catalog lookup, and titles
without a catalog entry keep the names stored on their newest review.
*/
func (service *Service) BestAndWorstRatedTitles(context stdctx.Context, limit int) ([]RatedTitle, []RatedTitle, error) {
	var best, worst []RatedTitle

	group, groupContext := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		best, err = service.repository.RankSharedRatings(groupContext, limit, false)
		return err
	})
	group.Go(func() error {
		var err error
		worst, err = service.repository.RankSharedRatings(groupContext, limit, true)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	// Resolve display fields from the catalog
	keys := make([]string, 0, len(best)+len(worst))
	for _, ranked := range [][]RatedTitle{best, worst} {
		for index := range ranked {
			if normalized, err := NormalizeKey(ranked[index].Key); err == nil {
				ranked[index].Key = normalized
			}
			keys = append(keys, ranked[index].Key)
		}
	}

	entries, err := service.repository.FindPublicByKeys(context, keys)
	if err != nil {
		return nil, nil, err
	}

	for _, ranked := range [][]RatedTitle{best, worst} {
		for index := range ranked {
			title := &ranked[index]
			title.Average = roundRating(title.Average)
			if entry, ok := entries[title.Key]; ok {
				title.Title, title.Developer, title.Image = entry.Title, entry.Developer, entry.Image
				continue
			}
			if title.Title == "" {
				title.Title, title.Developer = SplitKey(title.Key)
			}
		}
	}
	return best, worst, nil
}

/*
Stats returns the administrator dashboard.

Description: Dashboards are cached per limit for the configured TTL and
concurrent requests for the same limit share one computation, which is not
cancelled when the caller that started it goes away. Cache failures are
logged and the dashboard is computed from the store.

Parameters:
  - context: context.Context
  - requester: Requester (Must be an administrator)
  - limit: int (Clamped to 1..MaxStatsLimit, default DefaultStatsLimit)

Returns:
  - *Dashboard: Top copied, best rated and worst rated titles
  - error: ErrAdminOnly or ErrStoreUnavailable
*/
func (service *Service) Stats(context stdctx.Context, requester Requester, limit int) (*Dashboard, error) {
	if !requester.IsAdmin() {
		return nil, ErrAdminOnly
	}

	switch {
	case limit <= 0:
		limit = constants.DefaultStatsLimit
	case limit > constants.MaxStatsLimit:
		limit = constants.MaxStatsLimit
	}
	cacheKey := fmt.Sprintf("%s%d", constants.RedisPrefixStats, limit)

	// The flight outlives the caller that started it, so it keeps the
	// values of that context but not its cancellation.
	shared := stdctx.WithoutCancel(context)
	value, err, _ := service.statsFlight.Do(cacheKey, func() (any, error) {
		return service.computeStats(shared, cacheKey, limit)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return value.(*Dashboard), nil
}

// computeStats serves the dashboard from cache or builds and stores it.
func (service *Service) computeStats(context stdctx.Context, cacheKey string, limit int) (*Dashboard, error) {

	// 1. Cache lookup
	if service.cache != nil {
		cached, found, err := service.cache.Get(context, cacheKey)
		switch {
		case err != nil:
			service.metrics.StatsCache(metrics.CacheError)
			service.logger.WarnContext(context, "stats_cache_read_failed", slog.Any("error", err))
		case found:
			service.metrics.StatsCache(metrics.CacheHit)
			return cached, nil
		default:
			service.metrics.StatsCache(metrics.CacheMiss)
		}
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	// 2. Independent aggregations
	dashboard := &Dashboard{GeneratedAt: service.now().UTC()}
	group, groupContext := errgroup.WithContext(context)
	group.Go(func() error {
		var err error
		dashboard.TopCopies, err = service.TopCopiedTitles(groupContext, limit)
		return err
	})
	group.Go(func() error {
		var err error
		dashboard.BestRated, dashboard.WorstRated, err = service.BestAndWorstRatedTitles(groupContext, limit)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// 3. Cache store
	if service.cache != nil {
		if err := service.cache.Set(context, cacheKey, dashboard, service.statsTTL); err != nil {
			service.metrics.StatsCache(metrics.CacheError)
			service.logger.WarnContext(context, "stats_cache_write_failed", slog.Any("error", err))
		}
	}
	return dashboard, nil
}
