package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dayFormat = "2006-01-02"

// HolidayLoader fetches the declared holidays of one calendar year.
type HolidayLoader interface {
	ListHolidays(ctx context.Context, year int, agencyID, portfolioTypeID string) ([]time.Time, error)
}

// CachedHolidaySource serves holiday lookups from a Redis year-set, falling
// back to the loader on a miss. A lookup that cannot reach either store
// returns the error so the adjuster can surface it instead of silently
// treating the day as a business day.
type CachedHolidaySource struct {
	loader HolidayLoader
	redis  *redis.Client
	ttl    time.Duration
}

func NewCachedHolidaySource(loader HolidayLoader, redisClient *redis.Client, ttl time.Duration) *CachedHolidaySource {
	return &CachedHolidaySource{
		loader: loader,
		redis:  redisClient,
		ttl:    ttl,
	}
}

func (s *CachedHolidaySource) IsHoliday(ctx context.Context, date time.Time, agencyID, portfolioTypeID string) (bool, error) {
	days, err := s.yearSet(ctx, date.Year(), agencyID, portfolioTypeID)
	if err != nil {
		return false, err
	}
	_, ok := days[date.Format(dayFormat)]
	return ok, nil
}

// WarmYear preloads a year's holidays into the cache.
func (s *CachedHolidaySource) WarmYear(ctx context.Context, year int, agencyID, portfolioTypeID string) error {
	_, err := s.load(ctx, year, agencyID, portfolioTypeID)
	return err
}

func (s *CachedHolidaySource) yearSet(ctx context.Context, year int, agencyID, portfolioTypeID string) (map[string]struct{}, error) {
	key := cacheKey(year, agencyID, portfolioTypeID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var days []string
			if unmarshalErr := json.Unmarshal([]byte(cached), &days); unmarshalErr == nil {
				return toSet(days), nil
			}
		}
	}

	return s.load(ctx, year, agencyID, portfolioTypeID)
}

func (s *CachedHolidaySource) load(ctx context.Context, year int, agencyID, portfolioTypeID string) (map[string]struct{}, error) {
	holidays, err := s.loader.ListHolidays(ctx, year, agencyID, portfolioTypeID)
	if err != nil {
		return nil, err
	}

	days := make([]string, 0, len(holidays))
	for _, h := range holidays {
		days = append(days, h.Format(dayFormat))
	}

	if s.redis != nil {
		if encoded, marshalErr := json.Marshal(days); marshalErr == nil {
			// Cache failures are not fatal; the loader already answered.
			s.redis.Set(ctx, cacheKey(year, agencyID, portfolioTypeID), encoded, s.ttl)
		}
	}

	return toSet(days), nil
}

func cacheKey(year int, agencyID, portfolioTypeID string) string {
	return fmt.Sprintf("holidays:%d:%s:%s", year, agencyID, portfolioTypeID)
}

func toSet(days []string) map[string]struct{} {
	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	return set
}
