package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/sipcourse-backend/internal/records"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
)

// Service serves cached portfolio summaries.
type Service interface {
	Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error)
	Invalidate(ctx context.Context, ownerID uuid.UUID)
}

type recordLister interface {
	ListPlanRecords(ctx context.Context, ownerID uuid.UUID) ([]records.PlanRecord, error)
}

// Cache is the redis surface used for summaries.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	CacheKey(parts ...string) string
}

// cachedSummary is the stored form of a summary. Generation is the owner's
// invalidation counter read before the records were listed; an entry from an
// older generation is never served. Active is derived from Maturities on
// every read.
type cachedSummary struct {
	Generation int64       `json:"generation"`
	Summary    Summary     `json:"summary"`
	Maturities []time.Time `json:"maturities"`
}

type service struct {
	records recordLister
	cache   Cache
	ttl     time.Duration
	logg    *logger.Logger
	now     func() time.Time
	group   singleflight.Group
}

// NewService builds the summary service. The cache is optional.
func NewService(lister recordLister, cache Cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if lister == nil {
		return nil, fmt.Errorf("record lister is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{records: lister, cache: cache, ttl: ttl, logg: logg, now: time.Now}, nil
}

// Summary returns the cached summary or computes it. Concurrent misses for
// the same owner share one computation, detached from any single caller's
// cancellation.
func (s *service) Summary(ctx context.Context, ownerID uuid.UUID) (*Summary, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing owner")
	}

	gen, cacheable := s.generation(ctx, ownerID)
	if cacheable {
		var cached cachedSummary
		found, err := s.cache.GetJSON(ctx, s.key(ownerID), &cached)
		switch {
		case err != nil:
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "portfolio.summary.cache_read_failed")
		case found && cached.Generation == gen:
			return s.hydrate(cached), nil
		}
	}

	v, err, _ := s.group.Do(ownerID.String(), func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		recs, err := s.records.ListPlanRecords(loadCtx, ownerID)
		if err != nil {
			return nil, err
		}
		summary, maturities := fold(recs)
		entry := cachedSummary{Generation: gen, Summary: summary, Maturities: maturities}
		if cacheable {
			if err := s.cache.SetJSON(loadCtx, s.key(ownerID), entry, s.ttl); err != nil {
				s.logg.Warn(s.logg.WithField(loadCtx, "error", err.Error()), "portfolio.summary.cache_write_failed")
			}
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return s.hydrate(v.(cachedSummary)), nil
}

// Invalidate bumps the owner's generation so entries computed from older
// record lists are ignored, drops the cached summary and detaches callers
// from any load already in flight.
func (s *service) Invalidate(ctx context.Context, ownerID uuid.UUID) {
	if ownerID == uuid.Nil {
		return
	}
	defer s.group.Forget(ownerID.String())
	if s.cache == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	if _, err := s.cache.Incr(ctx, s.generationKey(ownerID)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "portfolio.summary.generation_bump_failed")
	}
	if err := s.cache.Del(ctx, s.key(ownerID)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "portfolio.summary.invalidate_failed")
	}
}

// generation reads the owner's invalidation counter. A missing counter is
// generation zero. When it cannot be read the cache is bypassed entirely.
func (s *service) generation(ctx context.Context, ownerID uuid.UUID) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	var gen int64
	if _, err := s.cache.GetJSON(ctx, s.generationKey(ownerID), &gen); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "portfolio.summary.generation_read_failed")
		return 0, false
	}
	return gen, true
}

func (s *service) hydrate(entry cachedSummary) *Summary {
	summary := entry.Summary
	summary.Active = countActive(entry.Maturities, s.now())
	return &summary
}

func (s *service) key(ownerID uuid.UUID) string {
	return s.cache.CacheKey("portfolio", "summary", ownerID.String())
}

func (s *service) generationKey(ownerID uuid.UUID) string {
	return s.cache.CacheKey("portfolio", "gen", ownerID.String())
}
