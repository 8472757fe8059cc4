package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"rentListings/internal/metrics"
	"rentListings/internal/models"
	"rentListings/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded is returned to a caller whose result arrived after a newer
// query was issued on the same view.
var ErrSuperseded = errors.New("query: superseded by a newer search")

// Service fetches listings for a filter through the cache. Concurrent calls
// for the same filter share one backend request.
type Service struct {
	db      storage.Database
	cache   storage.Cache
	metrics *metrics.Metrics
	log     *zap.Logger
	group   singleflight.Group
}

func NewService(db storage.Database, cache storage.Cache, m *metrics.Metrics, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, cache: cache, metrics: m, log: log}
}

func (s *Service) Fetch(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	key := filter.Key()

	// The generation is read before the database so a result computed
	// ahead of a mutation is filed under the generation that mutation retired.
	gen, cached := s.generation(ctx)
	flightKey := key
	if cached {
		flightKey = fmt.Sprintf("v%d:%s", gen, key)
	}

	v, err, shared := s.group.Do(flightKey, func() (interface{}, error) {
		if cached {
			if listings, ok := s.fromCache(ctx, gen, key); ok {
				return listings, nil
			}
		}

		listings, err := s.db.GetListings(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("query: fetch listings: %w", err)
		}
		if listings == nil {
			listings = []models.Listing{}
		}

		if cached {
			if err := s.cache.PutListings(ctx, gen, key, listings); err != nil {
				s.log.Warn("failed to cache listings", zap.String("key", key), zap.Error(err))
			}
		}

		return listings, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.metrics.QueryShared()
	}

	return v.([]models.Listing), nil
}

// generation reports false when there is no usable cache for this call.
func (s *Service) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.metrics.CacheError()
		s.log.Warn("listing cache unavailable", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (s *Service) fromCache(ctx context.Context, gen int64, key string) ([]models.Listing, bool) {
	data, err := s.cache.GetListings(ctx, gen, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.metrics.CacheMiss()
		} else {
			s.metrics.CacheError()
			s.log.Warn("listing cache unavailable", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		s.metrics.CacheError()
		s.log.Warn("failed to decode cached listings", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	s.metrics.CacheHit()
	return listings, true
}

// Invalidate drops every cached result. Called after any listing mutation.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListings(ctx); err != nil {
		s.log.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}

// View tracks the most recent filter requested by one browsing session and
// only delivers the result of that filter.
type View struct {
	svc *Service

	mu     sync.Mutex
	seq    uint64
	latest models.ListingFilter
}

func NewView(svc *Service) *View {
	return &View{svc: svc}
}

func (v *View) Load(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	v.mu.Lock()
	v.seq++
	ticket := v.seq
	v.latest = filter
	v.mu.Unlock()

	listings, err := v.svc.Fetch(ctx, filter)

	v.mu.Lock()
	defer v.mu.Unlock()
	if ticket != v.seq && v.latest != filter {
		v.svc.metrics.QuerySuperseded()
		return nil, ErrSuperseded
	}

	return listings, err
}
