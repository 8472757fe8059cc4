package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentListings/internal/models"
	"rentListings/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultListingTTL = 5 * time.Minute

	generationKey   = `listings:generation`
	revokedPrefix   = `session:revoked:`
	verifyingPrefix = `session:verify:`
)

type Options struct {
	Addr       string
	Password   string
	DB         int
	ListingTTL time.Duration
}

// RedisCache caches listing query results and keeps the session side tables
// (revoked token ids, pending email verifications).
type RedisCache struct {
	Client     *redis.Client
	listingTTL time.Duration
	log        *zap.Logger
}

func New(ctx context.Context, opts Options, log *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	ttl := opts.ListingTTL
	if ttl <= 0 {
		ttl = defaultListingTTL
	}

	return &RedisCache{Client: client, listingTTL: ttl, log: log}, nil
}

func NewForTest() (*RedisCache, error) {
	return New(context.Background(), Options{Addr: "localhost:6379", DB: 15}, nil)
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

// Generation returns the current listing cache generation. Bumping it
// orphans every cached result at once.
func (r *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := r.Client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return gen, nil
}

func listingKey(gen int64, key string) string {
	return fmt.Sprintf(`listings:v%d:%s`, gen, key)
}

func (r *RedisCache) GetListings(ctx context.Context, gen int64, key string) ([]byte, error) {
	fullKey := listingKey(gen, key)

	data, err := r.Client.Get(ctx, fullKey).Bytes()
	if err != nil {
		return nil, err
	}

	r.log.Debug("listings served from cache", zap.String("key", fullKey))
	return data, nil
}

func (r *RedisCache) PutListings(ctx context.Context, gen int64, key string, listings []models.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("redis: marshal listings: %w", err)
	}

	fullKey := listingKey(gen, key)

	if err := r.Client.Set(ctx, fullKey, data, r.listingTTL).Err(); err != nil {
		return err
	}

	r.log.Debug("listings cached", zap.String("key", fullKey), zap.Int("count", len(listings)))
	return nil
}

func (r *RedisCache) InvalidateListings(ctx context.Context) error {
	gen, err := r.Client.Incr(ctx, generationKey).Result()
	if err != nil {
		return err
	}

	r.log.Debug("listing cache generation bumped", zap.Int64("generation", gen))
	return nil
}

func (r *RedisCache) RevokeToken(ctx context.Context, tokenId string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, revokedPrefix+tokenId, 1, ttl).Err()
}

func (r *RedisCache) IsTokenRevoked(ctx context.Context, tokenId string) (bool, error) {
	n, err := r.Client.Exists(ctx, revokedPrefix+tokenId).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisCache) SaveVerification(ctx context.Context, token string, v models.Verification, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: marshal verification: %w", err)
	}
	return r.Client.Set(ctx, verifyingPrefix+token, data, ttl).Err()
}

func (r *RedisCache) ConsumeVerification(ctx context.Context, token string) (models.Verification, error) {
	var v models.Verification

	data, err := r.Client.GetDel(ctx, verifyingPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return v, storage.ErrNotFound
		}
		return v, err
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("redis: decode verification: %w", err)
	}
	return v, nil
}
