package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"aironix-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const newsCacheTTL = 60 * time.Second

type NewsFetcher interface {
	FetchNews(ctx context.Context) ([]domain.NewsItem, error)
}

type NewsStore interface {
	InsertIfAbsent(ctx context.Context, item domain.NewsItem) (bool, error)
	TrimToCap(ctx context.Context, cap int) error
	ListLatest(ctx context.Context, limit int) ([]domain.NewsItem, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// NewsService orchestrates news ingestion (fetch, dedup, trim) and the
// cached read path.
type NewsService struct {
	tracer       trace.Tracer
	provider     NewsFetcher
	repo         NewsStore
	redis        RedisClient
	retentionCap int
}

func NewNewsService(
	tracer trace.Tracer,
	provider NewsFetcher,
	repo NewsStore,
	redisClient RedisClient,
	retentionCap int,
) *NewsService {
	if retentionCap <= 0 {
		retentionCap = domain.DefaultNewsRetentionCap
	}
	return &NewsService{
		tracer:       tracer,
		provider:     provider,
		repo:         repo,
		redis:        redisClient,
		retentionCap: retentionCap,
	}
}

// RefreshNews runs one ingestion cycle: fetch a batch, admit each item
// (duplicates by title are no-ops), then trim to the retention cap. A fetch
// failure leaves the store untouched.
func (s *NewsService) RefreshNews(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "news-service.refresh-news")
	defer span.End()

	items, err := s.provider.FetchNews(ctx)
	if err != nil {
		return err
	}

	inserted := 0
	for _, item := range items {
		ok, err := s.repo.InsertIfAbsent(ctx, item)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}

	if err := s.repo.TrimToCap(ctx, s.retentionCap); err != nil {
		return err
	}

	log.Printf("Refreshed news: %d fetched, %d new", len(items), inserted)
	return nil
}

// GetLatestNews returns the newest items by publication date, newest first.
// Responses are cached in Redis for a short TTL per requested limit.
func (s *NewsService) GetLatestNews(ctx context.Context, limit int) ([]domain.NewsItem, error) {
	_, span := s.tracer.Start(ctx, "news-service.get-latest-news")
	defer span.End()

	if limit <= 0 || limit > s.retentionCap {
		limit = s.retentionCap
	}

	key := fmt.Sprintf("news:latest:%d", limit)
	if s.redis != nil {
		cached, err := s.getNewsCache(ctx, key)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	items, err := s.repo.ListLatest(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.setNewsCache(ctx, key, items); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	return items, nil
}

func (s *NewsService) setNewsCache(ctx context.Context, key string, items []domain.NewsItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, newsCacheTTL).Err()
}

func (s *NewsService) getNewsCache(ctx context.Context, key string) ([]domain.NewsItem, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []domain.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
