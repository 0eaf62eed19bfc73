package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"aironix-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	latestPerGroupCacheKey = "predictions:latest-per-group"
	latestPerGroupCacheTTL = 30 * time.Second

	defaultPredictionLimit = 50
	maxPredictionLimit     = 500
)

type PredictionFetcher interface {
	FetchPrediction(ctx context.Context, model domain.PredictionModel) (*domain.PredictionRecord, error)
}

type PredictionStore interface {
	Append(ctx context.Context, rec *domain.PredictionRecord) error
	ListBySymbol(ctx context.Context, symbol string, modelID, limit int) ([]domain.PredictionRecord, error)
	ListLatestPerGroup(ctx context.Context) ([]domain.PredictionRecord, error)
	Clear(ctx context.Context) error
}

// PredictionService orchestrates prediction ingestion and reads. History is
// append-only; there is no retention cap, only the wholesale Clear
// maintenance operation.
type PredictionService struct {
	tracer   trace.Tracer
	provider PredictionFetcher
	repo     PredictionStore
	redis    RedisClient
}

func NewPredictionService(
	tracer trace.Tracer,
	provider PredictionFetcher,
	repo PredictionStore,
	redisClient RedisClient,
) *PredictionService {
	return &PredictionService{
		tracer:   tracer,
		provider: provider,
		repo:     repo,
		redis:    redisClient,
	}
}

// RefreshPrediction runs one ingestion cycle for a single model source:
// fetch one prediction and append it. A failed fetch leaves the store
// untouched.
func (s *PredictionService) RefreshPrediction(ctx context.Context, model domain.PredictionModel) error {
	_, span := s.tracer.Start(ctx, "prediction-service.refresh-prediction")
	defer span.End()

	rec, err := s.provider.FetchPrediction(ctx, model)
	if err != nil {
		return err
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return err
	}

	log.Printf("Stored prediction for %s (model %d)", rec.StockSymbol, rec.ModelID)
	return nil
}

// GetPredictions returns the stored history for a symbol, most recent fetch
// first, optionally filtered by model. A missing symbol is a caller error;
// an unknown symbol simply yields an empty list.
func (s *PredictionService) GetPredictions(ctx context.Context, symbol string, modelID, limit int) ([]domain.PredictionRecord, error) {
	_, span := s.tracer.Start(ctx, "prediction-service.get-predictions")
	defer span.End()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, domain.NewValidationError("symbol is required")
	}
	if limit <= 0 || limit > maxPredictionLimit {
		limit = defaultPredictionLimit
	}

	return s.repo.ListBySymbol(ctx, symbol, modelID, limit)
}

// GetLatestPerGroup returns the most recent record for every tracked
// (symbol, model) pair, cached briefly in Redis.
func (s *PredictionService) GetLatestPerGroup(ctx context.Context) ([]domain.PredictionRecord, error) {
	_, span := s.tracer.Start(ctx, "prediction-service.get-latest-per-group")
	defer span.End()

	if s.redis != nil {
		cached, err := s.getGroupCache(ctx)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	records, err := s.repo.ListLatestPerGroup(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.setGroupCache(ctx, records); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	return records, nil
}

// ClearPredictions truncates the history wholesale.
func (s *PredictionService) ClearPredictions(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "prediction-service.clear-predictions")
	defer span.End()

	return s.repo.Clear(ctx)
}

func (s *PredictionService) setGroupCache(ctx context.Context, records []domain.PredictionRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, latestPerGroupCacheKey, data, latestPerGroupCacheTTL).Err()
}

func (s *PredictionService) getGroupCache(ctx context.Context) ([]domain.PredictionRecord, error) {
	data, err := s.redis.Get(ctx, latestPerGroupCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []domain.PredictionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
