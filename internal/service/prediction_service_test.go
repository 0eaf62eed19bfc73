package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"aironix-backend/internal/domain"
)

func fetchAt(h int) time.Time {
	return time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC)
}

func TestRefreshPredictionAppends(t *testing.T) {
	t.Parallel()

	rec := &domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 2, CurrentClose: 612.5, PredictedClose: 618.2, FetchedAt: fetchAt(15)}
	provider := &fakePredictionProvider{rec: rec}
	store := newFakePredictionStore()
	svc := NewPredictionService(testTracer, provider, store, nil)

	model := domain.PredictionModels[1]
	if err := svc.RefreshPrediction(context.Background(), model); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RefreshPrediction(context.Background(), model); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Append-only: every successful fetch adds a row, no dedup.
	if len(store.records) != 2 {
		t.Fatalf("expected 2 appended rows, got %d", len(store.records))
	}
}

func TestRefreshPredictionFetchErrorLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	provider := &fakePredictionProvider{err: domain.NewFetchError("prediction-model-2", errors.New("timeout"))}
	store := newFakePredictionStore()
	svc := NewPredictionService(testTracer, provider, store, nil)

	err := svc.RefreshPrediction(context.Background(), domain.PredictionModels[1])
	if !domain.IsKind(err, domain.ErrKindFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("failed fetch must not write to the store")
	}
}

func TestGetPredictionsRequiresSymbol(t *testing.T) {
	t.Parallel()

	svc := NewPredictionService(testTracer, &fakePredictionProvider{}, newFakePredictionStore(), nil)

	_, err := svc.GetPredictions(context.Background(), "  ", 0, 0)
	if !domain.IsKind(err, domain.ErrKindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetPredictionsEmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()

	svc := NewPredictionService(testTracer, &fakePredictionProvider{}, newFakePredictionStore(), nil)

	records, err := svc.GetPredictions(context.Background(), "SBIN", 0, 0)
	if err != nil {
		t.Fatalf("expected empty list, got error %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil list, got %+v", records)
	}
}

func TestGetPredictionsFiltersAndOrders(t *testing.T) {
	t.Parallel()

	store := newFakePredictionStore()
	store.append(domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 2, FetchedAt: fetchAt(9)})
	store.append(domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 2, FetchedAt: fetchAt(11)})
	store.append(domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 4, FetchedAt: fetchAt(10)})
	store.append(domain.PredictionRecord{StockSymbol: "INFY", ModelID: 3, FetchedAt: fetchAt(12)})

	svc := NewPredictionService(testTracer, &fakePredictionProvider{}, store, nil)

	records, err := svc.GetPredictions(context.Background(), "SBIN", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 model-2 rows, got %d", len(records))
	}
	if !records[0].FetchedAt.Equal(fetchAt(11)) {
		t.Fatalf("expected most recent first, got %v", records[0].FetchedAt)
	}

	all, err := svc.GetPredictions(context.Background(), "SBIN", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 SBIN rows without model filter, got %d", len(all))
	}
}

func TestGetLatestPerGroupReturnsMaxFetchedAtPerPair(t *testing.T) {
	t.Parallel()

	store := newFakePredictionStore()
	store.append(domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 2, PredictedClose: 1, FetchedAt: fetchAt(9)})
	store.append(domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 2, PredictedClose: 2, FetchedAt: fetchAt(11)})
	store.append(domain.PredictionRecord{StockSymbol: "HDFCBANK", ModelID: 1, PredictedClose: 3, FetchedAt: fetchAt(8)})
	store.append(domain.PredictionRecord{StockSymbol: "HDFCBANK", ModelID: 1, PredictedClose: 4, FetchedAt: fetchAt(10)})
	store.append(domain.PredictionRecord{StockSymbol: "INFY", ModelID: 3, PredictedClose: 5, FetchedAt: fetchAt(7)})

	svc := NewPredictionService(testTracer, &fakePredictionProvider{}, store, nil)

	records, err := svc.GetLatestPerGroup(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected one row per (symbol, model) pair, got %d", len(records))
	}
	// Ordered by symbol asc, model asc; each row carries the max fetched_at.
	if records[0].StockSymbol != "HDFCBANK" || records[0].PredictedClose != 4 {
		t.Fatalf("unexpected first group row: %+v", records[0])
	}
	if records[1].StockSymbol != "INFY" || records[2].StockSymbol != "SBIN" {
		t.Fatalf("unexpected group ordering: %+v", records)
	}
	if records[2].PredictedClose != 2 {
		t.Fatalf("expected max fetched_at row for SBIN/2, got %+v", records[2])
	}
}

func TestGetLatestPerGroupUsesCache(t *testing.T) {
	t.Parallel()

	cached := []domain.PredictionRecord{{StockSymbol: "SBIN", ModelID: 2, PredictedClose: 9}}
	data, _ := json.Marshal(cached)
	fake := newFakeRedis()
	_ = fake.Set(context.Background(), latestPerGroupCacheKey, data, 0)

	store := newFakePredictionStore()
	svc := NewPredictionService(testTracer, &fakePredictionProvider{}, store, fake)

	records, err := svc.GetLatestPerGroup(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].PredictedClose != 9 {
		t.Fatalf("expected cached payload, got %+v", records)
	}
	if store.groupCalls != 0 {
		t.Fatal("cache hit should not touch the store")
	}
}

func TestClearPredictions(t *testing.T) {
	t.Parallel()

	store := newFakePredictionStore()
	store.append(domain.PredictionRecord{StockSymbol: "SBIN", ModelID: 2, FetchedAt: fetchAt(9)})
	svc := NewPredictionService(testTracer, &fakePredictionProvider{}, store, nil)

	if err := svc.ClearPredictions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("expected history truncated")
	}
}

type fakePredictionProvider struct {
	rec *domain.PredictionRecord
	err error
}

func (f *fakePredictionProvider) FetchPrediction(ctx context.Context, model domain.PredictionModel) (*domain.PredictionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rec != nil {
		return f.rec, nil
	}
	return &domain.PredictionRecord{StockSymbol: model.StockSymbol, ModelID: model.ModelID, FetchedAt: time.Now().UTC()}, nil
}

// fakePredictionStore models the append-only contract in memory.
type fakePredictionStore struct {
	records    []domain.PredictionRecord
	nextID     int64
	appendErr  error
	groupCalls int
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{}
}

func (f *fakePredictionStore) append(rec domain.PredictionRecord) {
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, rec)
}

func (f *fakePredictionStore) Append(ctx context.Context, rec *domain.PredictionRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.append(*rec)
	return nil
}

func (f *fakePredictionStore) ListBySymbol(ctx context.Context, symbol string, modelID, limit int) ([]domain.PredictionRecord, error) {
	out := make([]domain.PredictionRecord, 0, limit)
	for _, rec := range f.records {
		if rec.StockSymbol != symbol {
			continue
		}
		if modelID > 0 && rec.ModelID != modelID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FetchedAt.Equal(out[j].FetchedAt) {
			return out[i].FetchedAt.After(out[j].FetchedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePredictionStore) ListLatestPerGroup(ctx context.Context) ([]domain.PredictionRecord, error) {
	f.groupCalls++
	type key struct {
		symbol string
		model  int
	}
	latest := make(map[key]domain.PredictionRecord)
	for _, rec := range f.records {
		k := key{rec.StockSymbol, rec.ModelID}
		cur, ok := latest[k]
		if !ok || rec.FetchedAt.After(cur.FetchedAt) || (rec.FetchedAt.Equal(cur.FetchedAt) && rec.ID > cur.ID) {
			latest[k] = rec
		}
	}
	out := make([]domain.PredictionRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockSymbol != out[j].StockSymbol {
			return out[i].StockSymbol < out[j].StockSymbol
		}
		return out[i].ModelID < out[j].ModelID
	})
	return out, nil
}

func (f *fakePredictionStore) Clear(ctx context.Context) error {
	f.records = nil
	return nil
}
