package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aironix-backend/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PredictionProvider fetches single prediction objects from the per-model
// endpoints of the prediction service.
type PredictionProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewPredictionProvider(tracer trace.Tracer, baseURL string) *PredictionProvider {
	return &PredictionProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		tracer:  tracer,
	}
}

// FetchPrediction posts the model's identifying parameters and normalizes the
// returned prediction. A response missing any required field is a fetch
// error; a missing datetime falls back to the ingestion instant.
func (p *PredictionProvider) FetchPrediction(ctx context.Context, model domain.PredictionModel) (*domain.PredictionRecord, error) {
	_, span := p.tracer.Start(ctx, "prediction-provider.fetch-prediction")
	defer span.End()
	span.SetAttributes(
		attribute.String("stock_symbol", model.StockSymbol),
		attribute.Int("model_id", model.ModelID),
	)

	source := fmt.Sprintf("prediction-model-%d", model.ModelID)

	if p.baseURL == "" {
		return nil, domain.NewFetchError(source, fmt.Errorf("prediction api base url is not configured"))
	}

	payload, err := json.Marshal(map[string]any{
		"stock_name": model.StockSymbol,
		"model_id":   model.ModelID,
	})
	if err != nil {
		return nil, domain.NewFetchError(source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+model.Path, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewFetchError(source, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewFetchError(source, fmt.Errorf("prediction api error %d: %s", resp.StatusCode, string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(source, err)
	}

	// Pointer fields distinguish absent keys from zero values.
	var raw struct {
		StockName      *string  `json:"stock_name"`
		ModelID        *int     `json:"model_id"`
		CurrentClose   *float64 `json:"current_close"`
		PredictedClose *float64 `json:"predicted_close"`
		Status         *string  `json:"status"`
		Datetime       string   `json:"datetime"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.NewFetchError(source, fmt.Errorf("parse prediction payload: %w", err))
	}
	if raw.StockName == nil || raw.ModelID == nil || raw.CurrentClose == nil || raw.PredictedClose == nil || raw.Status == nil {
		return nil, domain.NewFetchError(source, fmt.Errorf("prediction response missing required fields: %s", string(body)))
	}

	fetchedAt := parseProviderTime(raw.Datetime)
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	return &domain.PredictionRecord{
		StockSymbol:    *raw.StockName,
		ModelID:        *raw.ModelID,
		CurrentClose:   *raw.CurrentClose,
		PredictedClose: *raw.PredictedClose,
		Status:         *raw.Status,
		FetchedAt:      fetchedAt,
	}, nil
}
