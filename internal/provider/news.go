package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aironix-backend/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// newsBatchLimit caps how many items of a provider batch are normalized;
// the rest of the batch is discarded.
const newsBatchLimit = 10

// NewsProvider fetches headline batches from the configured news API
// (a newsdata.io-style endpoint returning {"results": [...]}).
type NewsProvider struct {
	client *http.Client
	apiURL string
	tracer trace.Tracer
}

func NewNewsProvider(tracer trace.Tracer, apiURL string) *NewsProvider {
	return &NewsProvider{
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: apiURL,
		tracer: tracer,
	}
}

// FetchNews fetches one provider batch and normalizes it into NewsItems.
// Items without a title are skipped; a missing image_url becomes "".
// All failures surface as a fetch error carrying the source identity.
func (p *NewsProvider) FetchNews(ctx context.Context) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "news-provider.fetch-news")
	defer span.End()

	if strings.TrimSpace(p.apiURL) == "" {
		return nil, domain.NewFetchError("news", fmt.Errorf("news api url is not configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL, nil)
	if err != nil {
		return nil, domain.NewFetchError("news", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, domain.NewFetchError("news", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, domain.NewFetchError("news", fmt.Errorf("news api error %d: %s", resp.StatusCode, string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError("news", err)
	}

	var raw struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PubDate     string `json:"pubDate"`
			Link        string `json:"link"`
			ImageURL    string `json:"image_url"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.NewFetchError("news", fmt.Errorf("parse news payload: %w", err))
	}

	items := make([]domain.NewsItem, 0, newsBatchLimit)
	for i, row := range raw.Results {
		if i >= newsBatchLimit {
			break
		}
		title := strings.TrimSpace(row.Title)
		if title == "" {
			continue
		}
		publishedAt := parseProviderTime(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Description: row.Description,
			PublishedAt: publishedAt,
			Link:        row.Link,
			ImageURL:    row.ImageURL,
		})
	}

	return items, nil
}
