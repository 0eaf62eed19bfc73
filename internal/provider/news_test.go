package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"aironix-backend/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestFetchNewsNormalizesBatch(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "https://news.example/api/1/news?apikey=k")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Fatalf("expected GET, got %s", req.Method)
		}
		body := `{"results":[
			{"title":"Sensex rallies","description":"Markets up","pubDate":"2024-01-10 09:30:00","link":"https://news.example/a","image_url":"https://img.example/a.jpg"},
			{"title":"RBI holds rates","description":"No change","pubDate":"2024-01-09 15:00:00","link":"https://news.example/b"}
		]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchNews(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Sensex rallies" || items[0].ImageURL != "https://img.example/a.jpg" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].ImageURL != "" {
		t.Fatalf("missing image_url should normalize to empty string, got %q", items[1].ImageURL)
	}
	want := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	if !items[0].PublishedAt.Equal(want) {
		t.Fatalf("unexpected published_at: %v", items[0].PublishedAt)
	}
}

func TestFetchNewsKeepsFirstTenOnly(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "https://news.example/feed")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		var buf bytes.Buffer
		buf.WriteString(`{"results":[`)
		for i := 0; i < 15; i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(&buf, `{"title":"headline %d","pubDate":"2024-01-%02d 00:00:00"}`, i, i+1)
		}
		buf.WriteString(`]}`)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(&buf),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchNews(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected batch cut at 10, got %d", len(items))
	}
	if items[9].Title != "headline 9" {
		t.Fatalf("expected the first ten items of the batch, got %+v", items[9])
	}
}

func TestFetchNewsSkipsUntitledItems(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "https://news.example/feed")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := `{"results":[{"title":"  "},{"title":"Kept"}]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchNews(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Kept" {
		t.Fatalf("expected only the titled item, got %+v", items)
	}
}

func TestFetchNewsErrorStatus(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "https://news.example/feed")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(bytes.NewBufferString(`{"message":"rate limited"}`)),
			Header:     make(http.Header),
		}, nil
	})}

	_, err := p.FetchNews(context.Background())
	if !domain.IsKind(err, domain.ErrKindFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestFetchNewsUnconfigured(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"), "")
	_, err := p.FetchNews(context.Background())
	if !domain.IsKind(err, domain.ErrKindFetch) {
		t.Fatalf("expected fetch error for missing url, got %v", err)
	}
}
