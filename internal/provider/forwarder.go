package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"aironix-backend/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Forwarder relays caller payloads verbatim to the premium compute upstream.
// It holds no state and does no caching; its only job is decoupling callers
// from the upstream's deployment address.
type Forwarder struct {
	client      *http.Client
	upstreamURL string
	tracer      trace.Tracer
}

func NewForwarder(tracer trace.Tracer, upstreamURL string) *Forwarder {
	return &Forwarder{
		client:      &http.Client{Timeout: 60 * time.Second},
		upstreamURL: upstreamURL,
		tracer:      tracer,
	}
}

// Forward posts the payload unmodified and returns the upstream body on
// success. Any upstream failure (network error, timeout, non-2xx) surfaces
// as an upstream-unavailable error carrying the failure detail.
func (f *Forwarder) Forward(ctx context.Context, contentType string, payload []byte) ([]byte, error) {
	_, span := f.tracer.Start(ctx, "forwarder.forward")
	defer span.End()

	if f.upstreamURL == "" {
		return nil, domain.NewUpstreamError(fmt.Errorf("premium upstream url is not configured"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.upstreamURL, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewUpstreamError(err)
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domain.NewUpstreamError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUpstreamError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.NewUpstreamError(fmt.Errorf("upstream error %d: %s", resp.StatusCode, string(body)))
	}

	return body, nil
}
