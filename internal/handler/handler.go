package handler

import (
	"context"
	"net/http"

	"aironix-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type NewsReader interface {
	GetLatestNews(ctx context.Context, limit int) ([]domain.NewsItem, error)
}

type PredictionReader interface {
	GetPredictions(ctx context.Context, symbol string, modelID, limit int) ([]domain.PredictionRecord, error)
	GetLatestPerGroup(ctx context.Context) ([]domain.PredictionRecord, error)
	ClearPredictions(ctx context.Context) error
}

type PremiumForwarder interface {
	Forward(ctx context.Context, contentType string, payload []byte) ([]byte, error)
}

type Handler struct {
	tracer      trace.Tracer
	news        NewsReader
	predictions PredictionReader
	premium     PremiumForwarder
}

func New(tracer trace.Tracer, news NewsReader, predictions PredictionReader, premium PremiumForwarder) *Handler {
	return &Handler{
		tracer:      tracer,
		news:        news,
		predictions: predictions,
		premium:     premium,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/news", h.GetNews)
	r.GET("/api/predictions", h.GetPredictions)
	r.GET("/api/predictions/latest", h.GetLatestPredictions)
	r.DELETE("/api/predictions", h.ClearPredictions)
	r.POST("/api/premium", h.ForwardPremium)
}

// errorResponse maps the service error taxonomy onto HTTP statuses. Anything
// without a recognized kind is a plain internal error.
func errorResponse(c *gin.Context, err error) {
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.ErrKindValidation:
		status = http.StatusBadRequest
	case domain.ErrKindUpstream:
		status = http.StatusBadGateway
	}

	body := gin.H{"error": err.Error()}
	if kind != "" {
		body["kind"] = string(kind)
	}
	c.JSON(status, body)
}
