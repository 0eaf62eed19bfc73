package handler

import (
	"net/http"
	"strconv"

	"aironix-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const defaultNewsLimit = 9

// GetNews godoc
// @Summary      Get the latest news articles
// @Description  Returns cached news articles ordered newest first
// @Tags         news
// @Produce      json
// @Param        limit  query  int  false  "Number of articles (default 9, max 20)"  default(9)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	limit := defaultNewsLimit
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= domain.DefaultNewsRetentionCap {
			limit = n
		}
	}
	span.SetAttributes(attribute.Int("limit", limit))

	items, err := h.news.GetLatestNews(ctx, limit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"news": items})
}
