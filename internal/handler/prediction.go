package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetPredictions godoc
// @Summary      Get prediction history for a stock
// @Description  Returns stored predictions for a symbol, newest first, optionally filtered by model
// @Tags         predictions
// @Produce      json
// @Param        symbol    query  string  true   "Stock symbol (e.g., HDFCBANK)"
// @Param        model_id  query  int     false  "Restrict to a single model"
// @Param        limit     query  int     false  "Number of records (default 50, max 500)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/predictions [get]
func (h *Handler) GetPredictions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-predictions")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	modelID := 0
	if m := c.Query("model_id"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "model_id must be a positive integer"})
			return
		}
		modelID = n
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.predictions.GetPredictions(ctx, symbol, modelID, limit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":      symbol,
		"predictions": records,
	})
}

// GetLatestPredictions godoc
// @Summary      Get the newest prediction per stock and model
// @Description  Returns exactly one record per (symbol, model) pair that has ever been ingested
// @Tags         predictions
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/predictions/latest [get]
func (h *Handler) GetLatestPredictions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest-predictions")
	defer span.End()

	records, err := h.predictions.GetLatestPerGroup(ctx)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": records})
}

// ClearPredictions godoc
// @Summary      Delete all stored predictions
// @Description  Empties the prediction history table
// @Tags         predictions
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/predictions [delete]
func (h *Handler) ClearPredictions(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.clear-predictions")
	defer span.End()

	if err := h.predictions.ClearPredictions(ctx); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
