package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ForwardPremium godoc
// @Summary      Forward a request to the premium upstream
// @Description  Relays the request body to the configured premium provider and returns its response verbatim
// @Tags         premium
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/premium [post]
func (h *Handler) ForwardPremium(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.forward-premium")
	defer span.End()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	body, err := h.premium.Forward(ctx, c.ContentType(), payload)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
