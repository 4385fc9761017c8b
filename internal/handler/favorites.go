package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetFavorites godoc
// @Summary      List favorite coin ids
// @Tags         favorites
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/favorites [get]
func (h *Handler) GetFavorites(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-favorites")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"favorites": h.favs.IDs()})
}

// ToggleFavorite godoc
// @Summary      Toggle a coin's favorite status
// @Description  Adds the coin if absent, removes it if present; persists the whole set
// @Tags         favorites
// @Produce      json
// @Param        id  path  string  true  "Coin id (e.g., bitcoin)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/favorites/{id}/toggle [post]
func (h *Handler) ToggleFavorite(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.toggle-favorite")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("coin.id", id))

	member := h.favs.Toggle(ctx, id)
	c.JSON(http.StatusOK, gin.H{"id": id, "favorite": member})
}

// TriggerRefresh godoc
// @Summary      Request an immediate market snapshot refresh
// @Tags         markets
// @Produce      json
// @Success      202  {object}  map[string]string
// @Router       /api/refresh [post]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	h.refresher.Trigger()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}
