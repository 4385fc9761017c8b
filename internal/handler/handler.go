package handler

import (
	"crypto-tracker/internal/favorites"
	"crypto-tracker/internal/job"
	"crypto-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer    trace.Tracer
	markets   *service.MarketService
	favs      *favorites.Store
	refresher *job.Refresher
}

func New(tracer trace.Tracer, markets *service.MarketService, favs *favorites.Store, refresher *job.Refresher) *Handler {
	return &Handler{
		tracer:    tracer,
		markets:   markets,
		favs:      favs,
		refresher: refresher,
	}
}

// RegisterRoutes wires the endpoints. Middleware, if any, applies to the
// /api group only; /health stays open for probes.
func (h *Handler) RegisterRoutes(r *gin.Engine, middleware ...gin.HandlerFunc) {
	r.GET("/health", h.Health)

	api := r.Group("/api", middleware...)
	api.GET("/markets", h.GetMarkets)
	api.GET("/coins/:id", h.GetCoin)
	api.GET("/coins/:id/chart", h.GetChart)
	api.GET("/favorites", h.GetFavorites)
	api.POST("/favorites/:id/toggle", h.ToggleFavorite)
	api.POST("/refresh", h.TriggerRefresh)
}
