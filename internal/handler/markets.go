package handler

import (
	"net/http"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/view"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetMarkets godoc
// @Summary      Get the current market listing
// @Description  Returns the latest market snapshot, filtered by search term and tab
// @Tags         markets
// @Produce      json
// @Param        search  query  string  false  "Case-insensitive match against name or symbol"
// @Param        tab     query  string  false  "all or favorites"  default(all)
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-markets")
	defer span.End()

	term := c.Query("search")
	tab := view.TabAll
	if c.Query("tab") == string(view.TabFavorites) {
		tab = view.TabFavorites
	}
	span.SetAttributes(attribute.String("search", term), attribute.String("tab", string(tab)))

	snapshot := h.markets.Snapshot()
	if snapshot == nil {
		resp := gin.H{"error": "no market data yet"}
		if err := h.markets.LastError(); err != nil {
			resp["error"] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	rows := view.Project(snapshot, term, h.favs, tab)

	resp := gin.H{
		"coins":      rows,
		"fetched_at": snapshot.FetchedAt,
	}
	if err := h.markets.LastError(); err != nil {
		// stale snapshot still served; the refresh failure rides along
		resp["error"] = err.Error()
	}
	if len(rows) == 0 {
		resp["message"] = view.EmptyMessage(tab, term)
	}

	c.JSON(http.StatusOK, resp)
}

// GetCoin godoc
// @Summary      Get extended detail for one coin
// @Description  Returns description, links, and the market data block for a coin
// @Tags         markets
// @Produce      json
// @Param        id  path  string  true  "Coin id (e.g., bitcoin)"
// @Success      200  {object}  domain.CoinDetail
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id} [get]
func (h *Handler) GetCoin(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coin")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("coin.id", id))

	detail, err := h.markets.FetchDetail(ctx, id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coin":     detail,
		"favorite": h.favs.IsFavorite(id),
	})
}

// GetChart godoc
// @Summary      Get the down-sampled price chart for a coin
// @Description  Returns a bounded display series for the requested time range
// @Tags         markets
// @Produce      json
// @Param        id     path   string  true   "Coin id (e.g., bitcoin)"
// @Param        range  query  string  false  "Time range (24h, 7d, 30d, 90d, 1y)"  default(7d)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id}/chart [get]
func (h *Handler) GetChart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chart")
	defer span.End()

	id := c.Param("id")
	rangeParam := c.DefaultQuery("range", string(domain.Range7d))
	r, ok := domain.ParseTimeRange(rangeParam)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "unsupported range: " + rangeParam,
			"supported_ranges": domain.TimeRanges,
		})
		return
	}
	span.SetAttributes(attribute.String("coin.id", id), attribute.String("range", string(r)))

	chart, err := h.markets.FetchChart(ctx, id, r)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"range":  r,
		"points": chart,
	})
}
