package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/favorites"
	"crypto-tracker/internal/job"
	"crypto-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubProvider struct {
	coins      []domain.Coin
	detail     *domain.CoinDetail
	points     []domain.PricePoint
	marketsErr error
	chartErr   error
}

func (s *stubProvider) FetchMarkets(ctx context.Context, vsCurrency string, topN int) ([]domain.Coin, error) {
	if s.marketsErr != nil {
		return nil, s.marketsErr
	}
	return s.coins, nil
}

func (s *stubProvider) FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	return s.detail, nil
}

func (s *stubProvider) FetchMarketChart(ctx context.Context, id string, r domain.TimeRange) ([]domain.PricePoint, error) {
	if s.chartErr != nil {
		return nil, s.chartErr
	}
	return s.points, nil
}

func newTestRouter(provider *stubProvider, favs *favorites.Store) (*gin.Engine, *service.MarketService) {
	gin.SetMode(gin.TestMode)
	markets := service.NewMarketService(testTracer, provider, favs, nil, "usd", 100)
	refresher := job.NewRefresher(testTracer, markets, 120)
	h := New(testTracer, markets, favs, refresher)

	r := gin.New()
	h.RegisterRoutes(r)
	return r, markets
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetMarketsBeforeFirstFetch(t *testing.T) {
	r, _ := newTestRouter(&stubProvider{}, favorites.NewStore(nil))

	w := do(r, "GET", "/api/markets")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first snapshot, got %d", w.Code)
	}
}

func TestGetMarketsFiltersBySearch(t *testing.T) {
	provider := &stubProvider{coins: []domain.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCapRank: 2},
	}}
	r, markets := newTestRouter(provider, favorites.NewStore(nil))
	if err := markets.RefreshMarkets(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	w := do(r, "GET", "/api/markets?search=eth")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Coins []domain.Coin `json:"coins"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Coins) != 1 || resp.Coins[0].ID != "ethereum" {
		t.Fatalf("unexpected rows: %+v", resp.Coins)
	}
}

func TestGetMarketsFavoritesTab(t *testing.T) {
	provider := &stubProvider{coins: []domain.Coin{
		{ID: "btc", Symbol: "btc", Name: "Bitcoin", MarketCapRank: 1},
		{ID: "eth", Symbol: "eth", Name: "Ethereum", MarketCapRank: 2},
	}}
	favs := favorites.NewStore(nil)
	favs.Toggle(context.Background(), "eth")

	r, markets := newTestRouter(provider, favs)
	_ = markets.RefreshMarkets(context.Background())

	w := do(r, "GET", "/api/markets?tab=favorites")
	var resp struct {
		Coins []domain.Coin `json:"coins"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Coins) != 1 || resp.Coins[0].ID != "eth" || !resp.Coins[0].Favorite {
		t.Fatalf("unexpected favorites rows: %+v", resp.Coins)
	}
}

func TestGetMarketsServesStaleSnapshotWithError(t *testing.T) {
	provider := &stubProvider{coins: []domain.Coin{{ID: "btc", Symbol: "btc", Name: "Bitcoin"}}}
	r, markets := newTestRouter(provider, favorites.NewStore(nil))
	_ = markets.RefreshMarkets(context.Background())

	provider.marketsErr = errors.New("coingecko API error 429")
	_ = markets.RefreshMarkets(context.Background())

	w := do(r, "GET", "/api/markets")
	if w.Code != http.StatusOK {
		t.Fatalf("stale snapshot should still serve 200, got %d", w.Code)
	}
	var resp struct {
		Coins []domain.Coin `json:"coins"`
		Error string        `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Coins) != 1 {
		t.Fatalf("prior snapshot should remain visible: %+v", resp.Coins)
	}
	if resp.Error == "" {
		t.Fatal("refresh error should ride along with the stale snapshot")
	}
}

func TestGetMarketsEmptyStateMessage(t *testing.T) {
	provider := &stubProvider{coins: []domain.Coin{{ID: "btc", Symbol: "btc", Name: "Bitcoin"}}}
	r, markets := newTestRouter(provider, favorites.NewStore(nil))
	_ = markets.RefreshMarkets(context.Background())

	w := do(r, "GET", "/api/markets?tab=favorites")
	var resp struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Message == "" {
		t.Fatal("expected empty-state message for empty favorites tab")
	}
}

func TestGetChart(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, 50)
	for i := range points {
		points[i] = domain.PricePoint{TimestampMs: base.Add(time.Duration(i) * time.Hour).UnixMilli(), Price: float64(i)}
	}
	r, _ := newTestRouter(&stubProvider{points: points}, favorites.NewStore(nil))

	w := do(r, "GET", "/api/coins/bitcoin/chart?range=7d")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Range  string             `json:"range"`
		Points []domain.ChartPoint `json:"points"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Range != "7d" {
		t.Fatalf("unexpected range: %s", resp.Range)
	}
	// step = 50/7 = 7, kept indices 0,7,...,49
	if len(resp.Points) != 8 {
		t.Fatalf("expected 8 points, got %d", len(resp.Points))
	}
}

func TestGetChartRejectsBadRange(t *testing.T) {
	r, _ := newTestRouter(&stubProvider{}, favorites.NewStore(nil))

	w := do(r, "GET", "/api/coins/bitcoin/chart?range=2w")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetChartUpstreamError(t *testing.T) {
	r, _ := newTestRouter(&stubProvider{chartErr: errors.New("timeout")}, favorites.NewStore(nil))

	w := do(r, "GET", "/api/coins/bitcoin/chart")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestGetCoin(t *testing.T) {
	detail := &domain.CoinDetail{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: 97000}
	r, _ := newTestRouter(&stubProvider{detail: detail}, favorites.NewStore(nil))

	w := do(r, "GET", "/api/coins/bitcoin")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Coin     domain.CoinDetail `json:"coin"`
		Favorite bool              `json:"favorite"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Coin.Name != "Bitcoin" || resp.Favorite {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	favs := favorites.NewStore(nil)
	r, _ := newTestRouter(&stubProvider{}, favs)

	w := do(r, "POST", "/api/favorites/bitcoin/toggle")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !favs.IsFavorite("bitcoin") {
		t.Fatal("toggle endpoint should add the favorite")
	}

	_ = do(r, "POST", "/api/favorites/bitcoin/toggle")
	if favs.IsFavorite("bitcoin") {
		t.Fatal("second toggle should remove the favorite")
	}
}

func TestTriggerRefreshEndpoint(t *testing.T) {
	r, _ := newTestRouter(&stubProvider{}, favorites.NewStore(nil))

	w := do(r, "POST", "/api/refresh")
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
}
