package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crypto-tracker/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches market listings, coin details, and historical
// price series from the CoinGecko API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
// apiKey may be empty; the free tier works without one at lower limits.
func NewCoinGeckoProvider(tracer trace.Tracer, apiKey string) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchMarkets fetches the top-N market listing ordered by market cap
// descending, with 7-day sparklines and 24h/7d percentage changes.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, vsCurrency string, topN int) ([]domain.Coin, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(topN))
	q.Set("page", "1")
	q.Set("sparkline", "true")
	q.Set("price_change_percentage", "24h,7d")

	body, err := p.doRequest(ctx, p.baseURL+"/coins/markets?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var raw []struct {
		ID            string   `json:"id"`
		Symbol        string   `json:"symbol"`
		Name          string   `json:"name"`
		Image         string   `json:"image"`
		CurrentPrice  float64  `json:"current_price"`
		MarketCap     float64  `json:"market_cap"`
		MarketCapRank int      `json:"market_cap_rank"`
		TotalVolume   float64  `json:"total_volume"`
		Change24h     float64  `json:"price_change_percentage_24h"`
		Change7d      *float64 `json:"price_change_percentage_7d_in_currency"`
		Sparkline     *struct {
			Price []float64 `json:"price"`
		} `json:"sparkline_in_7d"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse markets: %w: %v", domain.ErrMalformedPayload, err)
	}

	coins := make([]domain.Coin, 0, len(raw))
	for _, rc := range raw {
		coin := domain.Coin{
			ID:            rc.ID,
			Symbol:        rc.Symbol,
			Name:          rc.Name,
			Image:         rc.Image,
			CurrentPrice:  rc.CurrentPrice,
			MarketCap:     rc.MarketCap,
			MarketCapRank: rc.MarketCapRank,
			TotalVolume:   rc.TotalVolume,
			Change24hPct:  rc.Change24h,
			Change7dPct:   rc.Change7d,
		}
		if rc.Sparkline != nil {
			coin.Sparkline7d = rc.Sparkline.Price
		}
		coins = append(coins, coin)
	}

	return coins, nil
}

// FetchCoinDetail fetches the extended record for a single coin.
func (p *CoinGeckoProvider) FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-coin-detail")
	defer span.End()

	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	body, err := p.doRequest(ctx, p.baseURL+"/coins/"+url.PathEscape(id)+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch coin detail for %s: %w", id, err)
	}

	var raw struct {
		ID          string `json:"id"`
		Symbol      string `json:"symbol"`
		Name        string `json:"name"`
		Description struct {
			En string `json:"en"`
		} `json:"description"`
		Links struct {
			Homepage []string `json:"homepage"`
		} `json:"links"`
		Image struct {
			Large string `json:"large"`
		} `json:"image"`
		MarketCapRank int `json:"market_cap_rank"`
		MarketData    struct {
			CurrentPrice      map[string]float64 `json:"current_price"`
			MarketCap         map[string]float64 `json:"market_cap"`
			TotalVolume       map[string]float64 `json:"total_volume"`
			Change24h         float64            `json:"price_change_percentage_24h"`
			Change7d          float64            `json:"price_change_percentage_7d"`
			Change30d         float64            `json:"price_change_percentage_30d"`
			Change60d         float64            `json:"price_change_percentage_60d"`
			Change1y          float64            `json:"price_change_percentage_1y"`
			CirculatingSupply float64            `json:"circulating_supply"`
			TotalSupply       float64            `json:"total_supply"`
			MaxSupply         float64            `json:"max_supply"`
			ATH               map[string]float64 `json:"ath"`
			ATHDate           map[string]string  `json:"ath_date"`
			ATL               map[string]float64 `json:"atl"`
			ATLDate           map[string]string  `json:"atl_date"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse coin detail for %s: %w: %v", id, domain.ErrMalformedPayload, err)
	}

	detail := &domain.CoinDetail{
		ID:                raw.ID,
		Symbol:            raw.Symbol,
		Name:              raw.Name,
		Image:             raw.Image.Large,
		Description:       raw.Description.En,
		CurrentPrice:      raw.MarketData.CurrentPrice["usd"],
		MarketCap:         raw.MarketData.MarketCap["usd"],
		MarketCapRank:     raw.MarketCapRank,
		TotalVolume:       raw.MarketData.TotalVolume["usd"],
		Change24hPct:      raw.MarketData.Change24h,
		Change7dPct:       raw.MarketData.Change7d,
		Change30dPct:      raw.MarketData.Change30d,
		Change60dPct:      raw.MarketData.Change60d,
		Change1yPct:       raw.MarketData.Change1y,
		CirculatingSupply: raw.MarketData.CirculatingSupply,
		TotalSupply:       raw.MarketData.TotalSupply,
		MaxSupply:         raw.MarketData.MaxSupply,
		ATH:               raw.MarketData.ATH["usd"],
		ATL:               raw.MarketData.ATL["usd"],
	}
	if len(raw.Links.Homepage) > 0 {
		detail.Homepage = raw.Links.Homepage[0]
	}
	if ts, err := time.Parse(time.RFC3339, raw.MarketData.ATHDate["usd"]); err == nil {
		detail.ATHDate = ts
	}
	if ts, err := time.Parse(time.RFC3339, raw.MarketData.ATLDate["usd"]); err == nil {
		detail.ATLDate = ts
	}

	return detail, nil
}

// FetchMarketChart fetches the raw historical price series for a coin
// over the range's fetch window. Points come back ascending by timestamp.
func (p *CoinGeckoProvider) FetchMarketChart(ctx context.Context, id string, r domain.TimeRange) ([]domain.PricePoint, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-market-chart")
	defer span.End()

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(r.Days()))

	body, err := p.doRequest(ctx, p.baseURL+"/coins/"+url.PathEscape(id)+"/market_chart?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch market chart for %s: %w", id, err)
	}

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse market chart for %s: %w: %v", id, domain.ErrMalformedPayload, err)
	}

	points := make([]domain.PricePoint, 0, len(raw.Prices))
	for _, pt := range raw.Prices {
		if len(pt) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{
			TimestampMs: int64(pt[0]),
			Price:       pt[1],
		})
	}

	return points, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	// The demo API key rides along as a query parameter when configured.
	if p.apiKey != "" {
		rawURL += "&x_cg_demo_api_key=" + url.QueryEscape(p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: coingecko API error %d: %s", domain.ErrNonSuccessStatus, resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
