package domain

import "time"

// Coin is one row of the CoinGecko /coins/markets listing.
// Favorite is derived from the favorites store at snapshot time and at
// projection time; it is never persisted on the coin itself.
type Coin struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Image         string    `json:"image"`
	CurrentPrice  float64   `json:"current_price"`
	MarketCap     float64   `json:"market_cap"`
	MarketCapRank int       `json:"market_cap_rank"`
	TotalVolume   float64   `json:"total_volume"`
	Change24hPct  float64   `json:"price_change_percentage_24h"`
	Change7dPct   *float64  `json:"price_change_percentage_7d_in_currency,omitempty"`
	Sparkline7d   []float64 `json:"sparkline_7d,omitempty"`
	Favorite      bool      `json:"favorite"`
}

// MarketSnapshot is the full result of the most recent successful listing
// fetch. Coins keep the upstream market-cap-descending order.
type MarketSnapshot struct {
	Coins     []Coin    `json:"coins"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CoinDetail is the extended record from /coins/{id}.
type CoinDetail struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	Description   string  `json:"description"`
	Homepage      string  `json:"homepage"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank"`
	TotalVolume   float64 `json:"total_volume"`

	Change24hPct float64 `json:"price_change_percentage_24h"`
	Change7dPct  float64 `json:"price_change_percentage_7d"`
	Change30dPct float64 `json:"price_change_percentage_30d"`
	Change60dPct float64 `json:"price_change_percentage_60d"`
	Change1yPct  float64 `json:"price_change_percentage_1y"`

	CirculatingSupply float64 `json:"circulating_supply"`
	TotalSupply       float64 `json:"total_supply"`
	MaxSupply         float64 `json:"max_supply"`

	ATH     float64   `json:"ath"`
	ATHDate time.Time `json:"ath_date"`
	ATL     float64   `json:"atl"`
	ATLDate time.Time `json:"atl_date"`
}

// PricePoint is one raw sample of a historical price series.
type PricePoint struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Price       float64 `json:"price"`
}

// ChartPoint is one render-ready sample of a down-sampled series.
type ChartPoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// DisplaySeries is the bounded, render-ready price series for a chart.
type DisplaySeries []ChartPoint
