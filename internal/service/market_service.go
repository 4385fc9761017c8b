package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"crypto-tracker/internal/domain"
	"crypto-tracker/internal/series"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	snapshotCacheKey = "markets:snapshot"
	snapshotCacheTTL = 150 * time.Second
)

// MarketProvider is the upstream market-data API.
type MarketProvider interface {
	FetchMarkets(ctx context.Context, vsCurrency string, topN int) ([]domain.Coin, error)
	FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error)
	FetchMarketChart(ctx context.Context, id string, r domain.TimeRange) ([]domain.PricePoint, error)
}

// FavoriteChecker is the read side of the favorites store.
type FavoriteChecker interface {
	IsFavorite(id string) bool
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// MarketService owns the in-memory market snapshot slot. A refresh
// replaces the whole snapshot on success and leaves it untouched on any
// failure; the failure is recorded and surfaced via LastError. The slot
// is last-write-wins under concurrent refreshes.
type MarketService struct {
	tracer   trace.Tracer
	provider MarketProvider
	favs     FavoriteChecker
	redis    RedisClient

	vsCurrency string
	topN       int

	mu       sync.RWMutex
	snapshot *domain.MarketSnapshot
	lastErr  error
}

func NewMarketService(
	tracer trace.Tracer,
	provider MarketProvider,
	favs FavoriteChecker,
	redisClient RedisClient,
	vsCurrency string,
	topN int,
) *MarketService {
	return &MarketService{
		tracer:     tracer,
		provider:   provider,
		favs:       favs,
		redis:      redisClient,
		vsCurrency: vsCurrency,
		topN:       topN,
	}
}

// RefreshMarkets fetches the current listing and installs it as the new
// snapshot. Each coin is tagged with its favorite status as of the fetch.
// On failure the previous snapshot stays installed and the error is both
// returned and retained for LastError.
func (s *MarketService) RefreshMarkets(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "market-service.refresh-markets")
	defer span.End()

	coins, err := s.provider.FetchMarkets(ctx, s.vsCurrency, s.topN)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	if s.favs != nil {
		for i := range coins {
			coins[i].Favorite = s.favs.IsFavorite(coins[i].ID)
		}
	}

	snap := &domain.MarketSnapshot{Coins: coins, FetchedAt: time.Now()}

	s.mu.Lock()
	s.snapshot = snap
	s.lastErr = nil
	s.mu.Unlock()

	s.cacheSnapshot(ctx, snap)
	log.Printf("Refreshed market snapshot (%d coins)", len(coins))
	return nil
}

// Snapshot returns the most recent successful snapshot, or nil before the
// first success.
func (s *MarketService) Snapshot() *domain.MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// LastError returns the error from the most recent refresh, or nil if it
// succeeded. A failed refresh never clears the snapshot.
func (s *MarketService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// FetchDetail retrieves the extended record for one coin. Same
// all-or-nothing policy: an error installs nothing.
func (s *MarketService) FetchDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	_, span := s.tracer.Start(ctx, "market-service.fetch-detail")
	defer span.End()

	return s.provider.FetchCoinDetail(ctx, id)
}

// FetchChart retrieves the historical series for a coin and range and
// reduces it to a display series.
func (s *MarketService) FetchChart(ctx context.Context, id string, r domain.TimeRange) (domain.DisplaySeries, error) {
	_, span := s.tracer.Start(ctx, "market-service.fetch-chart")
	defer span.End()

	points, err := s.provider.FetchMarketChart(ctx, id, r)
	if err != nil {
		return nil, fmt.Errorf("chart for %s (%s): %w", id, r, err)
	}
	return series.Reduce(points, r), nil
}

// LoadCachedSnapshot installs the Redis snapshot mirror if no snapshot is
// present yet, so a restarted process has rows before its first fetch.
// Fails soft.
func (s *MarketService) LoadCachedSnapshot(ctx context.Context) {
	if s.redis == nil {
		return
	}

	data, err := s.redis.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("snapshot cache read error: %v", err)
		}
		return
	}

	var snap domain.MarketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("snapshot cache malformed, ignoring: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		s.snapshot = &snap
	}
}

func (s *MarketService) cacheSnapshot(ctx context.Context, snap *domain.MarketSnapshot) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err == nil {
		err = s.redis.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err()
	}
	if err != nil {
		log.Printf("snapshot cache write error: %v", err)
	}
}
