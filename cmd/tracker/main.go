package main

import (
	"context"
	"log"
	"os"

	"crypto-tracker/internal/cache"
	"crypto-tracker/internal/config"
	"crypto-tracker/internal/favorites"
	"crypto-tracker/internal/provider"
	"crypto-tracker/internal/service"
	"crypto-tracker/internal/tui"
	"crypto-tracker/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	initRedisFunc  = cache.InitRedis
	initTracerFunc = tracing.InitTracer
	runProgramFunc = func(p *tea.Program) error { _, err := p.Run(); return err }
)

// Runs the dashboard in the local terminal. The model drives its own
// refresh loop, so no background refresher is started here.
func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	favs := favorites.NewStore(cache.Client)
	favs.Load(ctx)

	cgProvider := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoAPIKey)
	markets := service.NewMarketService(tracer, cgProvider, favs, cache.Client, cfg.VsCurrency, cfg.TopN)
	markets.LoadCachedSnapshot(ctx)

	model := tui.NewModel(tui.Services{
		Markets:   markets,
		Favorites: favs,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if err := runProgramFunc(p); err != nil {
		log.Fatalf("dashboard error: %v", err)
	}
}
