package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-tracker/internal/bot"
	"crypto-tracker/internal/cache"
	"crypto-tracker/internal/config"
	"crypto-tracker/internal/favorites"
	"crypto-tracker/internal/handler"
	"crypto-tracker/internal/job"
	"crypto-tracker/internal/provider"
	"crypto-tracker/internal/service"
	"crypto-tracker/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-tracker/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer, apiKey string) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer, apiKey)
	}
	newMarketServiceFunc   = service.NewMarketService
	newRefresherFunc       = job.NewRefresher
	startRefresherFunc     = func(r *job.Refresher, ctx context.Context) { go r.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Tracker API
// @version         1.0
// @description     Market dashboard API: cached CoinGecko listings, coin detail, charts and favorites.

// @host      localhost:8080
// @BasePath  /
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

	cgProvider := newCoinGeckoProviderFunc(tracer, cfg.CoinGeckoAPIKey)
	markets := newMarketServiceFunc(tracer, cgProvider, favs, cache.Client, cfg.VsCurrency, cfg.TopN)
	markets.LoadCachedSnapshot(ctx)

	refresher := newRefresherFunc(tracer, markets, cfg.RefreshSecs)
	startRefresherFunc(refresher, ctx)

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(markets, favs)

	h := newHandlerFunc(tracer, markets, favs, refresher)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-tracker"))

	h.RegisterRoutes(r, handler.APIKeyAuth(cfg.HTTPAPIKey))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
