package main

import (
	"context"
	"testing"
	"time"

	"crypto-tracker/internal/cache"
	"crypto-tracker/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origRunProgram := runProgramFunc
	defer func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		runProgramFunc = origRunProgram
	}()

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{RedisURL: "localhost:6379", RefreshSecs: 1, TopN: 10, VsCurrency: "usd"}
	}
	initRedisFunc = func(context.Context) {
		cache.Client = redis.NewClient(&redis.Options{Addr: "localhost:1"})
	}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	runProgramFunc = func(*tea.Program) error { return nil }

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}
