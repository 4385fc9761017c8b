package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Refresher periodically refreshes the market snapshot. The periodic
// ticker and manual triggers are just independent callers of the same
// refresh operation; the snapshot slot itself is last-write-wins.
type Refresher struct {
	tracer   trace.Tracer
	markets  MarketRefresher
	interval time.Duration
	kick     chan struct{}
}

type MarketRefresher interface {
	RefreshMarkets(ctx context.Context) error
}

func NewRefresher(tracer trace.Tracer, markets MarketRefresher, intervalSecs int) *Refresher {
	return &Refresher{
		tracer:   tracer,
		markets:  markets,
		interval: time.Duration(intervalSecs) * time.Second,
		kick:     make(chan struct{}, 1),
	}
}

// Trigger requests an immediate refresh. Non-blocking; a trigger while
// one is already pending is dropped.
func (r *Refresher) Trigger() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Start runs an immediate refresh, then refreshes on every tick or
// manual trigger. Blocks until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	log.Println("Market refresher starting...")

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Market refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.kick:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.markets.RefreshMarkets(ctx); err != nil {
		log.Printf("market refresh error: %v", err)
	}
}
