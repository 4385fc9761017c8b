package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestNewRefresherInterval(t *testing.T) {
	refresher := NewRefresher(testTracer, &stubMarkets{}, 120)
	if refresher.interval != 120*time.Second {
		t.Fatalf("expected 120s interval, got %v", refresher.interval)
	}
}

func TestRefresherRunsImmediately(t *testing.T) {
	t.Parallel()

	stub := &stubMarkets{}
	refresher := NewRefresher(testTracer, stub, 3600)

	ctx, cancel := context.WithCancel(context.Background())
	go refresher.Start(ctx)

	eventually(t, func() bool { return stub.calls.Load() >= 1 })
	cancel()
}

func TestRefresherManualTrigger(t *testing.T) {
	t.Parallel()

	stub := &stubMarkets{}
	refresher := NewRefresher(testTracer, stub, 3600)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go refresher.Start(ctx)

	eventually(t, func() bool { return stub.calls.Load() == 1 })
	refresher.Trigger()
	eventually(t, func() bool { return stub.calls.Load() == 2 })
}

func TestTriggerNonBlockingWhenPending(t *testing.T) {
	t.Parallel()

	refresher := NewRefresher(testTracer, &stubMarkets{}, 3600)
	// no Start loop draining; repeated triggers must not block
	for i := 0; i < 5; i++ {
		refresher.Trigger()
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

type stubMarkets struct {
	calls atomic.Int64
}

func (s *stubMarkets) RefreshMarkets(ctx context.Context) error {
	s.calls.Add(1)
	return nil
}
