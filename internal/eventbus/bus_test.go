package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/shopspring/decimal"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := New(zap.NewNop(), 16)

	var mu sync.Mutex
	got := map[string]int{}
	record := func(name string) Handler {
		return HandlerFunc(func(_ context.Context, evt event.DomainEvent) error {
			mu.Lock()
			got[name]++
			mu.Unlock()
			return nil
		})
	}
	bus.Subscribe("first", record("first"))
	bus.Subscribe("second", record("second"))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)

	evt := event.NewPaymentRecorded(1, 1, 1, "101", decimal.NewFromInt(5000), time.Now())
	bus.Publish(ctx, evt)
	bus.Publish(ctx, evt)

	time.Sleep(50 * time.Millisecond)
	cancel()
	bus.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, got["first"])
	assert.Equal(t, 2, got["second"])
}

func TestBusDrainsOnShutdown(t *testing.T) {
	bus := New(zap.NewNop(), 16)

	var mu sync.Mutex
	count := 0
	bus.Subscribe("counter", HandlerFunc(func(context.Context, event.DomainEvent) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	evt := event.NewBuildingCreated(1, "Sunrise", 3, 30)
	for i := 0; i < 5; i++ {
		bus.Publish(ctx, evt)
	}

	bus.Start(ctx)
	cancel()
	bus.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count, "buffered events are drained before exit")
}
