package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// recordingHandler collects events it receives.
type recordingHandler struct {
	mu     sync.Mutex
	name   string
	events []shared.Event
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, event shared.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(Config{AsyncMode: false, EnableMetrics: true})
}

func TestPublish_RoutesByEventType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	funded := &recordingHandler{name: "funded"}
	all := &recordingHandler{name: "all"}

	require.NoError(t, bus.Subscribe(shared.EventProposalFunded, funded))
	require.NoError(t, bus.SubscribeAll(all))

	require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventProposalFunded, "p1")))
	require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventReviewSubmitted, "rev1")))

	assert.Equal(t, 1, funded.count())
	assert.Equal(t, 2, all.count())
}

func TestPublish_HandlerErrorNotPropagated(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	failing := &recordingHandler{name: "failing", err: errors.New("boom")}
	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, failing))

	// Ошибка обработчика не доходит до публикующего.
	err := bus.Publish(shared.NewBaseEvent(shared.EventBadgeUnlocked, "r1"))
	assert.NoError(t, err)
	assert.Equal(t, 1, failing.count())

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Less(t, snap.HandlerSuccessRate, 1.0)
}

func TestPublish_AsyncCompletesBeforeClose(t *testing.T) {
	bus := NewInMemoryEventBus(Config{AsyncMode: true, WorkerPoolSize: 2})

	h := &recordingHandler{name: "async"}
	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, h))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventPointsAwarded, "r1")))
	}

	// Close ждёт все запущенные обработчики.
	require.NoError(t, bus.Close())
	assert.Equal(t, 10, h.count())
}

// slowHandler записывает события с искусственной задержкой.
type slowHandler struct {
	recordingHandler
	delay time.Duration
}

func (h *slowHandler) Handle(ctx context.Context, event shared.Event) error {
	time.Sleep(h.delay)
	return h.recordingHandler.Handle(ctx, event)
}

func TestClose_DrainsSaturatedWorkerPool(t *testing.T) {
	bus := NewInMemoryEventBus(Config{AsyncMode: true, WorkerPoolSize: 1})

	h := &slowHandler{recordingHandler: recordingHandler{name: "slow"}, delay: 5 * time.Millisecond}
	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, h))

	// Пул из одного воркера: большинство горутин ждут слот в момент Close.
	for i := 0; i < 8; i++ {
		require.NoError(t, bus.Publish(shared.NewBaseEvent(shared.EventPointsAwarded, "r1")))
	}

	require.NoError(t, bus.Close())
	assert.Equal(t, 8, h.count())
}

func TestClosedBusRejectsOperations(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewBaseEvent(shared.EventProposalCreated, "p1"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventProposalCreated, &recordingHandler{name: "late"})
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Повторный Close безопасен.
	assert.NoError(t, bus.Close())
}

func TestSubscribeNilHandlerRejected(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventProposalCreated, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}
