package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

func TestAutoReleaseScheduler_RunOnce(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestOrderService(store, nil)
	ctx := context.Background()

	due1 := seedOrder(store, models.OrderStatusDelivered)
	due2 := seedOrder(store, models.OrderStatusDelivered)
	notDue := seedOrder(store, models.OrderStatusDelivered)
	inProgress := seedOrder(store, models.OrderStatusInProgress)

	// Сдвигаем часы за дедлайн первых двух, третий оставляем в будущем.
	now := due1.AutoReleaseAt.Add(time.Hour)
	future := now.Add(48 * time.Hour)
	store.mu.Lock()
	store.orders[due2.ID].AutoReleaseAt = &now
	store.orders[notDue.ID].AutoReleaseAt = &future
	store.mu.Unlock()
	svc.now = func() time.Time { return now }

	scheduler := NewAutoReleaseScheduler(svc, time.Second)
	scheduler.runOnce(ctx)

	for _, id := range []struct {
		order  *models.Order
		status models.OrderStatus
	}{
		{due1, models.OrderStatusCompleted},
		{due2, models.OrderStatusCompleted},
		{notDue, models.OrderStatusDelivered},
		{inProgress, models.OrderStatusInProgress},
	} {
		got, err := store.GetByID(ctx, id.order.ID)
		require.NoError(t, err)
		assert.Equal(t, id.status, got.Status)
	}

	// По событию на каждый завершённый заказ.
	assert.Equal(t, []string{models.EventOrderCompleted, models.EventOrderCompleted}, store.eventTypes())

	// Повторный проход ничего не находит и не плодит событий.
	scheduler.runOnce(ctx)
	assert.Len(t, store.eventTypes(), 2)
}

func TestAutoReleaseScheduler_RunStopsOnContextCancel(t *testing.T) {
	store := newFakeOrderStore()
	svc := newTestOrderService(store, nil)

	scheduler := NewAutoReleaseScheduler(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("планировщик не остановился по отмене контекста")
	}
}

func TestNewAutoReleaseScheduler_DefaultInterval(t *testing.T) {
	scheduler := NewAutoReleaseScheduler(nil, 0)
	assert.Equal(t, 30*time.Second, scheduler.interval)
}
