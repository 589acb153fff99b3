package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

type mockOutboxStore struct {
	mock.Mock
}

func (m *mockOutboxStore) ListUndispatched(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OutboxEvent), args.Error(1)
}

func (m *mockOutboxStore) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockEventSink struct {
	mock.Mock
}

func (m *mockEventSink) Deliver(ctx context.Context, event *models.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestOutboxDispatcher_RunOnce_DeliversAndMarks(t *testing.T) {
	store := new(mockOutboxStore)
	sink := new(mockEventSink)
	dispatcher := NewOutboxDispatcher(store, sink, time.Second)
	ctx := context.Background()

	events := []models.OutboxEvent{
		{ID: uuid.New(), EventType: models.EventOrderDelivered},
		{ID: uuid.New(), EventType: models.EventOrderCompleted},
	}
	store.On("ListUndispatched", ctx, outboxBatchSize).Return(events, nil)
	sink.On("Deliver", ctx, &events[0]).Return(nil)
	sink.On("Deliver", ctx, &events[1]).Return(nil)
	store.On("MarkDispatched", ctx, events[0].ID).Return(nil)
	store.On("MarkDispatched", ctx, events[1].ID).Return(nil)

	dispatcher.runOnce(ctx)

	store.AssertExpectations(t)
	sink.AssertExpectations(t)
}

// Упавшая доставка не помечает событие и не мешает остальным: оно
// останется в очереди и уйдёт на следующем круге.
func TestOutboxDispatcher_RunOnce_FailedDeliveryRetriesLater(t *testing.T) {
	store := new(mockOutboxStore)
	sink := new(mockEventSink)
	dispatcher := NewOutboxDispatcher(store, sink, time.Second)
	ctx := context.Background()

	events := []models.OutboxEvent{
		{ID: uuid.New(), EventType: models.EventOrderDisputed},
		{ID: uuid.New(), EventType: models.EventOrderCancelled},
	}
	store.On("ListUndispatched", ctx, outboxBatchSize).Return(events, nil)
	sink.On("Deliver", ctx, &events[0]).Return(errors.New("база недоступна"))
	sink.On("Deliver", ctx, &events[1]).Return(nil)
	store.On("MarkDispatched", ctx, events[1].ID).Return(nil)

	dispatcher.runOnce(ctx)

	store.AssertExpectations(t)
	sink.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkDispatched", ctx, events[0].ID)
}

func TestOutboxDispatcher_RunOnce_ListError(t *testing.T) {
	store := new(mockOutboxStore)
	sink := new(mockEventSink)
	dispatcher := NewOutboxDispatcher(store, sink, time.Second)
	ctx := context.Background()

	store.On("ListUndispatched", ctx, outboxBatchSize).Return(nil, errors.New("timeout"))

	dispatcher.runOnce(ctx)

	sink.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestNewOutboxDispatcher_DefaultInterval(t *testing.T) {
	dispatcher := NewOutboxDispatcher(nil, nil, -1)
	assert.Equal(t, 5*time.Second, dispatcher.interval)
}
