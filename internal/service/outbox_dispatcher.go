package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigmarket-backend/internal/logger"
	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

const outboxBatchSize = 50

// OutboxStore описывает очередь недоставленных событий.
type OutboxStore interface {
	ListUndispatched(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
}

// EventSink получает события переходов: уведомления пользователю и push
// по вебсокету. Доставка at-least-once, получатель обязан переживать дубли.
type EventSink interface {
	Deliver(ctx context.Context, event *models.OutboxEvent) error
}

// OutboxDispatcher разносит события переходов из outbox во внешние
// стоки. Переход фиксируется раньше события и никогда не откатывается
// из-за неудачной доставки: упавшее событие просто уйдёт на следующем круге.
type OutboxDispatcher struct {
	store    OutboxStore
	sink     EventSink
	interval time.Duration
}

// NewOutboxDispatcher создаёт диспетчер.
func NewOutboxDispatcher(store OutboxStore, sink EventSink, interval time.Duration) *OutboxDispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxDispatcher{store: store, sink: sink, interval: interval}
}

// Run крутит цикл доставки до отмены контекста.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *OutboxDispatcher) runOnce(ctx context.Context) {
	events, err := d.store.ListUndispatched(ctx, outboxBatchSize)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("outbox: не удалось прочитать события")
		}
		return
	}

	for i := range events {
		event := &events[i]
		if err := d.sink.Deliver(ctx, event); err != nil {
			outboxFailed.Inc()
			if logger.Log != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"event_id":   event.ID,
					"event_type": event.EventType,
				}).Warn("outbox: доставка не удалась, повторим позже")
			}
			continue
		}
		if err := d.store.MarkDispatched(ctx, event.ID); err != nil {
			// Событие доставлено, но не помечено: уйдёт повторно.
			if logger.Log != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"event_id": event.ID,
				}).Warn("outbox: не удалось пометить событие доставленным")
			}
			continue
		}
		outboxDispatched.WithLabelValues(event.EventType).Inc()
	}
}
