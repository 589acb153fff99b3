package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

// NotificationPusher толкает событие онлайн-подключениям пользователя
// (вебсокет-хаб). Недоставленный push не считается ошибкой доставки:
// уведомление уже сохранено и будет показано при следующем заходе.
type NotificationPusher interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// OrderEventSink — сток событий переходов заказа: сохраняет уведомление
// получателю и дублирует его push-ем по вебсокету.
type OrderEventSink struct {
	notifications *NotificationService
	pusher        NotificationPusher
}

// NewOrderEventSink создаёт сток.
func NewOrderEventSink(notifications *NotificationService, pusher NotificationPusher) *OrderEventSink {
	return &OrderEventSink{notifications: notifications, pusher: pusher}
}

// Deliver реализует EventSink. Ошибка сохранения уведомления оставляет
// событие в outbox для повтора; дубли возможны и допустимы.
func (s *OrderEventSink) Deliver(ctx context.Context, event *models.OutboxEvent) error {
	var data json.RawMessage = event.Payload
	if _, err := s.notifications.CreateNotification(ctx, event.RecipientID, event.EventType, data); err != nil {
		return err
	}

	if s.pusher != nil {
		// Push — best effort.
		_ = s.pusher.BroadcastToUser(event.RecipientID, event.EventType, data)
	}
	return nil
}
