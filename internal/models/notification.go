package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Типы событий, порождаемых переходами заказа. Первые два — чистые
// уведомления, последние два дополнительно запускают движение средств
// (выплату продавцу либо возврат покупателю) во внешнем леджере.
const (
	EventOrderDelivered = "order_delivered"
	EventOrderDisputed  = "order_disputed"
	EventOrderCompleted = "order_completed"
	EventOrderCancelled = "order_cancelled"
)

// OutboxEvent — запись о побочном эффекте перехода. Пишется в одной
// транзакции с самим переходом и доставляется диспетчером отдельно,
// поэтому гарантия — at-least-once, а не ровно один раз.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	OrderID      uuid.UUID       `db:"order_id" json:"order_id"`
	EventType    string          `db:"event_type" json:"event_type"`
	RecipientID  uuid.UUID       `db:"recipient_id" json:"recipient_id"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	DispatchedAt *time.Time      `db:"dispatched_at" json:"dispatched_at,omitempty"`
}

// Notification хранит доставленное пользователю уведомление.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
