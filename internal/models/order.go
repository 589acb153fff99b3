package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus — закрытое множество статусов заказа.
// Граф переходов:
//
//	created -> in_progress <-> delivered -> completed
//	                ^ (revision)    |
//	                                v (dispute) -> disputed -> cancelled (refund)
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusDisputed   OrderStatus = "disputed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// AllOrderStatuses перечисляет все валидные статусы.
var AllOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusInProgress,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusDisputed,
	OrderStatusCancelled,
}

// IsTerminal сообщает, является ли статус конечным.
// Из completed и cancelled переходов не существует.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Valid проверяет принадлежность статуса закрытому множеству.
func (s OrderStatus) Valid() bool {
	for _, known := range AllOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderAction — действие над заказом, запускающее переход статуса.
type OrderAction string

const (
	OrderActionPay          OrderAction = "pay"
	OrderActionDeliver      OrderAction = "deliver"
	OrderActionRevision     OrderAction = "revision"
	OrderActionDispute      OrderAction = "dispute"
	OrderActionRefund       OrderAction = "refund"
	OrderActionAutoComplete OrderAction = "auto_complete"
)

// AllOrderActions перечисляет все действия, включая системное auto_complete.
var AllOrderActions = []OrderAction{
	OrderActionPay,
	OrderActionDeliver,
	OrderActionRevision,
	OrderActionDispute,
	OrderActionRefund,
	OrderActionAutoComplete,
}

// MaxRevisions — предел запросов на доработку по одному заказу.
const MaxRevisions = 3

// Order описывает сделку между покупателем и продавцом по одной услуге.
// Цена и заголовок снимаются с услуги в момент покупки и далее не меняются,
// чтобы правка листинга не трогала уже открытые сделки.
type Order struct {
	ID       uuid.UUID `db:"id" json:"id"`
	GigID    uuid.UUID `db:"gig_id" json:"gig_id"`
	GigTitle string    `db:"gig_title" json:"gig_title"`
	GigImage *string   `db:"gig_image" json:"gig_image,omitempty"`
	BuyerID  uuid.UUID `db:"buyer_id" json:"buyer_id"`
	SellerID uuid.UUID `db:"seller_id" json:"seller_id"`
	Price    float64   `db:"price" json:"price"`

	Status OrderStatus `db:"status" json:"status"`

	// Результат последней поставки; перезаписывается при повторной поставке.
	DeliveryFile *string `db:"delivery_file" json:"delivery_file,omitempty"`
	DeliveryNote *string `db:"delivery_note" json:"delivery_note,omitempty"`

	// AutoReleaseAt не NULL тогда и только тогда, когда статус delivered.
	AutoReleaseAt *time.Time `db:"auto_release_at" json:"auto_release_at,omitempty"`

	RevisionsCount int `db:"revisions_count" json:"revisions_count"`

	DisputeReason *string `db:"dispute_reason" json:"dispute_reason,omitempty"`
	RefundReason  *string `db:"refund_reason" json:"refund_reason,omitempty"`

	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"delivered_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// OrderMutation — полный набор изменяемых полей жизненного цикла,
// вычисленный машиной состояний для одного перехода. Применяется
// хранилищем атомарно при условии совпадения ожидаемого статуса.
type OrderMutation struct {
	Status         OrderStatus
	DeliveryFile   *string
	DeliveryNote   *string
	AutoReleaseAt  *time.Time
	RevisionsCount int
	DisputeReason  *string
	RefundReason   *string
	PaidAt         *time.Time
	DeliveredAt    *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
}
