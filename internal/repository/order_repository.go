package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStatusConflict возвращается, когда ожидаемый статус заказа
	// уже не совпадает с фактическим: конкурирующий переход успел раньше.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

const orderColumns = `
	id, gig_id, gig_title, gig_image, buyer_id, seller_id, price, status,
	delivery_file, delivery_note, auto_release_at, revisions_count,
	dispute_reason, refund_reason,
	paid_at, delivered_at, completed_at, cancelled_at, created_at, updated_at
`

// OrderRepository отвечает за хранение заказов. Заказы никогда не
// удаляются физически: завершённые и отменённые остаются как аудит сделки.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт новый экземпляр.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id %w", err)
	}
	return &order, nil
}

// Create сохраняет новый заказ со снимком цены и заголовка услуги.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (gig_id, gig_title, gig_image, buyer_id, seller_id, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		order.GigID, order.GigTitle, order.GigImage,
		order.BuyerID, order.SellerID, order.Price, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("order repository: create %w", err)
	}
	return nil
}

// ApplyTransition атомарно применяет переход статуса: UPDATE выполняется
// только если текущий статус совпадает с ожидаемым (compare-and-swap),
// иначе возвращается ErrStatusConflict и вызывающий перечитывает заказ.
// Запись в outbox идёт в той же транзакции, поэтому событие не может
// появиться без перехода и наоборот.
func (r *OrderRepository) ApplyTransition(ctx context.Context, orderID uuid.UUID, from models.OrderStatus, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error) {
	return r.applyTransition(ctx, orderID, from, nil, mut, event)
}

// ApplyAutoComplete — CAS авторелиза. Сверки статуса здесь недостаточно:
// между чтением планировщика и записью покупатель мог запросить доработку,
// а продавец поставить заново, и заказ снова в delivered, но уже с новым
// окном (ABA). Поэтому UPDATE дополнительно проверяет, что дедлайн
// по-прежнему наступил.
func (r *OrderRepository) ApplyAutoComplete(ctx context.Context, orderID uuid.UUID, dueBefore time.Time, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error) {
	return r.applyTransition(ctx, orderID, models.OrderStatusDelivered, &dueBefore, mut, event)
}

func (r *OrderRepository) applyTransition(ctx context.Context, orderID uuid.UUID, from models.OrderStatus, dueBefore *time.Time, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("order repository: begin tx %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE orders SET
			status = $3,
			delivery_file = $4,
			delivery_note = $5,
			auto_release_at = $6,
			revisions_count = $7,
			dispute_reason = $8,
			refund_reason = $9,
			paid_at = $10,
			delivered_at = $11,
			completed_at = $12,
			cancelled_at = $13,
			updated_at = NOW()
		WHERE id = $1 AND status = $2`
	args := []interface{}{
		orderID, from,
		mut.Status, mut.DeliveryFile, mut.DeliveryNote, mut.AutoReleaseAt,
		mut.RevisionsCount, mut.DisputeReason, mut.RefundReason,
		mut.PaidAt, mut.DeliveredAt, mut.CompletedAt, mut.CancelledAt,
	}
	if dueBefore != nil {
		query += ` AND auto_release_at IS NOT NULL AND auto_release_at <= $14`
		args = append(args, *dueBefore)
	}
	query += `
		RETURNING ` + orderColumns

	var order models.Order
	err = tx.GetContext(ctx, &order, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Ноль строк: заказа нет, статус уже другой либо (для
			// авторелиза) дедлайн сдвинулся в будущее.
			var exists bool
			if checkErr := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID); checkErr != nil {
				return nil, fmt.Errorf("order repository: check existence %w", checkErr)
			}
			if !exists {
				return nil, ErrOrderNotFound
			}
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("order repository: apply transition %w", err)
	}

	if event != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outbox_events (order_id, event_type, recipient_id, payload)
			VALUES ($1, $2, $3, $4)
		`, event.OrderID, event.EventType, event.RecipientID, event.Payload)
		if err != nil {
			return nil, fmt.Errorf("order repository: insert outbox event %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("order repository: commit transition %w", err)
	}
	return &order, nil
}

// ListDueForAutoRelease возвращает доставленные заказы с истёкшим окном
// авторелиза. Порядок по дедлайну, чтобы самые старые обрабатывались первыми.
func (r *OrderRepository) ListDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := `
		SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 AND auto_release_at IS NOT NULL AND auto_release_at <= $2
		ORDER BY auto_release_at
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &orders, query, models.OrderStatusDelivered, now, limit); err != nil {
		return nil, fmt.Errorf("order repository: list due for auto release %w", err)
	}
	return orders, nil
}

// ListByBuyer возвращает заказы покупателя.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &orders, query, buyerID, limit, offset); err != nil {
		return nil, fmt.Errorf("order repository: list by buyer %w", err)
	}
	return orders, nil
}

// ListBySeller возвращает заказы продавца.
func (r *OrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &orders, query, sellerID, limit, offset); err != nil {
		return nil, fmt.Errorf("order repository: list by seller %w", err)
	}
	return orders, nil
}
