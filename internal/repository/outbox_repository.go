package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

// OutboxRepository отвечает за очередь недоставленных событий.
// События пишутся в одной транзакции с переходом статуса заказа
// (см. OrderRepository.ApplyTransition), здесь они только читаются
// и помечаются доставленными.
type OutboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// ListUndispatched возвращает недоставленные события в порядке создания.
func (r *OutboxRepository) ListUndispatched(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM outbox_events
		WHERE dispatched_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("outbox repository: list undispatched %w", err)
	}
	return events, nil
}

// MarkDispatched помечает событие доставленным. Если доставка упала до
// этой отметки, событие уйдёт повторно — получатели должны быть к этому готовы.
func (r *OutboxRepository) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET dispatched_at = NOW() WHERE id = $1 AND dispatched_at IS NULL`, id); err != nil {
		return fmt.Errorf("outbox repository: mark dispatched %w", err)
	}
	return nil
}
