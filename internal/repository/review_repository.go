package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

var ErrReviewNotFound = errors.New("review not found")

// ReviewRepository отвечает за отзывы об услугах.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateTx сохраняет отзыв внутри переданной транзакции, чтобы агрегаты
// услуги пересчитывались атомарно вместе с самим отзывом.
func (r *ReviewRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, review *models.Review) error {
	query := `
		INSERT INTO reviews (gig_id, order_id, buyer_id, star, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := tx.QueryRowxContext(ctx, query,
		review.GigID, review.OrderID, review.BuyerID, review.Star, review.Comment,
	).Scan(&review.ID, &review.CreatedAt); err != nil {
		return fmt.Errorf("review repository: create %w", err)
	}
	return nil
}

// GetByOrderAndBuyer возвращает отзыв покупателя по конкретному заказу.
func (r *ReviewRepository) GetByOrderAndBuyer(ctx context.Context, orderID, buyerID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review,
		`SELECT * FROM reviews WHERE order_id = $1 AND buyer_id = $2`, orderID, buyerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("review repository: get by order and buyer %w", err)
	}
	return &review, nil
}

// ListByGig возвращает отзывы по услуге.
func (r *ReviewRepository) ListByGig(ctx context.Context, gigID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews WHERE gig_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, gigID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("review repository: list by gig %w", err)
	}
	return reviews, nil
}
