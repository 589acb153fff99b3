package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
)

// FavoriteRepository отвечает за избранные услуги пользователей.
type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle добавляет услугу в избранное или убирает её, возвращая итоговое состояние.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, gigID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND gig_id = $2`, userID, gigID)
	if err != nil {
		return false, fmt.Errorf("favorite repository: toggle delete %w", err)
	}
	if affected, _ := result.RowsAffected(); affected > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, gig_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, gigID)
	if err != nil {
		return false, fmt.Errorf("favorite repository: toggle insert %w", err)
	}
	return true, nil
}

// Exists проверяет, отмечена ли услуга пользователем.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, gigID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND gig_id = $2)`, userID, gigID)
	if err != nil {
		return false, fmt.Errorf("favorite repository: exists %w", err)
	}
	return exists, nil
}

// ListByUser возвращает избранные услуги пользователя.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Gig, error) {
	var gigs []models.Gig
	query := `
		SELECT g.id, g.seller_id, g.title, g.description, g.category, g.price, g.image,
		       g.delivery_days, g.features, g.status, g.is_featured, g.average_rating,
		       g.review_count, g.created_at, g.updated_at
		FROM favorites f
		JOIN gigs g ON g.id = f.gig_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &gigs, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("favorite repository: list by user %w", err)
	}
	return gigs, nil
}
