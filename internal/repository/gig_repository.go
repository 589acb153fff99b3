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

var ErrGigNotFound = errors.New("gig not found")

const gigColumns = `
	id, seller_id, title, description, category, price, image, delivery_days,
	features, status, is_featured, average_rating, review_count, created_at, updated_at
`

// GigRepository отвечает за работу с услугами.
type GigRepository struct {
	db *sqlx.DB
}

// NewGigRepository создаёт новый экземпляр.
func NewGigRepository(db *sqlx.DB) *GigRepository {
	return &GigRepository{db: db}
}

// GetByID возвращает услугу по идентификатору.
func (r *GigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1`
	if err := r.db.GetContext(ctx, &gig, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("gig repository: get by id %w", err)
	}
	return &gig, nil
}

// Create сохраняет новую услугу в статусе pending.
func (r *GigRepository) Create(ctx context.Context, gig *models.Gig) error {
	query := `
		INSERT INTO gigs (seller_id, title, description, category, price, image, delivery_days, features, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		gig.SellerID, gig.Title, gig.Description, gig.Category, gig.Price,
		gig.Image, gig.DeliveryDays, gig.Features, gig.Status,
	).Scan(&gig.ID, &gig.CreatedAt, &gig.UpdatedAt); err != nil {
		return fmt.Errorf("gig repository: create %w", err)
	}
	return nil
}

// Update обновляет редактируемые поля услуги. Цена в уже открытых
// заказах не меняется: там лежит её снимок на момент покупки.
func (r *GigRepository) Update(ctx context.Context, gig *models.Gig) error {
	query := `
		UPDATE gigs SET title = $2, description = $3, category = $4, price = $5,
			image = $6, delivery_days = $7, features = $8, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		gig.ID, gig.Title, gig.Description, gig.Category, gig.Price,
		gig.Image, gig.DeliveryDays, gig.Features,
	)
	if err != nil {
		return fmt.Errorf("gig repository: update %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrGigNotFound
	}
	return nil
}

// UpdateModeration меняет статус модерации и флаг featured.
func (r *GigRepository) UpdateModeration(ctx context.Context, id uuid.UUID, status string, isFeatured bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE gigs SET status = $2, is_featured = $3, updated_at = NOW() WHERE id = $1`,
		id, status, isFeatured,
	)
	if err != nil {
		return fmt.Errorf("gig repository: update moderation %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrGigNotFound
	}
	return nil
}

// UpdateRatingStats пересчитывает агрегаты отзывов внутри переданной транзакции.
func (r *GigRepository) UpdateRatingStats(ctx context.Context, tx *sqlx.Tx, gigID uuid.UUID) error {
	query := `
		UPDATE gigs SET
			review_count = stats.cnt,
			average_rating = stats.avg,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS cnt, COALESCE(AVG(star), 0) AS avg
			FROM reviews WHERE gig_id = $1
		) AS stats
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, gigID); err != nil {
		return fmt.Errorf("gig repository: update rating stats %w", err)
	}
	return nil
}

// Delete удаляет услугу владельца.
func (r *GigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gigs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("gig repository: delete %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrGigNotFound
	}
	return nil
}

// GigFilter описывает параметры выборки каталога.
type GigFilter struct {
	Category     string
	OnlyApproved bool
	OnlyFeatured bool
	SellerID     *uuid.UUID
	Limit        int
	Offset       int
}

// List возвращает услуги по фильтру.
func (r *GigRepository) List(ctx context.Context, filter GigFilter) ([]models.Gig, error) {
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter.OnlyApproved {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, models.GigStatusApproved)
		argIndex++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}
	if filter.OnlyFeatured {
		query += " AND is_featured = TRUE"
	}
	if filter.SellerID != nil {
		query += fmt.Sprintf(" AND seller_id = $%d", argIndex)
		args = append(args, *filter.SellerID)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, filter.Offset)

	var gigs []models.Gig
	if err := r.db.SelectContext(ctx, &gigs, query, args...); err != nil {
		return nil, fmt.Errorf("gig repository: list %w", err)
	}
	return gigs, nil
}

// DB отдаёт пул соединений для транзакций, пересекающих репозитории
// (пересчёт рейтинга услуги при создании отзыва).
func (r *GigRepository) DB() *sqlx.DB {
	return r.db
}
