package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
)

// ReviewService — отзывы покупателей и агрегаты рейтинга услуг.
type ReviewService struct {
	db      *sqlx.DB
	reviews *repository.ReviewRepository
	gigs    *repository.GigRepository
	orders  OrderRepository
}

// NewReviewService создаёт сервис отзывов.
func NewReviewService(db *sqlx.DB, reviews *repository.ReviewRepository, gigs *repository.GigRepository, orders OrderRepository) *ReviewService {
	return &ReviewService{db: db, reviews: reviews, gigs: gigs, orders: orders}
}

// CreateReview сохраняет отзыв покупателя по завершённому заказу и в той
// же транзакции пересчитывает средний рейтинг и счётчик отзывов услуги.
func (s *ReviewService) CreateReview(ctx context.Context, orderID, buyerID uuid.UUID, star int, comment string) (*models.Review, error) {
	if star < 1 || star > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "текст отзыва обязателен")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderRepoErr(err)
	}
	if order.BuyerID != buyerID {
		return nil, apperror.ErrNotParticipant
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			"отзыв можно оставить только после завершения заказа").
			WithDetail("current_status", string(order.Status))
	}

	if existing, err := s.reviews.GetByOrderAndBuyer(ctx, orderID, buyerID); err == nil && existing != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "вы уже оставили отзыв на этот заказ")
	} else if err != nil && !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить отзыв")
	}

	review := &models.Review{
		GigID:   order.GigID,
		OrderID: orderID,
		BuyerID: buyerID,
		Star:    star,
		Comment: comment,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось начать транзакцию")
	}
	defer tx.Rollback()

	if err := s.reviews.CreateTx(ctx, tx, review); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить отзыв")
	}
	if err := s.gigs.UpdateRatingStats(ctx, tx, order.GigID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось пересчитать рейтинг")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось зафиксировать отзыв")
	}

	return review, nil
}

// ListGigReviews возвращает отзывы по услуге.
func (s *ReviewService) ListGigReviews(ctx context.Context, gigID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.reviews.ListByGig(ctx, gigID, limit, offset)
}

// CanLeaveReview сообщает, может ли покупатель оставить отзыв по заказу.
func (s *ReviewService) CanLeaveReview(ctx context.Context, orderID, userID uuid.UUID) (bool, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, nil
	}
	if order.BuyerID != userID || order.Status != models.OrderStatusCompleted {
		return false, nil
	}
	if _, err := s.reviews.GetByOrderAndBuyer(ctx, orderID, userID); err == nil {
		return false, nil
	}
	return true, nil
}
