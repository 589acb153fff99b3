package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/service"
)

// ReviewHandler обслуживает отзывы об услугах.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler создаёт новый хэндлер.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
	Star    int    `json:"star" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// Create обрабатывает POST /reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "order_id, star и comment обязательны"))
		return
	}
	orderID, err := parseUUID(req.OrderID)
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "order_id должен быть валидным UUID"))
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), orderID, userID, req.Star, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// ListByGig обрабатывает GET /gigs/:id/reviews.
func (h *ReviewHandler) ListByGig(c *gin.Context) {
	gigID, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	limit, offset := parsePagination(c)
	reviews, err := h.reviews.ListGigReviews(c.Request.Context(), gigID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// CanReview обрабатывает GET /orders/:id/can-review.
func (h *ReviewHandler) CanReview(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}
	orderID, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	canReview, err := h.reviews.CanLeaveReview(c.Request.Context(), orderID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"can_review": canReview})
}
