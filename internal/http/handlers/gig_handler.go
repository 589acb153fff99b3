package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/service"
)

// GigHandler обслуживает эндпоинты каталога услуг.
type GigHandler struct {
	gigs *service.GigService
}

// NewGigHandler создаёт новый хэндлер.
func NewGigHandler(gigs *service.GigService) *GigHandler {
	return &GigHandler{gigs: gigs}
}

type gigRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Price        float64  `json:"price" binding:"required"`
	Image        *string  `json:"image"`
	DeliveryDays int      `json:"delivery_days" binding:"required"`
	Features     []string `json:"features"`
}

type moderateRequest struct {
	Status     string `json:"status" binding:"required"`
	IsFeatured bool   `json:"is_featured"`
}

func (r gigRequest) toInput() service.GigInput {
	return service.GigInput{
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Price:        r.Price,
		Image:        r.Image,
		DeliveryDays: r.DeliveryDays,
		Features:     r.Features,
	}
}

// CreateGig обрабатывает POST /gigs.
func (h *GigHandler) CreateGig(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}

	var req gigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса: "+err.Error()))
		return
	}

	gig, err := h.gigs.CreateGig(c.Request.Context(), userID, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"gig": gig})
}

// GetGig обрабатывает GET /gigs/:id.
func (h *GigHandler) GetGig(c *gin.Context) {
	gigID, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	gig, err := h.gigs.GetGig(c.Request.Context(), gigID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gig": gig})
}

// ListGigs обрабатывает GET /gigs — публичный каталог одобренных услуг.
func (h *GigHandler) ListGigs(c *gin.Context) {
	limit, offset := parsePagination(c)
	gigs, err := h.gigs.ListGigs(c.Request.Context(),
		c.Query("category"), c.Query("featured") == "true", limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs})
}

// ListMyGigs обрабатывает GET /gigs/my — услуги продавца в любом статусе.
func (h *GigHandler) ListMyGigs(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}

	limit, offset := parsePagination(c)
	gigs, err := h.gigs.ListSellerGigs(c.Request.Context(), userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs})
}

// UpdateGig обрабатывает PUT /gigs/:id.
func (h *GigHandler) UpdateGig(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}
	gigID, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	var req gigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "некорректное тело запроса: "+err.Error()))
		return
	}

	gig, err := h.gigs.UpdateGig(c.Request.Context(), gigID, userID, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gig": gig})
}

// DeleteGig обрабатывает DELETE /gigs/:id.
func (h *GigHandler) DeleteGig(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}
	gigID, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	if err := h.gigs.DeleteGig(c.Request.Context(), gigID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "услуга удалена"})
}

// Moderate обрабатывает PUT /admin/gigs/:id/moderate.
func (h *GigHandler) Moderate(c *gin.Context) {
	gigID, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "status обязателен"))
		return
	}

	gig, err := h.gigs.Moderate(c.Request.Context(), gigID, req.Status, req.IsFeatured)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gig": gig})
}
