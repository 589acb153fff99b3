package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
)

// FavoriteHandler обслуживает избранные услуги.
type FavoriteHandler struct {
	favorites *repository.FavoriteRepository
}

// NewFavoriteHandler создаёт новый хэндлер.
func NewFavoriteHandler(favorites *repository.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// Toggle обрабатывает POST /gigs/:id/favorite.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
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

	favorited, err := h.favorites.Toggle(c.Request.Context(), userID, gigID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// Check обрабатывает GET /gigs/:id/favorited.
func (h *FavoriteHandler) Check(c *gin.Context) {
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

	favorited, err := h.favorites.Exists(c.Request.Context(), userID, gigID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// List обрабатывает GET /favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}

	limit, offset := parsePagination(c)
	gigs, err := h.favorites.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs})
}
