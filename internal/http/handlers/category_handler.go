package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
)

// CategoryHandler обслуживает рубрики каталога.
type CategoryHandler struct {
	categories *repository.CategoryRepository
}

// NewCategoryHandler создаёт новый хэндлер.
func NewCategoryHandler(categories *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// List обрабатывает GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Create обрабатывает POST /admin/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "name и slug обязательны"))
		return
	}

	category := &models.Category{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.ToLower(strings.TrimSpace(req.Slug)),
	}
	if category.Name == "" || category.Slug == "" {
		fail(c, apperror.New(apperror.ErrCodeValidation, "name и slug обязательны"))
		return
	}

	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			fail(c, apperror.New(apperror.ErrCodeConflict, "рубрика с таким slug уже существует"))
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// Delete обрабатывает DELETE /admin/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, err.Error()))
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			fail(c, apperror.ErrCategoryNotFound)
			return
		}
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "рубрика удалена"})
}
