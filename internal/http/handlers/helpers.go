package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/gigmarket-backend/internal/http/middleware"
)

var errNoUserInContext = errors.New("пользователь не найден в контексте")

// currentUserID извлекает ID пользователя из контекста запроса.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errNoUserInContext
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errNoUserInContext
	}
	return userID, nil
}

// currentUserRole извлекает роль пользователя из контекста запроса.
func currentUserRole(c *gin.Context) string {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return ""
	}
	role, _ := raw.(string)
	return role
}

// parseUUIDParam разбирает UUID из path параметра.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("параметр %s должен быть валидным UUID", name)
	}
	return parsed, nil
}

// parseUUID разбирает UUID из строки тела запроса.
func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// parsePagination читает limit/offset из query параметров.
func parsePagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// fail передаёт ошибку централизованному обработчику middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
