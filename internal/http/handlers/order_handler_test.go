package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/gigmarket-backend/internal/http/middleware"
	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
	"github.com/ignatzorin/gigmarket-backend/internal/service"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func withUser(r *gin.Engine, userID uuid.UUID) {
	withUserRole(r, userID, "")
}

func withUserRole(r *gin.Engine, userID uuid.UUID, role string) {
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		if role != "" {
			c.Set(middleware.ContextRoleKey, role)
		}
		c.Next()
	})
}

// stubOrderRepo отдаёт единственный заказ; методы переходов в этих
// тестах не вызываются.
type stubOrderRepo struct {
	order *models.Order
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order != nil && s.order.ID == id {
		clone := *s.order
		return &clone, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error { return nil }

func (s *stubOrderRepo) ApplyTransition(ctx context.Context, orderID uuid.UUID, from models.OrderStatus, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error) {
	return nil, repository.ErrStatusConflict
}

func (s *stubOrderRepo) ApplyAutoComplete(ctx context.Context, orderID uuid.UUID, dueBefore time.Time, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error) {
	return nil, repository.ErrStatusConflict
}

func (s *stubOrderRepo) ListDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return nil, nil
}

func TestOrderHandler_CreateOrder_Unauthorized(t *testing.T) {
	r := newTestRouter()
	handler := &OrderHandler{orders: nil}
	r.POST("/orders", handler.CreateOrder)

	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(`{"gig_id":"`+uuid.NewString()+`"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_CreateOrder_InvalidBody(t *testing.T) {
	r := newTestRouter()
	withUser(r, uuid.New())
	handler := &OrderHandler{orders: nil}
	r.POST("/orders", handler.CreateOrder)

	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(`{"gig_id":"not-a-uuid"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_GetOrder_InvalidID(t *testing.T) {
	r := newTestRouter()
	withUser(r, uuid.New())
	handler := &OrderHandler{orders: nil}
	r.GET("/orders/:id", handler.GetOrder)

	req, _ := http.NewRequest("GET", "/orders/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_ListMyOrders_InvalidRole(t *testing.T) {
	r := newTestRouter()
	withUser(r, uuid.New())
	handler := &OrderHandler{orders: nil}
	r.GET("/orders/my", handler.ListMyOrders)

	req, _ := http.NewRequest("GET", "/orders/my?role=admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Transition_MissingAction(t *testing.T) {
	r := newTestRouter()
	withUser(r, uuid.New())
	handler := &OrderHandler{orders: nil}
	r.PUT("/orders/:id", handler.Transition)

	req, _ := http.NewRequest("PUT", "/orders/"+uuid.NewString(), strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Видимость заказа: участники и админ видят, для посторонних заказ
// не существует (404, а не 403, чтобы не раскрывать сам факт сделки).
func TestOrderHandler_GetOrder_Visibility(t *testing.T) {
	order := &models.Order{
		ID:       uuid.New(),
		GigTitle: "Логотип для кофейни",
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Price:    150,
		Status:   models.OrderStatusCreated,
	}
	handler := NewOrderHandler(service.NewOrderService(&stubOrderRepo{order: order}, nil, 72*time.Hour))

	getOrder := func(userID uuid.UUID, role string) *httptest.ResponseRecorder {
		r := newTestRouter()
		withUserRole(r, userID, role)
		r.GET("/orders/:id", handler.GetOrder)

		req, _ := http.NewRequest("GET", "/orders/"+order.ID.String(), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Покупатель и продавец видят заказ.
	w := getOrder(order.BuyerID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), order.ID.String())

	w = getOrder(order.SellerID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Посторонний получает 404 без деталей сделки.
	w = getOrder(uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
	assert.NotContains(t, w.Body.String(), order.GigTitle)

	// Админ видит любой заказ.
	w = getOrder(uuid.New(), "admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderHandler_Transition_Unauthorized(t *testing.T) {
	r := newTestRouter()
	handler := &OrderHandler{orders: nil}
	r.PUT("/orders/:id", handler.Transition)

	req, _ := http.NewRequest("PUT", "/orders/"+uuid.NewString(), strings.NewReader(`{"action":"pay"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
