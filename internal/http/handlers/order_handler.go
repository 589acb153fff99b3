package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/service"
)

// OrderHandler обслуживает эндпоинты заказов.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler создаёт новый хэндлер.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	GigID string `json:"gig_id" binding:"required,uuid"`
}

type transitionRequest struct {
	Action       string `json:"action" binding:"required"`
	DeliveryFile string `json:"delivery_file"`
	DeliveryNote string `json:"delivery_note"`
	Feedback     string `json:"feedback"`
	Reason       string `json:"reason"`
}

// CreateOrder обрабатывает POST /orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "gig_id обязателен и должен быть UUID"))
		return
	}
	gigID, err := parseUUID(req.GigID)
	if err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "gig_id должен быть валидным UUID"))
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), gigID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder обрабатывает GET /orders/:id. Заказ видят только участники
// сделки и админ; для посторонних заказ не существует.
func (h *OrderHandler) GetOrder(c *gin.Context) {
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

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		fail(c, err)
		return
	}

	if order.BuyerID != userID && order.SellerID != userID && currentUserRole(c) != "admin" {
		fail(c, apperror.ErrOrderNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListMyOrders обрабатывает GET /orders/my?role=buyer|seller.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		fail(c, apperror.ErrUnauthorized)
		return
	}

	role := c.DefaultQuery("role", "buyer")
	if role != "buyer" && role != "seller" {
		fail(c, apperror.New(apperror.ErrCodeValidation, "role должен быть buyer или seller"))
		return
	}

	limit, offset := parsePagination(c)
	orders, err := h.orders.ListOrders(c.Request.Context(), userID, role, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Transition обрабатывает PUT /orders/:id — единственная точка смены
// статуса заказа участником.
func (h *OrderHandler) Transition(c *gin.Context) {
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

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.New(apperror.ErrCodeValidation, "action обязателен"))
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), orderID, userID,
		models.OrderAction(req.Action), service.TransitionPayload{
			DeliveryFile: req.DeliveryFile,
			DeliveryNote: req.DeliveryNote,
			Feedback:     req.Feedback,
			Reason:       req.Reason,
		})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
