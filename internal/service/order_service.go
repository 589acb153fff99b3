package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
)

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	ApplyTransition(ctx context.Context, orderID uuid.UUID, from models.OrderStatus, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error)
	ApplyAutoComplete(ctx context.Context, orderID uuid.UUID, dueBefore time.Time, mut *models.OrderMutation, event *models.OutboxEvent) (*models.Order, error)
	ListDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error)
}

// GigProvider отдаёт услугу для снимка цены при создании заказа.
type GigProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
}

// TransitionPayload — данные действия, передаваемые клиентом.
type TransitionPayload struct {
	DeliveryFile string
	DeliveryNote string
	Feedback     string
	Reason       string
}

// OrderService реализует жизненный цикл заказа: создание, переходы
// статусов и авторелиз. Все переходы идут через единственный путь
// Transition/TryAutoComplete и атомарный CAS хранилища.
type OrderService struct {
	orders OrderRepository
	gigs   GigProvider

	autoReleaseWindow time.Duration

	// now подменяется в тестах.
	now func() time.Time
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(orders OrderRepository, gigs GigProvider, autoReleaseWindow time.Duration) *OrderService {
	return &OrderService{
		orders:            orders,
		gigs:              gigs,
		autoReleaseWindow: autoReleaseWindow,
		now:               time.Now,
	}
}

// CreateOrder создаёт заказ на услугу, снимая цену и заголовок в момент
// покупки. Покупка собственной услуги запрещена.
func (s *OrderService) CreateOrder(ctx context.Context, gigID, buyerID uuid.UUID) (*models.Order, error) {
	gig, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigUnavailable
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить услугу")
	}
	if gig.Status != models.GigStatusApproved {
		return nil, apperror.ErrGigUnavailable
	}
	if gig.SellerID == buyerID {
		return nil, apperror.ErrSelfPurchase
	}

	order := &models.Order{
		GigID:    gig.ID,
		GigTitle: gig.Title,
		GigImage: gig.Image,
		BuyerID:  buyerID,
		SellerID: gig.SellerID,
		Price:    gig.Price,
		Status:   models.OrderStatusCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать заказ")
	}
	return order, nil
}

// GetOrder возвращает заказ; перед возвратом лениво проверяет дедлайн
// авторелиза и при необходимости завершает заказ тем же атомарным путём,
// что и фоновый планировщик.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderRepoErr(err)
	}

	order, _, err = s.TryAutoComplete(ctx, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders возвращает заказы пользователя в заданной роли.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, role string, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if role == "seller" {
		return s.orders.ListBySeller(ctx, userID, limit, offset)
	}
	return s.orders.ListByBuyer(ctx, userID, limit, offset)
}

// Transition выполняет действие актора над заказом: авторизация по
// таблице переходов, валидация полезной нагрузки, вычисление мутации и
// атомарная запись. Личность актора всегда передаётся явно — сервис не
// заглядывает в сессию.
func (s *OrderService) Transition(ctx context.Context, orderID, actorID uuid.UUID, action models.OrderAction, payload TransitionPayload) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderRepoErr(err)
	}

	if err := authorizeTransition(order, actorID, action); err != nil {
		return nil, err
	}

	mut, event, err := s.buildMutation(order, action, payload)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.ApplyTransition(ctx, order.ID, order.Status, mut, event)
	if err != nil {
		return nil, mapOrderRepoErr(err)
	}
	return updated, nil
}

// TryAutoComplete — единственная точка авторелиза, общая для фонового
// планировщика и ленивой проверки при чтении. Идемпотентна: заказ не в
// delivered или с ненаступившим дедлайном остаётся нетронутым, проигрыш
// гонки со спором или повторной поставкой разрешается на CAS и не
// считается ошибкой.
func (s *OrderService) TryAutoComplete(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	if order.Status != models.OrderStatusDelivered || order.AutoReleaseAt == nil {
		return order, false, nil
	}
	now := s.now()
	if now.Before(*order.AutoReleaseAt) {
		return order, false, nil
	}

	mut, event, err := s.buildMutation(order, models.OrderActionAutoComplete, TransitionPayload{})
	if err != nil {
		return order, false, err
	}

	// CAS сверяет не только статус, но и дедлайн: после цикла
	// доработка/повторная поставка заказ снова delivered, но окно новое,
	// и завершать его по стейл-копии нельзя.
	updated, err := s.orders.ApplyAutoComplete(ctx, order.ID, now, mut, event)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Покупатель успел оспорить, продавец поставить заново или
			// другой инстанс уже завершил — перечитываем и отдаём
			// актуальное состояние.
			fresh, getErr := s.orders.GetByID(ctx, order.ID)
			if getErr != nil {
				return order, false, mapOrderRepoErr(getErr)
			}
			return fresh, false, nil
		}
		return order, false, mapOrderRepoErr(err)
	}
	return updated, true, nil
}

// buildMutation — чистая машина состояний: по текущему заказу и действию
// вычисляет новый набор полей и событие для outbox. Инвариант
// «auto_release_at не NULL только в delivered» обеспечивается здесь.
func (s *OrderService) buildMutation(order *models.Order, action models.OrderAction, payload TransitionPayload) (*models.OrderMutation, *models.OutboxEvent, error) {
	now := s.now()

	// Стартуем с текущих значений: переход меняет только своё.
	mut := &models.OrderMutation{
		Status:         order.Status,
		DeliveryFile:   order.DeliveryFile,
		DeliveryNote:   order.DeliveryNote,
		AutoReleaseAt:  nil,
		RevisionsCount: order.RevisionsCount,
		DisputeReason:  order.DisputeReason,
		RefundReason:   order.RefundReason,
		PaidAt:         order.PaidAt,
		DeliveredAt:    order.DeliveredAt,
		CompletedAt:    order.CompletedAt,
		CancelledAt:    order.CancelledAt,
	}

	var event *models.OutboxEvent

	switch action {
	case models.OrderActionPay:
		mut.Status = models.OrderStatusInProgress
		mut.PaidAt = &now

	case models.OrderActionDeliver:
		file := strings.TrimSpace(payload.DeliveryFile)
		if file == "" {
			return nil, nil, apperror.New(apperror.ErrCodeValidation, "файл поставки обязателен")
		}
		mut.Status = models.OrderStatusDelivered
		mut.DeliveryFile = &file
		// Повторная поставка перезаписывает результат целиком.
		mut.DeliveryNote = nil
		if note := strings.TrimSpace(payload.DeliveryNote); note != "" {
			mut.DeliveryNote = &note
		}
		mut.DeliveredAt = &now
		deadline := now.Add(s.autoReleaseWindow)
		mut.AutoReleaseAt = &deadline
		event = s.newEvent(order, models.EventOrderDelivered, order.BuyerID)

	case models.OrderActionRevision:
		if strings.TrimSpace(payload.Feedback) == "" {
			return nil, nil, apperror.New(apperror.ErrCodeValidation, "опишите, что нужно доработать")
		}
		mut.Status = models.OrderStatusInProgress
		mut.RevisionsCount = order.RevisionsCount + 1
		// Таймер сбрасывается: продавец перезапустит его повторной поставкой.
		mut.AutoReleaseAt = nil

	case models.OrderActionDispute:
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			return nil, nil, apperror.New(apperror.ErrCodeValidation, "причина спора обязательна")
		}
		mut.Status = models.OrderStatusDisputed
		mut.DisputeReason = &reason
		// Спор останавливает часы авторелиза.
		mut.AutoReleaseAt = nil
		event = s.newEvent(order, models.EventOrderDisputed, order.SellerID)

	case models.OrderActionRefund:
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			reason = "продавец согласился на возврат"
		}
		mut.Status = models.OrderStatusCancelled
		mut.RefundReason = &reason
		mut.CancelledAt = &now
		event = s.newEvent(order, models.EventOrderCancelled, order.BuyerID)

	case models.OrderActionAutoComplete:
		mut.Status = models.OrderStatusCompleted
		mut.CompletedAt = &now
		event = s.newEvent(order, models.EventOrderCompleted, order.SellerID)

	default:
		return nil, nil, apperror.New(apperror.ErrCodeBadRequest, "неизвестное действие: "+string(action))
	}

	return mut, event, nil
}

// orderEventPayload — тело события для внешних потребителей (леджер,
// уведомления). Сумма нужна леджеру для выплаты или возврата.
type orderEventPayload struct {
	OrderID  uuid.UUID `json:"order_id"`
	GigTitle string    `json:"gig_title"`
	BuyerID  uuid.UUID `json:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id"`
	Amount   float64   `json:"amount"`
}

func (s *OrderService) newEvent(order *models.Order, eventType string, recipientID uuid.UUID) *models.OutboxEvent {
	raw, err := json.Marshal(orderEventPayload{
		OrderID:  order.ID,
		GigTitle: order.GigTitle,
		BuyerID:  order.BuyerID,
		SellerID: order.SellerID,
		Amount:   order.Price,
	})
	if err != nil {
		// Структура сериализуется всегда; сюда попадать не должны.
		raw = []byte(fmt.Sprintf(`{"order_id":%q}`, order.ID))
	}
	return &models.OutboxEvent{
		OrderID:     order.ID,
		EventType:   eventType,
		RecipientID: recipientID,
		Payload:     raw,
	}
}

// mapOrderRepoErr переводит ошибки хранилища в ошибки приложения.
func mapOrderRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperror.ErrOrderNotFound
	case errors.Is(err, repository.ErrStatusConflict):
		return apperror.ErrStatusConflict
	default:
		return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хранилища заказов")
	}
}
