package service

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/gigmarket-backend/internal/models"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
)

// actorRole — роль, от имени которой разрешено действие.
type actorRole string

const (
	roleBuyer  actorRole = "buyer"
	roleSeller actorRole = "seller"
	// roleSystem — планировщик авторелиза; человеку это действие недоступно.
	roleSystem actorRole = "system"
)

// transitionRule задаёт, кто и из какого статуса может выполнить действие.
type transitionRule struct {
	role actorRole
	from models.OrderStatus
}

// transitionRules — единственная таблица переходов заказа. Каждый вид
// перехода проходит ровно через неё: и HTTP-обработчик, и планировщик.
var transitionRules = map[models.OrderAction]transitionRule{
	models.OrderActionPay:          {role: roleBuyer, from: models.OrderStatusCreated},
	models.OrderActionDeliver:      {role: roleSeller, from: models.OrderStatusInProgress},
	models.OrderActionRevision:     {role: roleBuyer, from: models.OrderStatusDelivered},
	models.OrderActionDispute:      {role: roleBuyer, from: models.OrderStatusDelivered},
	models.OrderActionRefund:       {role: roleSeller, from: models.OrderStatusDisputed},
	models.OrderActionAutoComplete: {role: roleSystem, from: models.OrderStatusDelivered},
}

// SystemActorID — идентификатор системного актора (планировщика).
var SystemActorID = uuid.Nil

// authorizeTransition проверяет право актора на действие и предусловие
// по статусу. Ошибка роли и ошибка статуса различаются намеренно:
// клиент должен отличать «вам нельзя» от «сейчас нельзя».
func authorizeTransition(order *models.Order, actorID uuid.UUID, action models.OrderAction) error {
	rule, ok := transitionRules[action]
	if !ok {
		return apperror.New(apperror.ErrCodeBadRequest, "неизвестное действие: "+string(action))
	}

	switch rule.role {
	case roleBuyer:
		if actorID != order.BuyerID {
			return apperror.ErrNotParticipant
		}
	case roleSeller:
		if actorID != order.SellerID {
			return apperror.ErrNotParticipant
		}
	case roleSystem:
		if actorID != SystemActorID {
			return apperror.ErrNotParticipant
		}
	}

	if order.Status != rule.from {
		return apperror.New(apperror.ErrCodeInvalidTransition,
			"действие "+string(action)+" недоступно в текущем статусе").
			WithDetail("current_status", string(order.Status))
	}

	// Лимит доработок — отдельная ошибка: UI различает «доработки
	// исчерпаны» и «заказ ещё не доставлен».
	if action == models.OrderActionRevision && order.RevisionsCount >= models.MaxRevisions {
		return apperror.ErrRevisionLimit.WithDetail("current_status", string(order.Status))
	}

	return nil
}
