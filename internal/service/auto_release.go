package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigmarket-backend/internal/logger"
	"github.com/ignatzorin/gigmarket-backend/internal/pkg/apperror"
)

// autoReleaseBatchSize — сколько просроченных заказов берём за один проход.
const autoReleaseBatchSize = 100

// AutoReleaseScheduler фоновым циклом завершает доставленные заказы с
// истёкшим окном авторелиза. Использует тот же TryAutoComplete, что и
// ленивая проверка при чтении заказа, поэтому оба триггера не могут
// разойтись в поведении.
type AutoReleaseScheduler struct {
	orders   *OrderService
	interval time.Duration
}

// NewAutoReleaseScheduler создаёт планировщик.
func NewAutoReleaseScheduler(orders *OrderService, interval time.Duration) *AutoReleaseScheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoReleaseScheduler{orders: orders, interval: interval}
}

// Run крутит цикл до отмены контекста.
func (s *AutoReleaseScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce обрабатывает одну пачку просроченных заказов. Конфликт CAS и
// уже сменившийся статус — ожидаемые исходы гонки со спором покупателя,
// логируются только на debug.
func (s *AutoReleaseScheduler) runOnce(ctx context.Context) {
	due, err := s.orders.orders.ListDueForAutoRelease(ctx, s.orders.now(), autoReleaseBatchSize)
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Error("auto-release: не удалось получить просроченные заказы")
		}
		return
	}

	for i := range due {
		order := &due[i]
		_, completed, err := s.orders.TryAutoComplete(ctx, order)
		switch {
		case err == nil && completed:
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"order_id": order.ID,
				}).Info("auto-release: заказ завершён автоматически")
			}
			ordersAutoReleased.Inc()
		case err == nil:
			// Кто-то успел раньше: спор, доработка или второй инстанс.
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"order_id": order.ID,
				}).Debug("auto-release: заказ уже не в delivered, пропускаем")
			}
		case apperror.IsConflict(err):
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"order_id": order.ID,
				}).Debug("auto-release: конфликт перехода, пропускаем")
			}
		default:
			if logger.Log != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{
					"order_id": order.ID,
				}).Error("auto-release: ошибка завершения заказа")
			}
		}
	}
}
