package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigmarket-backend/internal/config"
	"github.com/ignatzorin/gigmarket-backend/internal/db"
	"github.com/ignatzorin/gigmarket-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/gigmarket-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/gigmarket-backend/internal/http/router"
	"github.com/ignatzorin/gigmarket-backend/internal/logger"
	"github.com/ignatzorin/gigmarket-backend/internal/repository"
	"github.com/ignatzorin/gigmarket-backend/internal/service"
	"github.com/ignatzorin/gigmarket-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	// Репозитории.
	orderRepo := repository.NewOrderRepository(dbConn)
	gigRepo := repository.NewGigRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	favoriteRepo := repository.NewFavoriteRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	outboxRepo := repository.NewOutboxRepository(dbConn)

	// Сервисы.
	orderService := service.NewOrderService(orderRepo, gigRepo, cfg.AutoReleaseWindow)
	gigService := service.NewGigService(gigRepo)
	reviewService := service.NewReviewService(dbConn, reviewRepo, gigRepo, orderRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Фоновые циклы: авторелиз доставленных заказов и доставка событий.
	scheduler := service.NewAutoReleaseScheduler(orderService, cfg.AutoReleaseInterval)
	goroutine.SafeGoWithContext(ctx, scheduler.Run)

	eventSink := service.NewOrderEventSink(notificationService, hub)
	dispatcher := service.NewOutboxDispatcher(outboxRepo, eventSink, cfg.OutboxInterval)
	goroutine.SafeGoWithContext(ctx, dispatcher.Run)

	// HTTP хэндлеры.
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	gigHandler := httpHandlers.NewGigHandler(gigService)
	categoryHandler := httpHandlers.NewCategoryHandler(categoryRepo)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	favoriteHandler := httpHandlers.NewFavoriteHandler(favoriteRepo)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, orderHandler, gigHandler, categoryHandler,
		reviewHandler, favoriteHandler, notificationHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
