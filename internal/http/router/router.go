package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/gigmarket-backend/internal/config"
	"github.com/ignatzorin/gigmarket-backend/internal/http/handlers"
	"github.com/ignatzorin/gigmarket-backend/internal/http/middleware"
	"github.com/ignatzorin/gigmarket-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	orderHandler *handlers.OrderHandler,
	gigHandler *handlers.GigHandler,
	categoryHandler *handlers.CategoryHandler,
	reviewHandler *handlers.ReviewHandler,
	favoriteHandler *handlers.FavoriteHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Публичные маршруты
	api.GET("/gigs", gigHandler.ListGigs)
	api.GET("/gigs/:id", middleware.UUIDValidator("id"), gigHandler.GetGig)
	api.GET("/gigs/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListByGig)
	api.GET("/categories", categoryHandler.List)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		// Мои услуги: регистрируем до параметрического маршрута.
		protected.GET("/gigs/my", gigHandler.ListMyGigs)
		protected.POST("/gigs", gigHandler.CreateGig)
		protected.PUT("/gigs/:id", middleware.UUIDValidator("id"), gigHandler.UpdateGig)
		protected.DELETE("/gigs/:id", middleware.UUIDValidator("id"), gigHandler.DeleteGig)
		protected.POST("/gigs/:id/favorite", middleware.UUIDValidator("id"), favoriteHandler.Toggle)
		protected.GET("/gigs/:id/favorited", middleware.UUIDValidator("id"), favoriteHandler.Check)
		protected.GET("/favorites", favoriteHandler.List)

		protected.POST("/orders", orderHandler.CreateOrder)
		protected.GET("/orders/my", orderHandler.ListMyOrders)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
		protected.PUT("/orders/:id", middleware.UUIDValidator("id"), orderHandler.Transition)
		protected.GET("/orders/:id/can-review", middleware.UUIDValidator("id"), reviewHandler.CanReview)

		protected.POST("/reviews", reviewHandler.Create)

		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
	}

	// Администрирование
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminOnly())
	{
		admin.PUT("/gigs/:id/moderate", middleware.UUIDValidator("id"), gigHandler.Moderate)
		admin.POST("/categories", categoryHandler.Create)
		admin.DELETE("/categories/:id", middleware.UUIDValidator("id"), categoryHandler.Delete)
	}

	return r
}
