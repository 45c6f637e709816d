package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"fleet-backend/internal/handlers"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/permissions"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"
)

func SetupRoutes(api *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client) {
	snagService := services.NewSnagService(db)

	// Публичные маршруты для аутентификации
	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.AuthRegister(db))
		auth.POST("/login", handlers.AuthLogin(db))
	}

	// Защищенные маршруты (требуют аутентификации)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(redisClient))
	{
		// Текущий пользователь и сессия
		protected.GET("/user", handlers.GetCurrentUser(db))
		protected.POST("/auth/logout", handlers.AuthLogout(redisClient))
		protected.POST("/auth/refresh", handlers.AuthRefresh(db))

		// Роуты для машин
		protected.GET("/vehicles", handlers.VehicleList(db))
		protected.GET("/vehicles/:id", handlers.VehicleGetByID(db))
		protected.POST("/vehicles", handlers.VehicleCreate(db))
		protected.PUT("/vehicles/:id", handlers.VehicleUpdate(db))
		protected.DELETE("/vehicles/:id", handlers.VehicleDelete(db))

		// Роуты для неисправностей
		protected.GET("/snags", handlers.SnagList(db))
		protected.GET("/snags/:id", handlers.SnagGetByID(db))
		protected.POST("/snags", handlers.SnagReport(snagService))
		protected.POST("/snags/:id/assign", handlers.SnagAssign(db, snagService))
		protected.POST("/snags/:id/resolve", handlers.SnagResolve(db, snagService))

		// Роуты для журнала обслуживания
		protected.GET("/maintenance-logs", handlers.MaintenanceLogList(db))
		protected.POST("/maintenance-logs", handlers.MaintenanceLogCreate(db))

		// Роуты для бронирований
		protected.POST("/bookings", handlers.BookingCreate(db))
		protected.GET("/bookings", handlers.BookingList(db))
		protected.PUT("/bookings/:id/approve", handlers.BookingApprove(db))
		protected.PUT("/bookings/:id/reject", handlers.BookingReject(db))
		protected.PUT("/bookings/:id/cancel", handlers.BookingCancel(db))
		protected.PUT("/bookings/:id/complete", handlers.BookingComplete(db))
		protected.POST("/bookings/:id/documents", handlers.BookingDocumentAdd(db))
		protected.GET("/bookings/:id/documents", handlers.BookingDocumentList(db))

		// Управление пользователями (только с правом manage_users)
		users := protected.Group("/users")
		users.Use(middleware.RouteGuard("/users"))
		{
			users.GET("", handlers.UserList(db))
			users.POST("", handlers.AuthRegister(db))
			users.PUT("/:id", handlers.UserUpdate(db))
			users.DELETE("/:id", handlers.UserDelete(db))
		}

		// Настройки: филиалы и категории (только с правом manage_branches)
		settings := protected.Group("/settings")
		settings.Use(middleware.RouteGuard("/settings"))
		{
			settings.GET("/branches", handlers.BranchList(db))
			settings.POST("/branches", handlers.BranchCreate(db))
			settings.PUT("/branches/:id", handlers.BranchUpdate(db))
			settings.DELETE("/branches/:id", handlers.BranchDelete(db))

			settings.GET("/categories", handlers.CategoryList(db))
			settings.POST("/categories", handlers.CategoryCreate(db))
			settings.PUT("/categories/:id", handlers.CategoryUpdate(db))
			settings.DELETE("/categories/:id", handlers.CategoryDelete(db))
		}

		// Справочники для форм доступны всем аутентифицированным ролям
		protected.GET("/branches", handlers.BranchList(db))
		protected.GET("/categories", handlers.CategoryList(db))

		// Отчеты (раздел в разработке)
		reports := protected.Group("/reports")
		reports.Use(middleware.RequirePermission(func(p permissions.PermissionSet) bool {
			return p.ViewReports
		}))
		{
			reports.GET("", handlers.ReportsPlaceholder)
		}

		// Загрузка файлов
		protected.POST("/upload", handlers.UploadFile)

		// WebSocket подключение для получения обновлений в реальном времени
		protected.GET("/ws", websocket.Handler())
	}
}
