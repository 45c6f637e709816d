package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-backend/internal/permissions"
)

// RouteGuard закрывает группу маршрутов по пути раздела.
// Единая точка принятия решения о доступе: и маршруты, и действия
// проверяются через матрицу возможностей.
func RouteGuard(section string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !permissions.CanAccessRoute(role, section) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав для доступа к разделу"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission закрывает маршрут конкретной возможностью из матрицы
func RequirePermission(check func(permissions.PermissionSet) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !check(permissions.PermissionsFor(role)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав для выполнения операции"})
			c.Abort()
			return
		}
		c.Next()
	}
}
