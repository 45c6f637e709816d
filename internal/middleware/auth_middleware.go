package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"fleet-backend/internal/db"
	"fleet-backend/internal/models"
	"fleet-backend/internal/utils"
)

// JWTAuth проверяет токен авторизации и кладет данные пользователя в контекст.
// Отсутствующая или неизвестная роль в claims не получает доступ:
// запасной роли по умолчанию нет.
func JWTAuth(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Отсутствует токен авторизации"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный формат токена"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Недействительный токен"})
			c.Abort()
			return
		}

		// Закрытый список ролей: незнакомой роли доступ запрещен
		if !models.IsKnownRole(claims.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Роль пользователя не распознана"})
			c.Abort()
			return
		}

		// Проверяем, не отозван ли токен (выход из системы)
		if redisClient != nil && claims.ID != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			revoked, err := db.IsTokenRevoked(ctx, redisClient, claims.ID)
			cancel()
			if err == nil && revoked {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Токен отозван, выполните вход заново"})
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		if claims.BranchID != nil {
			c.Set("branch_id", *claims.BranchID)
		}
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// CallerBranch возвращает филиал текущего пользователя из контекста (nil для админа)
func CallerBranch(c *gin.Context) *uint {
	if v, ok := c.Get("branch_id"); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	return nil
}
