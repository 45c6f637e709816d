package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"fleet-backend/internal/db"
	"fleet-backend/internal/models"
	"fleet-backend/internal/utils"
)

type RegisterRequest struct {
	FullName        string `json:"fullName" binding:"required"`
	Login           string `json:"login" binding:"required"` // email или телефон
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Role            string `json:"role" binding:"required"`
	BranchID        *uint  `json:"branch_id"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Token   string              `json:"token,omitempty"`
	User    models.UserResponse `json:"user,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func AuthRegister(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Неверный формат данных",
				Error:   err.Error(),
			})
			return
		}

		// Валидация до обращения к базе
		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Пароли не совпадают",
			})
			return
		}

		if len(req.Password) < utils.PasswordMinLen {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Пароль должен содержать не менее 6 символов",
			})
			return
		}

		if !models.IsKnownRole(req.Role) {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Неизвестная роль",
			})
			return
		}

		// Админ работает со всеми филиалами, остальные привязаны ровно к одному
		if msg := BranchAssignmentError(req.Role, req.BranchID, nil); msg != "" {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: msg,
			})
			return
		}

		// Проверяем, существует ли пользователь с таким логином
		var existingUser models.User
		if result := database.Where("login = ?", req.Login).First(&existingUser); result.Error == nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Пользователь с таким логином уже существует",
			})
			return
		}

		passwordHash, err := utils.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при обработке пароля",
			})
			return
		}

		user := models.User{
			FullName:     req.FullName,
			Login:        req.Login,
			PasswordHash: passwordHash,
			Role:         req.Role,
			BranchID:     req.BranchID,
			Status:       models.UserStatusActive,
		}

		if result := database.Create(&user); result.Error != nil {
			// Гонка с параллельной регистрацией: предварительная проверка
			// прошла, но уникальный индекс по логину сработал
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, AuthResponse{
					Success: false,
					Message: "Пользователь с таким логином уже существует",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании пользователя",
			})
			return
		}

		token, err := utils.GenerateJWT(&user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании токена",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Token:   token,
			User:    user.ToResponse(),
		})
	}
}

func AuthLogin(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, AuthResponse{
				Success: false,
				Message: "Неверный формат данных",
				Error:   err.Error(),
			})
			return
		}

		var user models.User
		if result := database.Preload("Branch").Where("login = ?", req.Login).First(&user); result.Error != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Неверный логин или пароль",
			})
			return
		}

		if !utils.VerifyPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Неверный логин или пароль",
			})
			return
		}

		if user.Status != models.UserStatusActive {
			c.JSON(http.StatusForbidden, AuthResponse{
				Success: false,
				Message: "Учетная запись отключена",
			})
			return
		}

		token, err := utils.GenerateJWT(&user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании токена",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Token:   token,
			User:    user.ToResponse(),
		})
	}
}

// AuthLogout отзывает текущий токен. Выход выполняется в любом случае:
// при недоступном Redis клиент просто забывает токен у себя.
func AuthLogout(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		jti := c.GetString("token_jti")

		if redisClient != nil && jti != "" {
			ttl := time.Hour
			if exp, ok := c.Get("token_exp"); ok {
				if expTime, ok := exp.(time.Time); ok {
					ttl = time.Until(expTime)
				}
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.RevokeToken(ctx, redisClient, jti, ttl); err != nil {
				log.Printf("Не удалось отозвать токен %s: %v", jti, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Выход выполнен"})
	}
}

// AuthRefresh выдает новый токен по действующему
func AuthRefresh(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := database.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, AuthResponse{
				Success: false,
				Message: "Пользователь не найден",
			})
			return
		}

		if user.Status != models.UserStatusActive {
			c.JSON(http.StatusForbidden, AuthResponse{
				Success: false,
				Message: "Учетная запись отключена",
			})
			return
		}

		token, err := utils.GenerateJWT(&user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, AuthResponse{
				Success: false,
				Message: "Ошибка при создании токена",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			Token:   token,
			User:    user.ToResponse(),
		})
	}
}

// Получение информации о текущем пользователе
func GetCurrentUser(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		var user models.User
		if err := database.Preload("Branch").First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, AuthResponse{
				Success: false,
				Message: "Пользователь не найден",
			})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Success: true,
			User:    user.ToResponse(),
		})
	}
}
