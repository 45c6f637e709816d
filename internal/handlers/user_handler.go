package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/models"
	"fleet-backend/internal/utils"
)

// UserList возвращает список пользователей
func UserList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		query := database.Preload("Branch").Order("created_at DESC")

		if branchID := c.Query("branch_id"); branchID != "" {
			query = query.Where("branch_id = ?", branchID)
		}

		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка пользователей"})
			return
		}

		responses := make([]models.UserResponse, 0, len(users))
		for i := range users {
			responses = append(responses, users[i].ToResponse())
		}

		c.JSON(http.StatusOK, responses)
	}
}

type UserUpdateRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	BranchID *uint   `json:"branch_id"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

// BranchAssignmentError проверяет итоговое сочетание роли и филиала:
// админ работает со всеми филиалами, остальные привязаны ровно к одному.
// reqBranch — филиал из запроса, currentBranch — филиал в учетной записи.
func BranchAssignmentError(role string, reqBranch, currentBranch *uint) string {
	if role == models.RoleAdmin {
		if reqBranch != nil {
			return "Администратору филиал не назначается"
		}
		return ""
	}
	if reqBranch == nil && currentBranch == nil {
		return "Для этой роли нужно указать филиал"
	}
	return ""
}

// UserUpdate обновляет данные пользователя.
// Администратор не может снять роль администратора с самого себя —
// запрос отклоняется до обращения к базе.
func UserUpdate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный идентификатор пользователя"})
			return
		}

		var req UserUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		callerID := c.GetUint("user_id")
		callerRole := c.GetString("role")

		if req.Role != nil {
			if !models.IsKnownRole(*req.Role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестная роль"})
				return
			}
			// Защита от самоблокировки: свой админский доступ снять нельзя
			if uint(targetID) == callerID && callerRole == models.RoleAdmin && *req.Role != models.RoleAdmin {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Нельзя снять роль администратора с собственной учетной записи"})
				return
			}
			if *req.Role == models.RoleAdmin && req.BranchID != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Администратору филиал не назначается"})
				return
			}
		}

		if req.Status != nil && *req.Status != models.UserStatusActive && *req.Status != models.UserStatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неизвестный статус"})
			return
		}

		if req.Password != nil && len(*req.Password) < utils.PasswordMinLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Пароль должен содержать не менее 6 символов"})
			return
		}

		var user models.User
		if err := database.First(&user, targetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		// Итоговое сочетание роли и филиала должно остаться допустимым:
		// понижение админа требует филиала, админу филиал не назначается
		effectiveRole := user.Role
		if req.Role != nil {
			effectiveRole = *req.Role
		}
		if msg := BranchAssignmentError(effectiveRole, req.BranchID, user.BranchID); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		updates := map[string]interface{}{}
		if req.FullName != nil {
			updates["full_name"] = *req.FullName
		}
		if req.Role != nil {
			updates["role"] = *req.Role
			// При переводе в админы филиал снимается
			if *req.Role == models.RoleAdmin {
				updates["branch_id"] = nil
			}
		}
		if req.BranchID != nil {
			updates["branch_id"] = *req.BranchID
		}
		if req.Status != nil {
			updates["status"] = *req.Status
		}
		if req.Password != nil {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обработке пароля"})
				return
			}
			updates["password_hash"] = hash
		}

		if len(updates) > 0 {
			if err := database.Model(&user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении пользователя"})
				return
			}
		}

		if err := database.Preload("Branch").First(&user, targetID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении данных пользователя"})
			return
		}

		c.JSON(http.StatusOK, user.ToResponse())
	}
}

// UserDelete удаляет пользователя (кроме самого себя)
func UserDelete(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный идентификатор пользователя"})
			return
		}

		if uint(targetID) == c.GetUint("user_id") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Нельзя удалить собственную учетную запись"})
			return
		}

		var user models.User
		if err := database.First(&user, targetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден"})
			return
		}

		if err := database.Delete(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении пользователя"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Пользователь удален"})
	}
}
