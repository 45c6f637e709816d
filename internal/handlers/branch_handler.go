package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/models"
)

// BranchList возвращает список филиалов
func BranchList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var branches []models.Branch
		if err := database.Order("name").Find(&branches).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка филиалов"})
			return
		}
		c.JSON(http.StatusOK, branches)
	}
}

// BranchCreate создает новый филиал
func BranchCreate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BranchCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		branch := models.Branch{
			Name:         req.Name,
			Location:     req.Location,
			ContactPhone: req.ContactPhone,
		}

		if err := database.Create(&branch).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании филиала"})
			return
		}

		c.JSON(http.StatusCreated, branch)
	}
}

// BranchUpdate обновляет данные филиала
func BranchUpdate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var branch models.Branch
		if err := database.First(&branch, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Филиал не найден"})
			return
		}

		var req models.BranchCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		branch.Name = req.Name
		branch.Location = req.Location
		branch.ContactPhone = req.ContactPhone

		if err := database.Save(&branch).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении филиала"})
			return
		}

		c.JSON(http.StatusOK, branch)
	}
}

// BranchDeleteBlockReason формирует сообщение о причине отказа в удалении
// филиала. Пустая строка означает, что удаление разрешено.
func BranchDeleteBlockReason(vehicleCount, userCount int64) string {
	if vehicleCount == 0 && userCount == 0 {
		return ""
	}
	parts := []string{}
	if vehicleCount > 0 {
		parts = append(parts, fmt.Sprintf("%d машин", vehicleCount))
	}
	if userCount > 0 {
		parts = append(parts, fmt.Sprintf("%d пользователей", userCount))
	}
	return fmt.Sprintf("Нельзя удалить филиал: за ним числится %s", strings.Join(parts, " и "))
}

// BranchDelete удаляет филиал. Удаление блокируется, пока на филиал
// ссылаются машины или пользователи.
func BranchDelete(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var branch models.Branch
		if err := database.First(&branch, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Филиал не найден"})
			return
		}

		var vehicleCount, userCount int64
		if err := database.Model(&models.Vehicle{}).Where("branch_id = ?", branch.ID).Count(&vehicleCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке связанных машин"})
			return
		}
		if err := database.Model(&models.User{}).Where("branch_id = ?", branch.ID).Count(&userCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке связанных пользователей"})
			return
		}

		if reason := BranchDeleteBlockReason(vehicleCount, userCount); reason != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": reason})
			return
		}

		if err := database.Delete(&branch).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении филиала"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Филиал удален"})
	}
}
