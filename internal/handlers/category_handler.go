package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/models"
)

// CategoryList возвращает список категорий транспорта
func CategoryList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.VehicleCategory
		if err := database.Order("name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка категорий"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// CategoryCreate создает новую категорию
func CategoryCreate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.VehicleCategoryCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		category := models.VehicleCategory{
			Name:        req.Name,
			Description: req.Description,
		}

		if err := database.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании категории"})
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}

// CategoryUpdate обновляет категорию
func CategoryUpdate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.VehicleCategory
		if err := database.First(&category, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Категория не найдена"})
			return
		}

		var req models.VehicleCategoryCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		category.Name = req.Name
		category.Description = req.Description

		if err := database.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении категории"})
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

// CategoryDeleteBlockReason формирует сообщение о причине отказа в удалении
// категории. Пустая строка означает, что удаление разрешено.
func CategoryDeleteBlockReason(vehicleCount int64) string {
	if vehicleCount == 0 {
		return ""
	}
	return fmt.Sprintf("Нельзя удалить категорию: к ней относится %d машин", vehicleCount)
}

// CategoryDelete удаляет категорию. Удаление блокируется, пока на категорию
// ссылаются машины.
func CategoryDelete(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.VehicleCategory
		if err := database.First(&category, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Категория не найдена"})
			return
		}

		var vehicleCount int64
		if err := database.Model(&models.Vehicle{}).Where("category_id = ?", category.ID).Count(&vehicleCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке связанных машин"})
			return
		}

		if reason := CategoryDeleteBlockReason(vehicleCount); reason != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": reason})
			return
		}

		if err := database.Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении категории"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Категория удалена"})
	}
}
