package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/permissions"
)

// MaintenanceLogList возвращает записи журнала обслуживания
func MaintenanceLogList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := permissions.PermissionsFor(c.GetString("role"))

		query := database.Preload("Vehicle").Order("service_date DESC")

		if !perms.ViewAllBranches {
			branch := middleware.CallerBranch(c)
			if branch == nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "Пользователь не привязан к филиалу"})
				return
			}
			query = query.Where("branch_id = ?", *branch)
		} else if branchID := c.Query("branch_id"); branchID != "" {
			query = query.Where("branch_id = ?", branchID)
		}

		if vehicleID := c.Query("vehicle_id"); vehicleID != "" {
			query = query.Where("vehicle_id = ?", vehicleID)
		}

		var logs []models.MaintenanceLog
		if err := query.Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении журнала обслуживания"})
			return
		}

		c.JSON(http.StatusOK, logs)
	}
}

type MaintenanceLogCreateRequest struct {
	VehicleID       uint      `json:"vehicle_id" binding:"required"`
	BranchID        *uint     `json:"branch_id"`
	ServiceDate     time.Time `json:"service_date" binding:"required"`
	Mileage         int       `json:"mileage" binding:"required"`
	WorkDone        string    `json:"work_done" binding:"required"`
	PerformedByID   *uint     `json:"performed_by_id"`
	PerformedByName string    `json:"performed_by_name"`
	CheckedByID     *uint     `json:"checked_by_id"`
	PhotoUrls       []string  `json:"photo_urls"`
	Notes           string    `json:"notes"`
}

// MaintenanceLogCreate создает запись журнала обслуживания.
// Исполнитель обязателен: зарегистрированный пользователь или сторонняя
// организация текстом. Проверяющий — отдельное необязательное поле.
func MaintenanceLogCreate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MaintenanceLogCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if req.PerformedByID == nil && strings.TrimSpace(req.PerformedByName) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите исполнителя работ"})
			return
		}

		var vehicle models.Vehicle
		if err := database.First(&vehicle, req.VehicleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Транспортное средство не найдено"})
			return
		}

		// Филиал записи: филиал машины, иначе явно указанный
		branchID := req.BranchID
		if vehicle.BranchID != nil {
			branchID = vehicle.BranchID
		}
		if branchID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Не удалось определить филиал, выберите филиал явно"})
			return
		}

		logEntry := models.MaintenanceLog{
			VehicleID:       req.VehicleID,
			BranchID:        *branchID,
			ServiceDate:     req.ServiceDate,
			Mileage:         req.Mileage,
			WorkDone:        req.WorkDone,
			PerformedByID:   req.PerformedByID,
			PerformedByName: req.PerformedByName,
			CheckedByID:     req.CheckedByID,
			PhotoUrls:       req.PhotoUrls,
			Notes:           req.Notes,
		}

		if err := database.Create(&logEntry).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании записи журнала"})
			return
		}

		// Пробег машины подтягиваем к последнему обслуживанию
		if req.Mileage > vehicle.Mileage {
			database.Model(&vehicle).Update("mileage", req.Mileage)
		}

		c.JSON(http.StatusCreated, logEntry)
	}
}
