package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/permissions"
)

// VehicleList возвращает список машин. Пользователь без права просмотра
// всех филиалов видит только машины своего филиала. Машины личного
// пользования по умолчанию исключаются из операционных списков.
func VehicleList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := permissions.PermissionsFor(c.GetString("role"))

		query := database.Preload("Branch").Preload("Category").Order("reg_number")

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

		if c.Query("include_personal") != "true" {
			query = query.Where("personal_use = ?", false)
		}

		var vehicles []models.Vehicle
		if err := query.Find(&vehicles).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка машин"})
			return
		}

		c.JSON(http.StatusOK, vehicles)
	}
}

// VehicleGetByID возвращает машину по идентификатору.
// Машины чужих филиалов недоступны и не раскрываются.
func VehicleGetByID(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicle models.Vehicle
		if err := database.Preload("Branch").Preload("Category").First(&vehicle, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Транспортное средство не найдено"})
			return
		}
		if !CanViewBranchEntity(c.GetString("role"), middleware.CallerBranch(c), vehicle.BranchID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Транспортное средство не найдено"})
			return
		}
		c.JSON(http.StatusOK, vehicle)
	}
}

// VehicleCreate создает новую машину
func VehicleCreate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.VehicleCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if req.Health == "" {
			req.Health = models.VehicleHealthOK
		}
		if !models.IsValidVehicleHealth(req.Health) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимое состояние машины"})
			return
		}

		perms := permissions.PermissionsFor(c.GetString("role"))
		if !perms.CreateGlobal {
			// Без глобальных прав машину можно создать только в своем филиале
			branch := middleware.CallerBranch(c)
			if !perms.CreateInBranch || branch == nil || req.BranchID == nil || *req.BranchID != *branch {
				c.JSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав для создания машины в этом филиале"})
				return
			}
		}

		vehicle := models.Vehicle{
			RegNumber:   req.RegNumber,
			BranchID:    req.BranchID,
			CategoryID:  req.CategoryID,
			Mileage:     req.Mileage,
			Health:      req.Health,
			PersonalUse: req.PersonalUse,
		}

		if err := database.Create(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Машина с таким регистрационным номером уже существует"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании машины"})
			return
		}

		c.JSON(http.StatusCreated, vehicle)
	}
}

type VehicleUpdateRequest struct {
	RegNumber   *string               `json:"reg_number"`
	BranchID    *uint                 `json:"branch_id"`
	CategoryID  *uint                 `json:"category_id"`
	Mileage     *int                  `json:"mileage"`
	Health      *models.VehicleHealth `json:"health"`
	PersonalUse *bool                 `json:"personal_use"`
}

// VehicleUpdate обновляет данные машины
func VehicleUpdate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicle models.Vehicle
		if err := database.First(&vehicle, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Транспортное средство не найдено"})
			return
		}

		var req VehicleUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if req.Health != nil && !models.IsValidVehicleHealth(*req.Health) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимое состояние машины"})
			return
		}

		role := c.GetString("role")
		if vehicle.BranchID != nil && !permissions.CanMutateBranch(role, middleware.CallerBranch(c), *vehicle.BranchID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав для изменения машины другого филиала"})
			return
		}

		updates := map[string]interface{}{}
		if req.RegNumber != nil {
			updates["reg_number"] = *req.RegNumber
		}
		if req.BranchID != nil {
			updates["branch_id"] = *req.BranchID
		}
		if req.CategoryID != nil {
			updates["category_id"] = *req.CategoryID
		}
		if req.Mileage != nil {
			updates["mileage"] = *req.Mileage
		}
		if req.Health != nil {
			updates["health"] = *req.Health
		}
		if req.PersonalUse != nil {
			updates["personal_use"] = *req.PersonalUse
		}

		if len(updates) > 0 {
			if err := database.Model(&vehicle).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении машины"})
				return
			}
		}

		if err := database.Preload("Branch").Preload("Category").First(&vehicle, vehicle.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении данных машины"})
			return
		}

		c.JSON(http.StatusOK, vehicle)
	}
}

// VehicleDelete удаляет машину
func VehicleDelete(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicle models.Vehicle
		if err := database.First(&vehicle, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Транспортное средство не найдено"})
			return
		}

		perms := permissions.PermissionsFor(c.GetString("role"))
		if !perms.DeleteGlobal {
			branch := middleware.CallerBranch(c)
			if !perms.DeleteInBranch || branch == nil || vehicle.BranchID == nil || *vehicle.BranchID != *branch {
				c.JSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав для удаления машины"})
				return
			}
		}

		if err := database.Delete(&vehicle).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении машины"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Транспортное средство удалено"})
	}
}
