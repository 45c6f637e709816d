package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/permissions"
	"fleet-backend/internal/services"
	"fleet-backend/internal/websocket"
)

// snagWorkflowStatus сопоставляет ошибки рабочего процесса HTTP статусам
func snagWorkflowStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNoIssues),
		errors.Is(err, services.ErrBranchRequired),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidMethod),
		errors.Is(err, services.ErrNotesRequired),
		errors.Is(err, services.ErrLogFieldsMissing),
		errors.Is(err, services.ErrAlreadyResolved):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrVehicleNotFound),
		errors.Is(err, services.ErrSnagNotFound):
		return http.StatusNotFound, err.Error()
	}
	return http.StatusInternalServerError, "Ошибка при обработке запроса"
}

// SnagList возвращает список неисправностей с учетом филиала пользователя
func SnagList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := permissions.PermissionsFor(c.GetString("role"))

		query := database.Preload("Vehicle").Order("created_at DESC")

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

		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if vehicleID := c.Query("vehicle_id"); vehicleID != "" {
			query = query.Where("vehicle_id = ?", vehicleID)
		}

		var snags []models.Snag
		if err := query.Find(&snags).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка неисправностей"})
			return
		}

		c.JSON(http.StatusOK, snags)
	}
}

// SnagGetByID возвращает неисправность вместе с назначениями и устранением.
// Неисправности чужих филиалов недоступны и не раскрываются.
func SnagGetByID(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var snag models.Snag
		if err := database.Preload("Vehicle").First(&snag, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Неисправность не найдена"})
			return
		}
		if !CanViewBranchEntity(c.GetString("role"), middleware.CallerBranch(c), &snag.BranchID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Неисправность не найдена"})
			return
		}

		var assignments []models.SnagAssignment
		database.Preload("Assignee").Where("snag_id = ?", snag.ID).Order("created_at DESC").Find(&assignments)

		var resolution models.SnagResolution
		hasResolution := database.Where("snag_id = ?", snag.ID).First(&resolution).Error == nil

		response := gin.H{
			"snag":        snag,
			"assignments": assignments,
		}
		if hasResolution {
			response["resolution"] = resolution
		}

		c.JSON(http.StatusOK, response)
	}
}

// SnagReport регистрирует неисправности: одна машина, несколько позиций.
// Позиции с пустым описанием отбрасываются, при полностью пустом списке
// запрос отклоняется без обращения к базе.
func SnagReport(service *services.SnagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.ReportInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		reporterID := c.GetUint("user_id")
		callerBranch := middleware.CallerBranch(c)

		snags, err := service.Report(reporterID, callerBranch, req)
		if err != nil {
			status, message := snagWorkflowStatus(err)
			c.JSON(status, gin.H{"error": message})
			return
		}

		for _, snag := range snags {
			middleware.SnagsReportedTotal.WithLabelValues(string(snag.Priority)).Inc()
			websocket.SendSnagEvent(websocket.SnagCreatedType, snag.BranchID, gin.H{
				"snag_id":    snag.ID,
				"vehicle_id": snag.VehicleID,
				"priority":   snag.Priority,
			})
		}

		c.JSON(http.StatusCreated, gin.H{"snags": snags})
	}
}

// SnagAssign назначает неисправность исполнителю
func SnagAssign(database *gorm.DB, service *services.SnagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snagID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный идентификатор неисправности"})
			return
		}

		var req services.AssignInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		// Исполнитель должен быть действующим пользователем
		var assignee models.User
		if err := database.First(&assignee, req.AssigneeID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Исполнитель не найден"})
			return
		}
		if assignee.Status != models.UserStatusActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Учетная запись исполнителя отключена"})
			return
		}

		assignment, err := service.Assign(uint(snagID), c.GetUint("user_id"), req)
		if err != nil {
			status, message := snagWorkflowStatus(err)
			c.JSON(status, gin.H{"error": message})
			return
		}

		middleware.SnagsAssignedTotal.Inc()

		var snag models.Snag
		if database.First(&snag, snagID).Error == nil {
			websocket.SendSnagEvent(websocket.SnagAssignedType, snag.BranchID, gin.H{
				"snag_id":     snag.ID,
				"assignee_id": assignment.AssigneeID,
			})
		}

		c.JSON(http.StatusCreated, assignment)
	}
}

// SnagResolve устраняет неисправность, при необходимости создавая запись
// журнала обслуживания в той же транзакции
func SnagResolve(database *gorm.DB, service *services.SnagService) gin.HandlerFunc {
	return func(c *gin.Context) {
		snagID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный идентификатор неисправности"})
			return
		}

		var req services.ResolveInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		result, err := service.Resolve(uint(snagID), c.GetUint("user_id"), req)
		if err != nil {
			status, message := snagWorkflowStatus(err)
			c.JSON(status, gin.H{"error": message})
			return
		}

		middleware.TrackSnagResolved(string(result.Resolution.Method), result.Log != nil)

		var snag models.Snag
		if database.First(&snag, snagID).Error == nil {
			websocket.SendSnagEvent(websocket.SnagResolvedType, snag.BranchID, gin.H{
				"snag_id": snag.ID,
				"method":  result.Resolution.Method,
			})
		}

		c.JSON(http.StatusCreated, result)
	}
}
