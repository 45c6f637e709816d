package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fleet-backend/internal/middleware"
	"fleet-backend/internal/models"
	"fleet-backend/internal/permissions"
	"fleet-backend/internal/websocket"
)

// BookingCreate создает новое бронирование машины
func BookingCreate(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BookingCreate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		if !req.EndDate.After(req.StartDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Дата окончания должна быть позже даты начала"})
			return
		}

		var vehicle models.Vehicle
		if err := database.First(&vehicle, req.VehicleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Транспортное средство не найдено"})
			return
		}

		if vehicle.Health == models.VehicleHealthGrounded {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Машина снята с эксплуатации и недоступна для бронирования"})
			return
		}
		if vehicle.PersonalUse {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Машина личного пользования недоступна для бронирования"})
			return
		}
		if vehicle.BranchID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Машина не закреплена за филиалом"})
			return
		}

		// Проверяем пересечение с подтвержденными бронированиями
		var overlapping int64
		if err := database.Model(&models.Booking{}).
			Where("vehicle_id = ? AND status = ? AND start_date < ? AND end_date > ?",
				req.VehicleID, models.BookingStatusApproved, req.EndDate, req.StartDate).
			Count(&overlapping).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при проверке занятости машины"})
			return
		}
		if overlapping > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Машина уже забронирована на эти даты"})
			return
		}

		booking := models.Booking{
			VehicleID:   req.VehicleID,
			BranchID:    *vehicle.BranchID,
			RequesterID: c.GetUint("user_id"),
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Purpose:     req.Purpose,
			Status:      models.BookingStatusPending,
		}

		if err := database.Create(&booking).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании бронирования"})
			return
		}

		c.JSON(http.StatusCreated, booking)
	}
}

// BookingList возвращает бронирования с учетом филиала пользователя
func BookingList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms := permissions.PermissionsFor(c.GetString("role"))

		query := database.Preload("Vehicle").Preload("Requester").Order("created_at DESC")

		if !perms.ViewAllBranches {
			branch := middleware.CallerBranch(c)
			if branch == nil {
				c.JSON(http.StatusForbidden, gin.H{"error": "Пользователь не привязан к филиалу"})
				return
			}
			query = query.Where("branch_id = ?", *branch)
		}

		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var bookings []models.Booking
		if err := query.Find(&bookings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении списка бронирований"})
			return
		}

		responses := make([]models.BookingResponse, 0, len(bookings))
		for _, booking := range bookings {
			response := models.BookingResponse{
				ID:           booking.ID,
				VehicleID:    booking.VehicleID,
				BranchID:     booking.BranchID,
				RequesterID:  booking.RequesterID,
				StartDate:    booking.StartDate,
				EndDate:      booking.EndDate,
				Purpose:      booking.Purpose,
				Status:       booking.Status,
				RejectReason: booking.RejectReason,
				CreatedAt:    booking.CreatedAt,
				UpdatedAt:    booking.UpdatedAt,
			}
			if booking.Requester != nil {
				response.RequesterName = booking.Requester.FullName
			}
			if booking.Vehicle != nil {
				response.VehicleNumber = booking.Vehicle.RegNumber
			}
			responses = append(responses, response)
		}

		c.JSON(http.StatusOK, responses)
	}
}

// bookingTransitions описывает допустимые переходы статусов бронирования
var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingStatusPending:  {models.BookingStatusApproved, models.BookingStatusRejected, models.BookingStatusCancelled},
	models.BookingStatusApproved: {models.BookingStatusCancelled, models.BookingStatusCompleted},
}

// CanTransitionBooking проверяет допустимость перехода статуса
func CanTransitionBooking(from, to models.BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// bookingSetStatus выполняет переход статуса бронирования
func bookingSetStatus(database *gorm.DB, c *gin.Context, to models.BookingStatus, rejectReason string) {
	var booking models.Booking
	if err := database.First(&booking, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Бронирование не найдено"})
		return
	}

	if !CanTransitionBooking(booking.Status, to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Недопустимый переход статуса бронирования"})
		return
	}

	updates := map[string]interface{}{"status": to}
	if rejectReason != "" {
		updates["reject_reason"] = rejectReason
	}

	if err := database.Model(&booking).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при обновлении бронирования"})
		return
	}

	websocket.SendBookingStatusUpdate(booking.BranchID, booking.ID, string(to))

	c.JSON(http.StatusOK, booking)
}

// BookingApprove подтверждает бронирование
func BookingApprove(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingSetStatus(database, c, models.BookingStatusApproved, "")
	}
}

// BookingReject отклоняет бронирование с указанием причины
func BookingReject(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&req)
		bookingSetStatus(database, c, models.BookingStatusRejected, req.Reason)
	}
}

// BookingCancel отменяет бронирование
func BookingCancel(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingSetStatus(database, c, models.BookingStatusCancelled, "")
	}
}

// BookingComplete завершает бронирование
func BookingComplete(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingSetStatus(database, c, models.BookingStatusCompleted, "")
	}
}

type BookingDocumentRequest struct {
	Name    string `json:"name" binding:"required"`
	FileUrl string `json:"file_url" binding:"required"`
}

// BookingDocumentAdd прикладывает документ к бронированию
func BookingDocumentAdd(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := database.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Бронирование не найдено"})
			return
		}
		if !CanViewBranchEntity(c.GetString("role"), middleware.CallerBranch(c), &booking.BranchID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Бронирование не найдено"})
			return
		}

		var req BookingDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат данных"})
			return
		}

		document := models.BookingDocument{
			BookingID:    booking.ID,
			Name:         req.Name,
			FileUrl:      req.FileUrl,
			UploadedByID: c.GetUint("user_id"),
		}

		if err := database.Create(&document).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении документа"})
			return
		}

		c.JSON(http.StatusCreated, document)
	}
}

// BookingDocumentList возвращает документы бронирования.
// Документы бронирований чужих филиалов недоступны.
func BookingDocumentList(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var booking models.Booking
		if err := database.First(&booking, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Бронирование не найдено"})
			return
		}
		if !CanViewBranchEntity(c.GetString("role"), middleware.CallerBranch(c), &booking.BranchID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Бронирование не найдено"})
			return
		}

		var documents []models.BookingDocument
		if err := database.Where("booking_id = ?", booking.ID).Order("created_at DESC").Find(&documents).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении документов"})
			return
		}
		c.JSON(http.StatusOK, documents)
	}
}
