package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // Ожидает подтверждения
	BookingStatusApproved  BookingStatus = "approved"  // Подтверждено
	BookingStatusRejected  BookingStatus = "rejected"  // Отклонено
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено
	BookingStatusCompleted BookingStatus = "completed" // Завершено
)

// Booking представляет бронирование транспортного средства
type Booking struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	VehicleID    uint          `json:"vehicle_id" gorm:"not null"`
	BranchID     uint          `json:"branch_id" gorm:"not null"`
	RequesterID  uint          `json:"requester_id" gorm:"not null"`
	StartDate    time.Time     `json:"start_date" gorm:"not null"`
	EndDate      time.Time     `json:"end_date" gorm:"not null"`
	Purpose      string        `json:"purpose" gorm:"type:text;default:''"`
	Status       BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	RejectReason string        `json:"reject_reason,omitempty" gorm:"default:''"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Vehicle      *Vehicle      `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Requester    *User         `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
}

// BookingResponse представляет ответ API с информацией о бронировании
type BookingResponse struct {
	ID            uint          `json:"id"`
	VehicleID     uint          `json:"vehicle_id"`
	BranchID      uint          `json:"branch_id"`
	RequesterID   uint          `json:"requester_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Purpose       string        `json:"purpose,omitempty"`
	Status        BookingStatus `json:"status"`
	RejectReason  string        `json:"reject_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	RequesterName string        `json:"requester_name"`
	VehicleNumber string        `json:"vehicle_number"`
}

// BookingCreate используется только для создания нового бронирования
type BookingCreate struct {
	VehicleID uint      `json:"vehicle_id" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	Purpose   string    `json:"purpose"`
}

func (bc *BookingCreate) TableName() string {
	return "bookings"
}

// BookingDocument представляет документ, приложенный к бронированию
type BookingDocument struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	BookingID    uint      `json:"booking_id" gorm:"not null"`
	Name         string    `json:"name" gorm:"not null;type:varchar(255)"`
	FileUrl      string    `json:"file_url" gorm:"not null;type:text"`
	UploadedByID uint      `json:"uploaded_by_id" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}
