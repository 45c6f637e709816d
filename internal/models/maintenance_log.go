package models

import (
	"time"

	"github.com/lib/pq"
)

// MaintenanceLog представляет запись журнала обслуживания транспортного средства.
// Исполнитель — либо зарегистрированный пользователь (PerformedByID),
// либо сторонняя организация, указанная текстом (PerformedByName).
type MaintenanceLog struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	VehicleID       uint           `json:"vehicle_id" gorm:"not null"`
	BranchID        uint           `json:"branch_id" gorm:"not null"`
	ServiceDate     time.Time      `json:"service_date" gorm:"not null;type:date"`
	Mileage         int            `json:"mileage" gorm:"not null"`
	WorkDone        string         `json:"work_done" gorm:"not null;type:text"`
	PerformedByID   *uint          `json:"performed_by_id,omitempty"`
	PerformedByName string         `json:"performed_by_name" gorm:"type:varchar(255);default:''"`
	CheckedByID     *uint          `json:"checked_by_id,omitempty"` // не обязательно совпадает с исполнителем
	PhotoUrls       pq.StringArray `json:"photo_urls" gorm:"type:text[]"`
	Notes           string         `json:"notes" gorm:"type:text;default:''"`
	CreatedAt       time.Time      `json:"created_at"`
	Vehicle         *Vehicle       `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}
