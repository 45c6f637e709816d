package models

import (
	"time"
)

type VehicleHealth string

// Состояние транспортного средства
const (
	VehicleHealthExcellent VehicleHealth = "Excellent" // Отличное состояние
	VehicleHealthOK        VehicleHealth = "OK"        // Рабочее состояние
	VehicleHealthGrounded  VehicleHealth = "Grounded"  // Снято с эксплуатации
)

// IsValidVehicleHealth проверяет допустимость значения состояния
func IsValidVehicleHealth(h VehicleHealth) bool {
	switch h {
	case VehicleHealthExcellent, VehicleHealthOK, VehicleHealthGrounded:
		return true
	}
	return false
}

// Vehicle представляет транспортное средство автопарка
type Vehicle struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RegNumber   string           `json:"reg_number" gorm:"column:reg_number;unique;not null;type:varchar(20)"`
	BranchID    *uint            `json:"branch_id" gorm:"column:branch_id"` // nil — не закреплено за филиалом
	CategoryID  uint             `json:"category_id" gorm:"column:category_id;not null"`
	Mileage     int              `json:"mileage" gorm:"default:0"`
	Health      VehicleHealth    `json:"health" gorm:"type:varchar(20);default:'OK'"`
	PersonalUse bool             `json:"personal_use" gorm:"default:false"` // исключается из операционных списков
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Branch      *Branch          `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	Category    *VehicleCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// VehicleCreate используется только для создания нового транспортного средства
type VehicleCreate struct {
	RegNumber   string        `json:"reg_number" binding:"required"`
	BranchID    *uint         `json:"branch_id"`
	CategoryID  uint          `json:"category_id" binding:"required"`
	Mileage     int           `json:"mileage"`
	Health      VehicleHealth `json:"health"`
	PersonalUse bool          `json:"personal_use"`
}

func (vc *VehicleCreate) TableName() string {
	return "vehicles"
}
