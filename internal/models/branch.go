package models

import (
	"time"
)

// Branch представляет филиал (операционную локацию) автопарка
type Branch struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;type:varchar(255)"`
	Location     string    `json:"location" gorm:"type:varchar(255)"`
	ContactPhone string    `json:"contact_phone" gorm:"type:varchar(20)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BranchCreate используется только для создания нового филиала
type BranchCreate struct {
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location"`
	ContactPhone string `json:"contact_phone"`
}

func (bc *BranchCreate) TableName() string {
	return "branches"
}

// VehicleCategory представляет категорию транспорта (легковые, грузовые и т.д.)
type VehicleCategory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type VehicleCategoryCreate struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (vc *VehicleCategoryCreate) TableName() string {
	return "vehicle_categories"
}
