package models

import (
	"time"
)

// Роли пользователей системы
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleMechanic = "mechanic"
	RoleDriver   = "driver"
)

// Статусы пользователей
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	FullName     string    `json:"fullName" gorm:"column:full_name;not null;type:varchar(255)"`
	Login        string    `json:"login" gorm:"column:login;unique;not null;type:varchar(255)"` // email или телефон
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;type:varchar(255)"`
	Role         string    `json:"role" gorm:"column:role;not null;type:varchar(20)"`
	BranchID     *uint     `json:"branch_id" gorm:"column:branch_id"` // у админа филиал не задан
	Status       string    `json:"status" gorm:"column:status;default:'active';type:varchar(20)"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime;type:timestamp with time zone"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime;type:timestamp with time zone"`
	Branch       *Branch   `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"fullName"`
	Login     string    `json:"login"`
	Role      string    `json:"role"`
	BranchID  *uint     `json:"branch_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Branch    *Branch   `json:"branch,omitempty"`
}

// ToResponse формирует ответ API без чувствительных полей
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Login:     u.Login,
		Role:      u.Role,
		BranchID:  u.BranchID,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		Branch:    u.Branch,
	}
}

// IsKnownRole проверяет, что роль входит в закрытый список ролей
func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleMechanic, RoleDriver:
		return true
	}
	return false
}
