package models

import (
	"time"

	"github.com/lib/pq"
)

type SnagStatus string

const (
	SnagStatusOpen     SnagStatus = "open"     // Зарегистрирована
	SnagStatusAssigned SnagStatus = "assigned" // Назначен исполнитель
	SnagStatusResolved SnagStatus = "resolved" // Устранена (терминальный статус)
)

type SnagPriority string

// Приоритеты неисправностей
const (
	SnagPriorityDangerous SnagPriority = "Dangerous"
	SnagPriorityImportant SnagPriority = "Important"
	SnagPriorityNiceToFix SnagPriority = "Nice to Fix"
	SnagPriorityAesthetic SnagPriority = "Aesthetic"
	SnagPriorityNone      SnagPriority = ""
)

// IsValidSnagPriority проверяет допустимость приоритета (пустой — допустим)
func IsValidSnagPriority(p SnagPriority) bool {
	switch p {
	case SnagPriorityDangerous, SnagPriorityImportant, SnagPriorityNiceToFix, SnagPriorityAesthetic, SnagPriorityNone:
		return true
	}
	return false
}

// Snag представляет зарегистрированную неисправность транспортного средства
type Snag struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	VehicleID   uint           `json:"vehicle_id" gorm:"not null"`
	BranchID    uint           `json:"branch_id" gorm:"not null"`
	Description string         `json:"description" gorm:"not null;type:text"`
	Priority    SnagPriority   `json:"priority" gorm:"type:varchar(20);default:''"`
	Status      SnagStatus     `json:"status" gorm:"type:varchar(20);default:'open'"`
	Mileage     *int           `json:"mileage,omitempty"` // пробег на момент регистрации
	PhotoUrls   pq.StringArray `json:"photo_urls" gorm:"type:text[]"`
	ReportedBy  uint           `json:"reported_by" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Vehicle     *Vehicle       `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
}

type SnagAssignmentStatus string

const (
	SnagAssignmentStatusActive     SnagAssignmentStatus = "active"
	SnagAssignmentStatusSuperseded SnagAssignmentStatus = "superseded" // заменено новым назначением
	SnagAssignmentStatusClosed     SnagAssignmentStatus = "closed"     // закрыто при устранении
)

// SnagAssignment представляет назначение неисправности исполнителю
type SnagAssignment struct {
	ID         uint                 `json:"id" gorm:"primaryKey"`
	SnagID     uint                 `json:"snag_id" gorm:"not null"`
	AssigneeID uint                 `json:"assignee_id" gorm:"not null"`
	AssignerID uint                 `json:"assigner_id" gorm:"not null"`
	Deadline   *time.Time           `json:"deadline,omitempty"`
	Notes      string               `json:"notes" gorm:"type:text;default:''"`
	Status     SnagAssignmentStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Assignee   *User                `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`
}

type ResolutionMethod string

// Способы устранения неисправности
const (
	ResolutionMethodRepaired     ResolutionMethod = "Repaired"
	ResolutionMethodReplacedPart ResolutionMethod = "Replaced Part"
	ResolutionMethodThirdParty   ResolutionMethod = "Third Party Service"
	ResolutionMethodNoAction     ResolutionMethod = "No Action Needed"
	ResolutionMethodOther        ResolutionMethod = "Other"
)

// IsValidResolutionMethod проверяет допустимость способа устранения
func IsValidResolutionMethod(m ResolutionMethod) bool {
	switch m {
	case ResolutionMethodRepaired, ResolutionMethodReplacedPart, ResolutionMethodThirdParty,
		ResolutionMethodNoAction, ResolutionMethodOther:
		return true
	}
	return false
}

// SnagResolution представляет запись об устранении неисправности
type SnagResolution struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	SnagID     uint             `json:"snag_id" gorm:"not null"`
	Method     ResolutionMethod `json:"method" gorm:"type:varchar(30);not null"`
	Notes      string           `json:"notes" gorm:"not null;type:text"`
	ResolverID uint             `json:"resolver_id" gorm:"not null"`
	PhotoUrls  pq.StringArray   `json:"photo_urls" gorm:"type:text[]"`
	CreatedAt  time.Time        `json:"created_at"`
}
