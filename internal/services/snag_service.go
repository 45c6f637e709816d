package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fleet-backend/internal/models"
)

// Ошибки валидации рабочего процесса. Проверки выполняются до обращения
// к базе, при ошибке валидации состояние не меняется.
var (
	ErrNoIssues         = errors.New("не указано ни одной неисправности")
	ErrBranchRequired   = errors.New("не удалось определить филиал, выберите филиал явно")
	ErrInvalidPriority  = errors.New("недопустимый приоритет неисправности")
	ErrInvalidMethod    = errors.New("недопустимый способ устранения")
	ErrNotesRequired    = errors.New("описание устранения обязательно")
	ErrLogFieldsMissing = errors.New("для записи в журнал обслуживания нужны машина, филиал, дата, пробег, описание работ и исполнитель")
	ErrAlreadyResolved  = errors.New("неисправность уже устранена")
	ErrVehicleNotFound  = errors.New("транспортное средство не найдено")
	ErrSnagNotFound     = errors.New("неисправность не найдена")
)

// IssueInput описывает одну позицию в отчете о неисправностях
type IssueInput struct {
	Description string              `json:"description"`
	Priority    models.SnagPriority `json:"priority"`
}

// ReportInput описывает отчет: одна машина, несколько позиций,
// общий контекст (пробег, фото, явный выбор филиала)
type ReportInput struct {
	VehicleID uint        `json:"vehicle_id" binding:"required"`
	BranchID  *uint       `json:"branch_id"`
	Mileage   *int        `json:"mileage"`
	PhotoUrls []string    `json:"photo_urls"`
	Issues    []IssueInput `json:"issues"`
}

// FilterIssues отбрасывает позиции с пустым описанием
func FilterIssues(issues []IssueInput) []IssueInput {
	filtered := make([]IssueInput, 0, len(issues))
	for _, issue := range issues {
		if strings.TrimSpace(issue.Description) == "" {
			continue
		}
		filtered = append(filtered, issue)
	}
	return filtered
}

// ResolveBranchID определяет филиал неисправности: филиал автора отчета,
// иначе филиал машины, иначе явно выбранный филиал. Если ни один не задан —
// ошибка валидации.
func ResolveBranchID(callerBranch, vehicleBranch, explicit *uint) (uint, error) {
	switch {
	case callerBranch != nil:
		return *callerBranch, nil
	case vehicleBranch != nil:
		return *vehicleBranch, nil
	case explicit != nil:
		return *explicit, nil
	}
	return 0, ErrBranchRequired
}

// MaintenanceLogInput описывает запись журнала обслуживания,
// создаваемую вместе с устранением неисправности
type MaintenanceLogInput struct {
	VehicleID       uint      `json:"vehicle_id"`
	BranchID        uint      `json:"branch_id"`
	ServiceDate     time.Time `json:"service_date"`
	Mileage         int       `json:"mileage"`
	WorkDone        string    `json:"work_done"`
	PerformedByID   *uint     `json:"performed_by_id"`
	PerformedByName string    `json:"performed_by_name"`
	CheckedByID     *uint     `json:"checked_by_id"`
	PhotoUrls       []string  `json:"photo_urls"`
	Notes           string    `json:"notes"`
}

// ResolveInput описывает устранение неисправности.
// Log задается, если одновременно создается запись журнала обслуживания;
// фото журнала не зависят от фото самого устранения.
type ResolveInput struct {
	Method    models.ResolutionMethod `json:"method"`
	Notes     string                  `json:"notes"`
	PhotoUrls []string                `json:"photo_urls"`
	Log       *MaintenanceLogInput    `json:"maintenance_log"`
}

// ValidateResolveInput проверяет данные устранения до обращения к базе
func ValidateResolveInput(input ResolveInput) error {
	if !models.IsValidResolutionMethod(input.Method) {
		return ErrInvalidMethod
	}
	if strings.TrimSpace(input.Notes) == "" {
		return ErrNotesRequired
	}
	if input.Log != nil {
		entry := input.Log
		hasPerformer := entry.PerformedByID != nil || strings.TrimSpace(entry.PerformedByName) != ""
		if entry.VehicleID == 0 || entry.BranchID == 0 || entry.ServiceDate.IsZero() ||
			entry.Mileage <= 0 || strings.TrimSpace(entry.WorkDone) == "" || !hasPerformer {
			return ErrLogFieldsMissing
		}
	}
	return nil
}

// ResolveResult содержит созданные записи: устранение и,
// если запрашивалась, запись журнала обслуживания
type ResolveResult struct {
	Resolution models.SnagResolution  `json:"resolution"`
	Log        *models.MaintenanceLog `json:"maintenance_log,omitempty"`
}

// AssignInput описывает назначение неисправности исполнителю
type AssignInput struct {
	AssigneeID uint       `json:"assignee_id" binding:"required"`
	Deadline   *time.Time `json:"deadline"`
	Notes      string     `json:"notes"`
}

// SnagService реализует жизненный цикл неисправности:
// регистрация -> назначение -> устранение (терминальное)
type SnagService struct {
	db *gorm.DB
}

func NewSnagService(db *gorm.DB) *SnagService {
	return &SnagService{db: db}
}

// Report регистрирует неисправности: по одной записи на каждую позицию
// с непустым описанием, все с общим контекстом машины, филиала и пробега
func (s *SnagService) Report(reporterID uint, callerBranch *uint, input ReportInput) ([]models.Snag, error) {
	issues := FilterIssues(input.Issues)
	if len(issues) == 0 {
		return nil, ErrNoIssues
	}

	for _, issue := range issues {
		if !models.IsValidSnagPriority(issue.Priority) {
			return nil, ErrInvalidPriority
		}
	}

	var vehicle models.Vehicle
	if err := s.db.First(&vehicle, input.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	branchID, err := ResolveBranchID(callerBranch, vehicle.BranchID, input.BranchID)
	if err != nil {
		return nil, err
	}

	snags := make([]models.Snag, 0, len(issues))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, issue := range issues {
			snag := models.Snag{
				VehicleID:   input.VehicleID,
				BranchID:    branchID,
				Description: issue.Description,
				Priority:    issue.Priority,
				Status:      models.SnagStatusOpen,
				Mileage:     input.Mileage,
				PhotoUrls:   input.PhotoUrls,
				ReportedBy:  reporterID,
			}
			if err := tx.Create(&snag).Error; err != nil {
				return err
			}
			snags = append(snags, snag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snags, nil
}

// Assign назначает неисправность исполнителю. Повторное назначение
// заменяет предыдущее активное. Устраненную неисправность назначить нельзя.
func (s *SnagService) Assign(snagID, assignerID uint, input AssignInput) (*models.SnagAssignment, error) {
	var assignment models.SnagAssignment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var snag models.Snag
		if err := tx.First(&snag, snagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSnagNotFound
			}
			return err
		}

		if snag.Status == models.SnagStatusResolved {
			return ErrAlreadyResolved
		}

		// Предыдущее активное назначение помечаем замененным
		if err := tx.Model(&models.SnagAssignment{}).
			Where("snag_id = ? AND status = ?", snagID, models.SnagAssignmentStatusActive).
			Update("status", models.SnagAssignmentStatusSuperseded).Error; err != nil {
			return err
		}

		assignment = models.SnagAssignment{
			SnagID:     snagID,
			AssigneeID: input.AssigneeID,
			AssignerID: assignerID,
			Deadline:   input.Deadline,
			Notes:      input.Notes,
			Status:     models.SnagAssignmentStatusActive,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		return tx.Model(&snag).Update("status", models.SnagStatusAssigned).Error
	})
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

// Resolve устраняет неисправность и при необходимости создает запись журнала
// обслуживания. Обе записи создаются в одной транзакции, частичное состояние
// невозможно. Переход в статус "resolved" терминальный.
func (s *SnagService) Resolve(snagID, resolverID uint, input ResolveInput) (*ResolveResult, error) {
	if err := ValidateResolveInput(input); err != nil {
		return nil, err
	}

	result := &ResolveResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var snag models.Snag
		if err := tx.First(&snag, snagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSnagNotFound
			}
			return err
		}

		if snag.Status == models.SnagStatusResolved {
			return ErrAlreadyResolved
		}

		resolution := models.SnagResolution{
			SnagID:     snagID,
			Method:     input.Method,
			Notes:      input.Notes,
			ResolverID: resolverID,
			PhotoUrls:  input.PhotoUrls,
		}
		if err := tx.Create(&resolution).Error; err != nil {
			return err
		}
		result.Resolution = resolution

		if err := tx.Model(&snag).Update("status", models.SnagStatusResolved).Error; err != nil {
			return err
		}

		// Закрываем активное назначение, если оно было
		if err := tx.Model(&models.SnagAssignment{}).
			Where("snag_id = ? AND status = ?", snagID, models.SnagAssignmentStatusActive).
			Update("status", models.SnagAssignmentStatusClosed).Error; err != nil {
			return err
		}

		if input.Log != nil {
			logEntry := models.MaintenanceLog{
				VehicleID:       input.Log.VehicleID,
				BranchID:        input.Log.BranchID,
				ServiceDate:     input.Log.ServiceDate,
				Mileage:         input.Log.Mileage,
				WorkDone:        input.Log.WorkDone,
				PerformedByID:   input.Log.PerformedByID,
				PerformedByName: input.Log.PerformedByName,
				CheckedByID:     input.Log.CheckedByID,
				PhotoUrls:       input.Log.PhotoUrls,
				Notes:           input.Log.Notes,
			}
			if err := tx.Create(&logEntry).Error; err != nil {
				return err
			}
			result.Log = &logEntry
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
