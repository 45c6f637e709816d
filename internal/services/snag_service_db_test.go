package services_test

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
)

// openTestDB подключается к базе из TEST_DATABASE_DSN.
// Без нее интеграционные тесты пропускаются.
func openTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN не задан, пропускаем интеграционные тесты")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Branch{},
		&models.VehicleCategory{},
		&models.User{},
		&models.Vehicle{},
		&models.Snag{},
		&models.SnagAssignment{},
		&models.SnagResolution{},
		&models.MaintenanceLog{},
	))
	return db
}

func uniqueRegNumber() string {
	return fmt.Sprintf("T%019d", time.Now().UnixNano())
}

// seedVehicle создает филиал, категорию и машину филиала
func seedVehicle(t *testing.T, db *gorm.DB) (models.Vehicle, models.Branch) {
	branch := models.Branch{Name: fmt.Sprintf("Филиал %d", time.Now().UnixNano())}
	require.NoError(t, db.Create(&branch).Error)

	category := models.VehicleCategory{Name: fmt.Sprintf("Категория %d", time.Now().UnixNano())}
	require.NoError(t, db.Create(&category).Error)

	vehicle := models.Vehicle{
		RegNumber:  uniqueRegNumber(),
		BranchID:   &branch.ID,
		CategoryID: category.ID,
		Mileage:    10000,
		Health:     models.VehicleHealthOK,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle, branch
}

func seedUser(t *testing.T, db *gorm.DB, role string, branchID *uint) models.User {
	user := models.User{
		FullName:     "Тестовый пользователь",
		Login:        fmt.Sprintf("user%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         role,
		BranchID:     branchID,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Отчет с несколькими позициями создает по записи на каждую непустую
// позицию, все с общим контекстом машины, филиала и пробега
func TestReportCreatesSnagPerIssue(t *testing.T) {
	db := openTestDB(t)
	vehicle, branch := seedVehicle(t, db)
	reporter := seedUser(t, db, models.RoleDriver, &branch.ID)

	service := services.NewSnagService(db)
	mileage := 12500
	snags, err := service.Report(reporter.ID, &branch.ID, services.ReportInput{
		VehicleID: vehicle.ID,
		Mileage:   &mileage,
		Issues: []services.IssueInput{
			{Description: "Стук в подвеске", Priority: models.SnagPriorityImportant},
			{Description: "   "},
			{Description: "Царапина на двери", Priority: models.SnagPriorityAesthetic},
		},
	})
	require.NoError(t, err)
	require.Len(t, snags, 2)

	var stored []models.Snag
	require.NoError(t, db.Where("vehicle_id = ?", vehicle.ID).Order("id").Find(&stored).Error)
	require.Len(t, stored, 2)
	for _, snag := range stored {
		require.Equal(t, branch.ID, snag.BranchID)
		require.Equal(t, models.SnagStatusOpen, snag.Status)
		require.Equal(t, reporter.ID, snag.ReportedBy)
		require.NotNil(t, snag.Mileage)
		require.Equal(t, mileage, *snag.Mileage)
	}
	require.Equal(t, "Стук в подвеске", stored[0].Description)
	require.Equal(t, "Царапина на двери", stored[1].Description)
}

// Устранение терминально: повторное устранение отклоняется, запись об
// устранении единственная, активное назначение закрывается, запись
// журнала обслуживания создается в той же транзакции
func TestResolveIsTerminal(t *testing.T) {
	db := openTestDB(t)
	vehicle, branch := seedVehicle(t, db)
	reporter := seedUser(t, db, models.RoleDriver, &branch.ID)
	mechanic := seedUser(t, db, models.RoleMechanic, &branch.ID)
	manager := seedUser(t, db, models.RoleManager, &branch.ID)

	service := services.NewSnagService(db)
	snags, err := service.Report(reporter.ID, &branch.ID, services.ReportInput{
		VehicleID: vehicle.ID,
		Issues:    []services.IssueInput{{Description: "Не работает печка", Priority: models.SnagPriorityImportant}},
	})
	require.NoError(t, err)
	require.Len(t, snags, 1)
	snagID := snags[0].ID

	assignment, err := service.Assign(snagID, manager.ID, services.AssignInput{AssigneeID: mechanic.ID})
	require.NoError(t, err)
	require.Equal(t, models.SnagAssignmentStatusActive, assignment.Status)

	var snag models.Snag
	require.NoError(t, db.First(&snag, snagID).Error)
	require.Equal(t, models.SnagStatusAssigned, snag.Status)

	input := services.ResolveInput{
		Method: models.ResolutionMethodRepaired,
		Notes:  "Заменен радиатор печки",
		Log: &services.MaintenanceLogInput{
			VehicleID:     vehicle.ID,
			BranchID:      branch.ID,
			ServiceDate:   time.Now(),
			Mileage:       12600,
			WorkDone:      "Замена радиатора печки",
			PerformedByID: &mechanic.ID,
		},
	}
	result, err := service.Resolve(snagID, mechanic.ID, input)
	require.NoError(t, err)
	require.NotNil(t, result.Log)

	// Повторное устранение отклоняется
	_, err = service.Resolve(snagID, mechanic.ID, input)
	require.ErrorIs(t, err, services.ErrAlreadyResolved)

	require.NoError(t, db.First(&snag, snagID).Error)
	require.Equal(t, models.SnagStatusResolved, snag.Status)

	var resolutions int64
	require.NoError(t, db.Model(&models.SnagResolution{}).Where("snag_id = ?", snagID).Count(&resolutions).Error)
	require.EqualValues(t, 1, resolutions)

	var stored models.SnagAssignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	require.Equal(t, models.SnagAssignmentStatusClosed, stored.Status)

	var logs int64
	require.NoError(t, db.Model(&models.MaintenanceLog{}).Where("vehicle_id = ?", vehicle.ID).Count(&logs).Error)
	require.EqualValues(t, 1, logs)
}

// Нарушение уникального индекса транслируется драйвером
// в gorm.ErrDuplicatedKey
func TestDuplicateRegNumberTranslated(t *testing.T) {
	db := openTestDB(t)
	vehicle, branch := seedVehicle(t, db)

	duplicate := models.Vehicle{
		RegNumber:  vehicle.RegNumber,
		BranchID:   &branch.ID,
		CategoryID: vehicle.CategoryID,
		Health:     models.VehicleHealthOK,
	}
	err := db.Create(&duplicate).Error
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
