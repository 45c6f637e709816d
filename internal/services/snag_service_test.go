package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
)

func TestFilterIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		issues []services.IssueInput
		want   []string
	}{
		{
			name: "пустые описания отбрасываются",
			issues: []services.IssueInput{
				{Description: "Спущено колесо"},
				{Description: ""},
				{Description: "   "},
			},
			want: []string{"Спущено колесо"},
		},
		{
			name: "все позиции пустые",
			issues: []services.IssueInput{
				{Description: ""},
				{Description: "\t"},
			},
			want: []string{},
		},
		{
			name: "порядок позиций сохраняется",
			issues: []services.IssueInput{
				{Description: "Скрип тормозов", Priority: models.SnagPriorityDangerous},
				{Description: "Царапина на двери", Priority: models.SnagPriorityAesthetic},
			},
			want: []string{"Скрип тормозов", "Царапина на двери"},
		},
		{
			name:   "пустой список",
			issues: nil,
			want:   []string{},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := services.FilterIssues(test.issues)
			descriptions := make([]string, 0, len(got))
			for _, issue := range got {
				descriptions = append(descriptions, issue.Description)
			}
			require.Equal(t, test.want, descriptions)
		})
	}
}

func TestResolveBranchID(t *testing.T) {
	t.Parallel()

	caller := uint(1)
	vehicle := uint(2)
	explicit := uint(3)

	tests := []struct {
		name          string
		callerBranch  *uint
		vehicleBranch *uint
		explicit      *uint
		want          uint
		wantErr       error
	}{
		{"филиал автора имеет приоритет", &caller, &vehicle, &explicit, caller, nil},
		{"иначе филиал машины", nil, &vehicle, &explicit, vehicle, nil},
		{"иначе явный выбор", nil, nil, &explicit, explicit, nil},
		{"ни один не задан", nil, nil, nil, 0, services.ErrBranchRequired},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := services.ResolveBranchID(test.callerBranch, test.vehicleBranch, test.explicit)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, got)
		})
	}
}

func TestValidateResolveInput(t *testing.T) {
	t.Parallel()

	performer := uint(5)
	validLog := services.MaintenanceLogInput{
		VehicleID:     1,
		BranchID:      1,
		ServiceDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Mileage:       12000,
		WorkDone:      "Замена колеса",
		PerformedByID: &performer,
	}

	tests := []struct {
		name    string
		input   services.ResolveInput
		wantErr error
	}{
		{
			name:  "без журнала обслуживания",
			input: services.ResolveInput{Method: models.ResolutionMethodRepaired, Notes: "Заменили колесо"},
		},
		{
			name: "с журналом обслуживания",
			input: services.ResolveInput{
				Method: models.ResolutionMethodReplacedPart,
				Notes:  "Заменили колодки",
				Log:    &validLog,
			},
		},
		{
			name: "исполнитель журнала указан текстом",
			input: services.ResolveInput{
				Method: models.ResolutionMethodThirdParty,
				Notes:  "Сторонний сервис",
				Log: &services.MaintenanceLogInput{
					VehicleID:       1,
					BranchID:        1,
					ServiceDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
					Mileage:         12000,
					WorkDone:        "Диагностика",
					PerformedByName: "Jane",
				},
			},
		},
		{
			name:    "неизвестный способ устранения",
			input:   services.ResolveInput{Method: "Magic", Notes: "..."},
			wantErr: services.ErrInvalidMethod,
		},
		{
			name:    "пустое описание",
			input:   services.ResolveInput{Method: models.ResolutionMethodRepaired, Notes: "   "},
			wantErr: services.ErrNotesRequired,
		},
		{
			name: "журнал без исполнителя",
			input: services.ResolveInput{
				Method: models.ResolutionMethodRepaired,
				Notes:  "Готово",
				Log: &services.MaintenanceLogInput{
					VehicleID:   1,
					BranchID:    1,
					ServiceDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
					Mileage:     12000,
					WorkDone:    "Замена колеса",
				},
			},
			wantErr: services.ErrLogFieldsMissing,
		},
		{
			name: "журнал без даты обслуживания",
			input: services.ResolveInput{
				Method: models.ResolutionMethodRepaired,
				Notes:  "Готово",
				Log: &services.MaintenanceLogInput{
					VehicleID:     1,
					BranchID:      1,
					Mileage:       12000,
					WorkDone:      "Замена колеса",
					PerformedByID: &performer,
				},
			},
			wantErr: services.ErrLogFieldsMissing,
		},
		{
			name: "журнал без филиала",
			input: services.ResolveInput{
				Method: models.ResolutionMethodRepaired,
				Notes:  "Готово",
				Log: &services.MaintenanceLogInput{
					VehicleID:     1,
					ServiceDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
					Mileage:       12000,
					WorkDone:      "Замена колеса",
					PerformedByID: &performer,
				},
			},
			wantErr: services.ErrLogFieldsMissing,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			err := services.ValidateResolveInput(test.input)
			if test.wantErr != nil {
				require.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
