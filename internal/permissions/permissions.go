package permissions

import (
	"strings"

	"fleet-backend/internal/models"
)

// PermissionSet описывает набор возможностей роли
type PermissionSet struct {
	ViewAllBranches bool `json:"view_all_branches"`
	CreateGlobal    bool `json:"create_global"`
	EditGlobal      bool `json:"edit_global"`
	DeleteGlobal    bool `json:"delete_global"`
	CreateInBranch  bool `json:"create_in_branch"`
	EditInBranch    bool `json:"edit_in_branch"`
	DeleteInBranch  bool `json:"delete_in_branch"`
	ManageUsers     bool `json:"manage_users"`
	ManageBranches  bool `json:"manage_branches"`
	ViewReports     bool `json:"view_reports"`
}

// PermissionsFor возвращает набор возможностей для роли.
// Неизвестная или пустая роль получает пустой набор (доступ закрыт).
func PermissionsFor(role string) PermissionSet {
	switch role {
	case models.RoleAdmin:
		return PermissionSet{
			ViewAllBranches: true,
			CreateGlobal:    true,
			EditGlobal:      true,
			DeleteGlobal:    true,
			CreateInBranch:  true,
			EditInBranch:    true,
			DeleteInBranch:  true,
			ManageUsers:     true,
			ManageBranches:  true,
			ViewReports:     true,
		}
	case models.RoleManager:
		return PermissionSet{
			CreateInBranch: true,
			EditInBranch:   true,
			DeleteInBranch: true,
			ViewReports:    true,
		}
	case models.RoleMechanic:
		return PermissionSet{
			CreateInBranch: true,
			EditInBranch:   true,
		}
	case models.RoleDriver:
		return PermissionSet{
			EditInBranch: true,
		}
	}
	return PermissionSet{}
}

// CanAccessRoute проверяет доступ роли к маршруту по его пути.
// Разделы пользователей и настроек закрыты отдельными возможностями,
// остальные маршруты доступны всем аутентифицированным ролям.
func CanAccessRoute(role string, routePath string) bool {
	perms := PermissionsFor(role)

	switch {
	case strings.HasPrefix(routePath, "/users"):
		return perms.ManageUsers
	case strings.HasPrefix(routePath, "/settings"):
		return perms.ManageBranches
	case strings.HasPrefix(routePath, "/reports"):
		return perms.ViewReports
	}
	return true
}

// CanMutateBranch проверяет право роли изменять данные в указанном филиале.
// Глобальные права покрывают любой филиал, остальные — только собственный.
func CanMutateBranch(role string, userBranch *uint, targetBranch uint) bool {
	perms := PermissionsFor(role)
	if perms.EditGlobal {
		return true
	}
	return perms.EditInBranch && userBranch != nil && *userBranch == targetBranch
}
