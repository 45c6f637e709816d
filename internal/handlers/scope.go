package handlers

import (
	"fleet-backend/internal/permissions"
)

// CanViewBranchEntity проверяет доступ к записи филиала: пользователь без
// права просмотра всех филиалов видит только записи своего филиала.
// Запись без филиала доступна только ролям со сквозным доступом.
func CanViewBranchEntity(role string, callerBranch, entityBranch *uint) bool {
	if permissions.PermissionsFor(role).ViewAllBranches {
		return true
	}
	if callerBranch == nil || entityBranch == nil {
		return false
	}
	return *callerBranch == *entityBranch
}
