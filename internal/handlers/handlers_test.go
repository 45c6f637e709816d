package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"fleet-backend/internal/handlers"
	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
)

// testRouter собирает роутер с подставными данными пользователя в контексте.
// База передается как nil: проверки валидации должны срабатывать до
// обращения к хранилищу.
func testRouter(userID uint, role string, branchID *uint, register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		if branchID != nil {
			c.Set("branch_id", *branchID)
		}
		c.Next()
	})
	register(r)
	return r
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Админ не может снять с себя роль администратора: запрос отклоняется
// до обращения к базе
func TestUserUpdateSelfDemotionRejected(t *testing.T) {
	r := testRouter(1, models.RoleAdmin, nil, func(r *gin.Engine) {
		r.PUT("/users/:id", handlers.UserUpdate(nil))
	})

	role := models.RoleManager
	w := performJSON(r, http.MethodPut, "/users/1", handlers.UserUpdateRequest{Role: &role})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "администратора")
}

// Назначение филиала вместе с ролью администратора отклоняется
// до обращения к базе
func TestUserUpdateAdminWithBranchRejected(t *testing.T) {
	r := testRouter(1, models.RoleAdmin, nil, func(r *gin.Engine) {
		r.PUT("/users/:id", handlers.UserUpdate(nil))
	})

	role := models.RoleAdmin
	branch := uint(5)
	w := performJSON(r, http.MethodPut, "/users/2", handlers.UserUpdateRequest{Role: &role, BranchID: &branch})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Администратору филиал не назначается")
}

// Собственную учетную запись удалить нельзя
func TestUserDeleteSelfRejected(t *testing.T) {
	r := testRouter(7, models.RoleAdmin, nil, func(r *gin.Engine) {
		r.DELETE("/users/:id", handlers.UserDelete(nil))
	})

	req := httptest.NewRequest(http.MethodDelete, "/users/7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

// Отчет, в котором все описания пустые, отклоняется без обращения к базе
func TestSnagReportAllEmptyRejected(t *testing.T) {
	branch := uint(1)
	r := testRouter(2, models.RoleDriver, &branch, func(r *gin.Engine) {
		r.POST("/snags", handlers.SnagReport(services.NewSnagService(nil)))
	})

	w := performJSON(r, http.MethodPost, "/snags", services.ReportInput{
		VehicleID: 1,
		Issues: []services.IssueInput{
			{Description: ""},
			{Description: "   "},
		},
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "ни одной неисправности")
}

// Устранение с пустым описанием отклоняется без обращения к базе
func TestSnagResolveEmptyNotesRejected(t *testing.T) {
	r := testRouter(2, models.RoleMechanic, nil, func(r *gin.Engine) {
		r.POST("/snags/:id/resolve", handlers.SnagResolve(nil, services.NewSnagService(nil)))
	})

	w := performJSON(r, http.MethodPost, "/snags/1/resolve", services.ResolveInput{
		Method: models.ResolutionMethodRepaired,
		Notes:  "",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

// Регистрация с несовпадающими паролями отклоняется до обращения к базе
func TestAuthRegisterPasswordMismatchRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handlers.AuthRegister(nil))

	branch := uint(1)
	w := performJSON(r, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		FullName:        "Иван Иванов",
		Login:           "ivan@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
		Role:            models.RoleManager,
		BranchID:        &branch,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Пароли не совпадают")
}

// Регистрация с коротким паролем отклоняется до обращения к базе
func TestAuthRegisterShortPasswordRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handlers.AuthRegister(nil))

	branch := uint(1)
	w := performJSON(r, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		FullName:        "Иван Иванов",
		Login:           "ivan@example.com",
		Password:        "123",
		ConfirmPassword: "123",
		Role:            models.RoleManager,
		BranchID:        &branch,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

// Не-админ без филиала не регистрируется
func TestAuthRegisterBranchRules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handlers.AuthRegister(nil))

	w := performJSON(r, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		FullName:        "Петр Петров",
		Login:           "petr@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            models.RoleMechanic,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "филиал")

	// Админу филиал назначать нельзя
	branch := uint(1)
	w = performJSON(r, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		FullName:        "Анна Смирнова",
		Login:           "anna@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            models.RoleAdmin,
		BranchID:        &branch,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

// Неизвестная роль при регистрации отклоняется
func TestAuthRegisterUnknownRoleRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", handlers.AuthRegister(nil))

	branch := uint(1)
	w := performJSON(r, http.MethodPost, "/auth/register", handlers.RegisterRequest{
		FullName:        "Ольга Кузнецова",
		Login:           "olga@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            "staff",
		BranchID:        &branch,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Неизвестная роль")
}
