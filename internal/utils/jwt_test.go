package utils

import (
	"testing"

	"fleet-backend/internal/models"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	branchID := uint(7)
	user := &models.User{
		ID:       42,
		Role:     models.RoleManager,
		BranchID: &branchID,
	}

	token, err := GenerateJWT(user)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.Role != models.RoleManager {
		t.Fatalf("expected role manager, got %s", claims.Role)
	}
	if claims.BranchID == nil || *claims.BranchID != branchID {
		t.Fatalf("expected branch_id %d, got %v", branchID, claims.BranchID)
	}
	if claims.ID == "" {
		t.Fatalf("expected non-empty jti")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")

	token, err := GenerateAdminJWT()
	if err != nil {
		t.Fatalf("GenerateAdminJWT: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ValidateToken(token); err == nil {
		t.Fatalf("expected error for token signed with another secret")
	}
}
