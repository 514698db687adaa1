package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-billing-core/internal/delivery/http/middleware"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serveWithRole(gate func(http.Handler) http.Handler, role string) int {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	if role != "" {
		ctx = middleware.WithClaims(ctx, &jwt.Claims{UserID: uuid.New(), Role: role, TokenType: jwt.AccessToken})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	gate(next).ServeHTTP(rec, req)
	return rec.Code
}

func TestRoleGates(t *testing.T) {
	tests := []struct {
		name string
		gate func(http.Handler) http.Handler
		role string
		want int
	}{
		{"front desk admits receptionist", middleware.RequireFrontDesk, entity.RoleReceptionist, http.StatusNoContent},
		{"front desk refuses cashier", middleware.RequireFrontDesk, entity.RoleCashier, http.StatusForbidden},
		{"cashier admits cashier", middleware.RequireCashier, entity.RoleCashier, http.StatusNoContent},
		{"cashier refuses doctor", middleware.RequireCashier, entity.RoleDoctor, http.StatusForbidden},
		{"staff admits doctor", middleware.RequireStaff, entity.RoleDoctor, http.StatusNoContent},
		{"staff refuses unknown role", middleware.RequireStaff, "patient", http.StatusForbidden},
		{"admin gate refuses receptionist", middleware.RequireAdmin, entity.RoleReceptionist, http.StatusForbidden},
		{"admin passes front desk", middleware.RequireFrontDesk, entity.RoleAdmin, http.StatusNoContent},
		{"admin passes cashier", middleware.RequireCashier, entity.RoleAdmin, http.StatusNoContent},
		{"no claims", middleware.RequireStaff, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serveWithRole(tt.gate, tt.role))
		})
	}
}

func TestWithClaims(t *testing.T) {
	userID := uuid.New()
	ctx := middleware.WithClaims(context.Background(), &jwt.Claims{UserID: userID, Email: "desk@clinic.lk", Role: entity.RoleCashier})

	gotID, ok := middleware.GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID, gotID)

	role, ok := middleware.GetRoleFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, entity.RoleCashier, role)

	_, ok = middleware.GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}
