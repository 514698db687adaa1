package middleware

import (
	"net/http"

	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			// admin passes every role gate
			allowed := role == entity.RoleAdmin
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireFrontDesk allows receptionists to manage appointments
func RequireFrontDesk(next http.Handler) http.Handler {
	return RequireRole(entity.RoleReceptionist)(next)
}

// RequireCashier allows cashiers to manage bills and payments
func RequireCashier(next http.Handler) http.Handler {
	return RequireRole(entity.RoleCashier, entity.RoleReceptionist)(next)
}

// RequireStaff admits any authenticated clinic role for read endpoints
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleReceptionist, entity.RoleCashier, entity.RoleDoctor)(next)
}
