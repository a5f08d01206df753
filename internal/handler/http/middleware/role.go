package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// RequireRole allows the request only when the role claim is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	required := strings.Join(roles, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of '%s'", required))
				return
			}

			role, _ := claims["role"].(string)
			if _, ok := allowed[role]; !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of '%s', but user role is '%s'", required, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
