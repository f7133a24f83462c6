package middleware

import (
	"strings"

	"bookmybus/internal/domain"

	"github.com/gin-gonic/gin"
)

// RequireRoles only lets requests through whose role, set by Auth, is one
// of allowedRoles. Must run after Auth.
//
//	r.GET("/admin/all", Auth(tokens), RequireRoles(domain.RoleAdmin), handler)
func RequireRoles(allowedRoles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(string(r)))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abortUnauthorized(c, "No token, authorization denied")
			return
		}
		if _, ok := allowed[strings.ToLower(role)]; !ok {
			abortUnauthorized(c, "Admin access required")
			return
		}
		c.Next()
	}
}
