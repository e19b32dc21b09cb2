package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-portal/internal/models"
	appErrors "github.com/noah-isme/sma-portal/pkg/errors"
	"github.com/noah-isme/sma-portal/pkg/response"
)

// RequireRoles enforces role-based access control for routes. Roles are compared after
// normalisation, so an unknown role counts as student.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[models.ParseRole(string(r))] = struct{}{}
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, appErrors.ErrNotAuthenticated)
			c.Abort()
			return
		}
		if _, ok := allowed[user.EffectiveRole()]; ok {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireStaff lets teachers and admins through.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(models.RoleTeacher, models.RoleAdmin)
}
