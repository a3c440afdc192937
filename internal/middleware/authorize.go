package middleware

import (
	"github.com/gin-gonic/gin"

	"stockify/internal/apperr"
	"stockify/internal/models"
)

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abortWith(c, apperr.Unauthorized("Access token is required"))
			return
		}

		if _, ok := roleSet[models.UserRole(claims.Role)]; !ok {
			abortWith(c, apperr.Forbidden("You do not have permission to perform this action"))
			return
		}

		c.Next()
	}
}
