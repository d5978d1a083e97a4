package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/promptdeck/promptdeck/internal/models"
	appErrors "github.com/promptdeck/promptdeck/pkg/errors"
	"github.com/promptdeck/promptdeck/pkg/response"
)

// RequireRole checks that the authenticated user currently holds one of the
// given roles. The role is read from the database rather than the token so
// that admin-initiated role changes take effect before the token expires.
func RequireRole(db *gorm.DB, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		var user models.User
		err := db.WithContext(c.Request.Context()).
			Select("id", "role").
			First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if err != nil {
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(CtxUserRoleKey, user.Role)
		c.Next()
	}
}

// RequireAdmin restricts the route to administrators.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return RequireRole(db, models.RoleAdmin)
}
