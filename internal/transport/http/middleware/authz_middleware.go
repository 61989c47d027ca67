package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/pkg/logger"
)

// AuthzMiddleware gates endpoints on role permission flags. Admins bypass
// the role check; everyone else needs the flag set to true on their role.
// A missing role or an absent flag denies.
type AuthzMiddleware struct {
	log *logger.Logger
}

// NewAuthzMiddleware creates a new AuthzMiddleware instance
func NewAuthzMiddleware() *AuthzMiddleware {
	return &AuthzMiddleware{
		log: logger.Get().WithFields(logger.Component("authz-middleware")),
	}
}

// RequirePermission requires the resource:action permission flag. Must run
// after a session middleware that sets the user context.
func (m *AuthzMiddleware) RequirePermission(resource, action string) gin.HandlerFunc {
	permission := models.PermissionKey(resource, action)

	return func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		if user.IsDeactivated {
			m.log.Warn("Deactivated account attempted access",
				logger.UserID(user.ID.String()),
				logger.Path(c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "account is deactivated",
			})
			return
		}

		if user.IsAdmin {
			c.Next()
			return
		}

		if user.Role == nil || !user.Role.Allows(permission) {
			m.log.Warn("Permission denied",
				logger.UserID(user.ID.String()),
				logger.Username(user.Username),
				logger.Permission(permission),
				logger.Path(c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "insufficient permissions",
			})
			return
		}

		c.Next()
	}
}

// RequirePermissionOrSelf behaves like RequirePermission but additionally
// lets callers act on their own record, matched by the :id route parameter.
func (m *AuthzMiddleware) RequirePermissionOrSelf(resource, action string) gin.HandlerFunc {
	permission := models.PermissionKey(resource, action)

	return func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		if user.IsDeactivated {
			m.log.Warn("Deactivated account attempted access",
				logger.UserID(user.ID.String()),
				logger.Path(c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "account is deactivated",
			})
			return
		}

		if user.ID.String() == c.Param("id") || user.IsAdmin {
			c.Next()
			return
		}

		if user.Role == nil || !user.Role.Allows(permission) {
			m.log.Warn("Permission denied",
				logger.UserID(user.ID.String()),
				logger.Username(user.Username),
				logger.Permission(permission),
				logger.Path(c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
