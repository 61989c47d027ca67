package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	"github.com/devboard-io/devboard/internal/infrastructure/session"
	"github.com/devboard-io/devboard/pkg/logger"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// UserContextKey is the key for storing user in context
	UserContextKey ContextKey = "user"

	// SessionIDContextKey is the key for storing the session id in context
	SessionIDContextKey ContextKey = "session_id"

	// IsAuthenticatedKey is the key for storing authentication status
	IsAuthenticatedKey ContextKey = "is_authenticated"
)

// SessionMiddleware resolves the session cookie to a user. The identity JWT
// cookie is never consulted here, only the server-side session counts.
type SessionMiddleware struct {
	sessions *session.Store
	userRepo repository.UserRepository
	config   *config.SessionConfig
	log      *logger.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware instance
func NewSessionMiddleware(
	sessions *session.Store,
	userRepo repository.UserRepository,
	cfg *config.SessionConfig,
) *SessionMiddleware {
	return &SessionMiddleware{
		sessions: sessions,
		userRepo: userRepo,
		config:   cfg,
		log:      logger.Get().WithFields(logger.Component("session-middleware")),
	}
}

// Authenticate resolves the session if one is present but doesn't require it
func (m *SessionMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, sessionID := m.resolveUser(c); user != nil {
			m.setUserContext(c, user, sessionID)
		}
		c.Next()
	}
}

// RequireAuth requires a valid session for the endpoint
func (m *SessionMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sessionID := m.resolveUser(c)
		if user == nil {
			m.log.Warn("Authentication required but not provided",
				logger.Path(c.Request.URL.Path),
				logger.Method(c.Request.Method),
				logger.ClientIP(c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		m.setUserContext(c, user, sessionID)
		c.Next()
	}
}

// RequireAdmin requires a valid session belonging to an admin
func (m *SessionMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sessionID := m.resolveUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			return
		}

		if !user.IsAdmin {
			m.log.Warn("Non-admin user attempted to access admin endpoint",
				logger.UserID(user.ID.String()),
				logger.Username(user.Username),
				logger.Path(c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin privileges required",
			})
			return
		}

		m.setUserContext(c, user, sessionID)
		c.Next()
	}
}

// resolveUser maps the session cookie to a user, returning nil for missing,
// expired or orphaned sessions
func (m *SessionMiddleware) resolveUser(c *gin.Context) (*models.User, string) {
	sessionID, err := c.Cookie(m.config.CookieName)
	if err != nil || sessionID == "" {
		return nil, ""
	}

	ctx := c.Request.Context()
	userID, err := m.sessions.Resolve(ctx, sessionID)
	if err != nil {
		m.log.Error("Session lookup failed",
			logger.Error(err),
		)
		return nil, ""
	}
	if userID == uuid.Nil {
		return nil, ""
	}

	user, err := m.userRepo.FindByID(ctx, userID)
	if err != nil {
		// Session outlived the account, drop it
		_ = m.sessions.Destroy(ctx, sessionID)
		return nil, ""
	}

	return user, sessionID
}

// setUserContext sets the user in the gin context
func (m *SessionMiddleware) setUserContext(c *gin.Context, user *models.User, sessionID string) {
	c.Set(string(UserContextKey), user)
	c.Set(string(SessionIDContextKey), sessionID)
	c.Set(string(IsAuthenticatedKey), true)

	// Also set in request context for downstream handlers
	ctx := context.WithValue(c.Request.Context(), UserContextKey, user)
	ctx = context.WithValue(ctx, IsAuthenticatedKey, true)
	c.Request = c.Request.WithContext(ctx)
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c *gin.Context) *models.User {
	if user, exists := c.Get(string(UserContextKey)); exists {
		if u, ok := user.(*models.User); ok {
			return u
		}
	}
	return nil
}

// GetSessionIDFromContext retrieves the session id from the context
func GetSessionIDFromContext(c *gin.Context) string {
	if id, exists := c.Get(string(SessionIDContextKey)); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// IsAuthenticated checks if the request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	if authenticated, exists := c.Get(string(IsAuthenticatedKey)); exists {
		if auth, ok := authenticated.(bool); ok {
			return auth
		}
	}
	return false
}
