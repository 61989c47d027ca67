package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/internal/application/dto"
	"github.com/devboard-io/devboard/internal/application/service"
	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/infrastructure/session"
	"github.com/devboard-io/devboard/internal/transport/http/middleware"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

const (
	// Cookie holding the OAuth state between redirect and callback
	oauthStateCookie    = "oauth_state"
	oauthStateCookieExp = 10 * time.Minute
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	oauthService *service.OAuthService
	sessions     *session.Store
	config       *config.Config
	log          *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(
	authService *service.AuthService,
	oauthService *service.OAuthService,
	sessions *session.Store,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		oauthService: oauthService,
		sessions:     sessions,
		config:       cfg,
		log:          logger.Get().WithFields(logger.Component("auth-handler")),
	}
}

// GitHubLogin handles GET /api/auth/github
// Initiates the OAuth flow by redirecting to GitHub
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	h.log.Debug("GitHub login initiated",
		logger.ClientIP(c.ClientIP()),
	)

	if !h.oauthService.IsEnabled() {
		h.log.Warn("GitHub login attempted but OAuth is not configured")
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":   "not_implemented",
			"message": "GitHub authentication is not enabled",
		})
		return
	}

	authURL, state, err := h.oauthService.BeginLogin()
	if err != nil {
		h.log.Error("Failed to generate authorization URL",
			logger.Error(err),
		)
		handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		oauthStateCookie,
		state,
		int(oauthStateCookieExp.Seconds()),
		"/",
		h.config.Server.CookieDomain,
		h.config.Server.SecureCookies,
		true, // httpOnly
	)

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GitHubCallback handles GET /api/auth/github/callback
// Completes the OAuth flow. Failures redirect back to the login page with an
// opaque error code, provider details stay in the logs.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if !h.oauthService.IsEnabled() {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":   "not_implemented",
			"message": "GitHub authentication is not enabled",
		})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		h.log.Warn("GitHub returned an error on callback",
			logger.String("error", errParam),
			logger.String("description", c.Query("error_description")),
		)
		h.redirectLoginError(c, "oauth_denied")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.log.Warn("OAuth callback missing authorization code")
		h.redirectLoginError(c, "oauth_failed")
		return
	}

	state := c.Query("state")
	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil {
		h.log.Warn("OAuth callback missing or expired state cookie")
		h.redirectLoginError(c, "oauth_failed")
		return
	}

	// Clear the state cookie
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, "", -1, "/", h.config.Server.CookieDomain, h.config.Server.SecureCookies, true)

	user, err := h.oauthService.HandleCallback(c.Request.Context(), code, state, expectedState)
	if err != nil {
		h.log.Error("OAuth callback handling failed",
			logger.Error(err),
		)
		if apperrors.IsForbidden(err) {
			h.redirectLoginError(c, "account_deactivated")
			return
		}
		h.redirectLoginError(c, "oauth_failed")
		return
	}

	if err := h.establishSession(c, user); err != nil {
		h.log.Error("Failed to establish session after oauth login",
			logger.Error(err),
			logger.UserID(user.ID.String()),
		)
		h.redirectLoginError(c, "oauth_failed")
		return
	}

	h.log.Info("GitHub authentication successful",
		logger.UserID(user.ID.String()),
		logger.Username(user.Username),
	)
	c.Redirect(http.StatusTemporaryRedirect, h.config.Server.LoginURL)
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.establishSession(c, user); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:    dto.ToUserInfo(user),
		Message: "Registration successful",
	})
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.establishSession(c, user); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:    dto.ToUserInfo(user),
		Message: "Login successful",
	})
}

// Logout handles GET /api/logout
// Destroys the session, clears both cookies and sends the client back to
// the login page. Works without a valid session so a half-logged-out
// client can always clean up.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID, err := c.Cookie(h.config.Session.CookieName); err == nil && sessionID != "" {
		if err := h.sessions.Destroy(c.Request.Context(), sessionID); err != nil {
			h.log.Error("Failed to destroy session",
				logger.Error(err),
			)
		}
	}

	h.clearSessionCookies(c)
	c.Redirect(http.StatusTemporaryRedirect, h.config.Server.LoginURL)
}

// CurrentUser handles GET /api/user
// Returns the authenticated user's profile
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToUserInfo(user))
}

// establishSession creates a server-side session and sets the session and
// identity cookies
func (h *AuthHandler) establishSession(c *gin.Context, user *models.User) error {
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		return err
	}

	identityToken, err := h.authService.GenerateIdentityToken(user)
	if err != nil {
		return err
	}

	maxAge := int(h.config.Session.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.Session.CookieName, sessionID, maxAge, "/", h.config.Server.CookieDomain, h.config.Server.SecureCookies, true)
	// Identity cookie is readable by the frontend, display only
	c.SetCookie(h.config.Session.IdentityCookieName, identityToken, maxAge, "/", h.config.Server.CookieDomain, h.config.Server.SecureCookies, false)
	return nil
}

// clearSessionCookies expires both auth cookies
func (h *AuthHandler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.Session.CookieName, "", -1, "/", h.config.Server.CookieDomain, h.config.Server.SecureCookies, true)
	c.SetCookie(h.config.Session.IdentityCookieName, "", -1, "/", h.config.Server.CookieDomain, h.config.Server.SecureCookies, false)
}

// redirectLoginError sends the browser back to the login page with an
// opaque error code
func (h *AuthHandler) redirectLoginError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.config.Server.LoginURL+"?error="+code)
}
