package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	"github.com/devboard-io/devboard/internal/infrastructure/github"
	"github.com/devboard-io/devboard/pkg/crypto"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

// OAuthService implements the GitHub OAuth login flow: redirect, callback,
// token exchange and account provisioning
type OAuthService struct {
	config    *config.GitHubConfig
	oauth2Cfg *oauth2.Config
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	ghClient  *github.Client
	codec     *crypto.TokenCodec
	log       *logger.Logger
}

// NewOAuthService creates a new OAuthService instance
func NewOAuthService(
	cfg *config.GitHubConfig,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	ghClient *github.Client,
	codec *crypto.TokenCodec,
) *OAuthService {
	return &OAuthService{
		config: cfg,
		oauth2Cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     oauthgithub.Endpoint,
		},
		userRepo: userRepo,
		roleRepo: roleRepo,
		ghClient: ghClient,
		codec:    codec,
		log:      logger.Get().WithFields(logger.Component("oauth-service")),
	}
}

// IsEnabled returns true if GitHub OAuth credentials are configured
func (s *OAuthService) IsEnabled() bool {
	return s.config.Enabled()
}

// BeginLogin returns the GitHub authorization URL and the state value the
// caller must persist for the callback
func (s *OAuthService) BeginLogin() (string, string, error) {
	if !s.IsEnabled() {
		return "", "", apperrors.BadRequest("github login is not configured", apperrors.ErrProviderError)
	}

	state, err := generateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	url := s.oauth2Cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
	return url, state, nil
}

// HandleCallback processes the OAuth callback and returns the authenticated
// user. The state must match the value issued by BeginLogin.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state, expectedState string) (*models.User, error) {
	if !s.IsEnabled() {
		return nil, apperrors.BadRequest("github login is not configured", apperrors.ErrProviderError)
	}

	if expectedState == "" || state != expectedState {
		s.log.Warn("OAuth state mismatch")
		return nil, apperrors.Unauthorized("invalid state parameter", apperrors.ErrInvalidCredentials)
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, s.config.Timeout())
	defer cancel()

	token, err := s.oauth2Cfg.Exchange(exchangeCtx, code)
	if err != nil {
		s.log.Warn("OAuth code exchange failed",
			logger.Error(err),
		)
		return nil, apperrors.ProviderError("code exchange", err)
	}

	profile, err := s.ghClient.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(ctx, profile, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if user.IsDeactivated {
		s.log.Warn("Deactivated account attempted oauth login",
			logger.UserID(user.ID.String()),
		)
		return nil, apperrors.Forbidden("account is deactivated", apperrors.ErrUserDeactivated)
	}

	s.log.Info("OAuth login completed",
		logger.UserID(user.ID.String()),
		logger.Username(user.Username),
		logger.Provider("github"),
	)
	return user, nil
}

// AccessToken decrypts the stored GitHub token for a user
func (s *OAuthService) AccessToken(user *models.User) (string, error) {
	if len(user.EncryptedToken) == 0 {
		return "", apperrors.NotFound("github token", apperrors.ErrNotFound)
	}
	plaintext, err := s.codec.Decrypt(user.EncryptedToken, user.TokenNonce)
	if err != nil {
		return "", err
	}
	return plaintext, nil
}

// findOrCreateUser resolves the GitHub profile to a local account. Existing
// accounts get the profile subset and a re-encrypted token; local fields
// like username, role and admin flags are left untouched.
func (s *OAuthService) findOrCreateUser(ctx context.Context, profile *github.Profile, accessToken string) (*models.User, error) {
	ciphertext, nonce, err := s.codec.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	user, err := s.userRepo.FindByGitHubID(ctx, profile.ID)
	if err == nil {
		fields := map[string]interface{}{
			"name":            profile.Name,
			"bio":             profile.Bio,
			"avatar_url":      profile.AvatarURL,
			"location":        profile.Location,
			"company":         profile.Company,
			"encrypted_token": ciphertext,
			"token_nonce":     nonce,
		}
		if profile.Email != "" {
			fields["email"] = strings.ToLower(profile.Email)
		}
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return nil, fmt.Errorf("failed to refresh profile: %w", err)
		}
		return s.userRepo.FindByID(ctx, user.ID)
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	githubID := profile.ID
	newUser := &models.User{
		Username:       s.pickUsername(ctx, profile.Login),
		Email:          strings.ToLower(profile.Email),
		GitHubID:       &githubID,
		EncryptedToken: ciphertext,
		TokenNonce:     nonce,
		Name:           profile.Name,
		Bio:            profile.Bio,
		AvatarURL:      profile.AvatarURL,
		Location:       profile.Location,
		Company:        profile.Company,
		IsVerified:     true,
		RoleID:         defaultRoleID(ctx, s.roleRepo, s.log),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("Provisioned user from github profile",
		logger.UserID(newUser.ID.String()),
		logger.Username(newUser.Username),
	)
	return newUser, nil
}

// pickUsername derives a free local username from the GitHub login,
// appending a numeric suffix on collision
func (s *OAuthService) pickUsername(ctx context.Context, login string) string {
	base := strings.ToLower(login)
	if validateUsername(base) != nil {
		base = "gh-" + base
	}

	candidate := base
	for i := 1; i <= 20; i++ {
		exists, err := s.userRepo.ExistsByUsername(ctx, candidate)
		if err == nil && !exists {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	// Last resort, effectively unique
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano()%100000)
}

// generateState returns a random URL-safe state token
func generateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
