package service

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

const bcryptCost = 12

// dummyHash is compared against when the username does not resolve, so a
// failed login takes the same time whether or not the account exists.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// IdentityClaims represents the claims in the identity JWT issued alongside
// the session cookie
type IdentityClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// AuthService handles local credential authentication
type AuthService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	config   *config.SessionConfig
	log      *logger.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, cfg *config.SessionConfig) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		config:   cfg,
		log:      logger.Get().WithFields(logger.Component("auth-service")),
	}
}

// defaultRoleID resolves the seeded member role for a fresh account.
// Accounts are still created when the seeds have not run; they carry no
// role until an admin assigns one.
func defaultRoleID(ctx context.Context, roleRepo repository.RoleRepository, log *logger.Logger) *uuid.UUID {
	role, err := roleRepo.FindByName(ctx, models.DefaultRoleName)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			log.Warn("Failed to resolve default role",
				logger.Error(err),
			)
		}
		return nil
	}
	return &role.ID
}

// RegisterRequest represents a request to register a local account
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Register creates a new local account with a bcrypt password hash
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	s.log.Info("Registering new user",
		logger.Username(req.Username),
	)

	if err := validateUsername(req.Username); err != nil {
		s.log.Warn("Username validation failed",
			logger.Username(req.Username),
			logger.Error(err),
		)
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username existence",
			logger.Error(err),
			logger.Username(req.Username),
		)
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		s.log.Warn("Username already taken",
			logger.Username(req.Username),
		)
		return nil, apperrors.Conflict("username already taken", apperrors.ErrUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		RoleID:       defaultRoleID(ctx, s.roleRepo, s.log),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index wins races the existence check misses
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("username already taken", apperrors.ErrUserExists)
		}
		s.log.Error("Failed to create user",
			logger.Error(err),
			logger.Username(req.Username),
		)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User registered",
		logger.UserID(user.ID.String()),
		logger.Username(user.Username),
	)
	return user, nil
}

// Login verifies a username and password. The error message is identical
// for an unknown username and a wrong password, and a dummy bcrypt compare
// runs on the unknown-username path to keep timing uniform.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperrors.Unauthorized("invalid username or password", apperrors.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.HasPassword() {
		// OAuth-only account, no local credential to compare
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apperrors.Unauthorized("invalid username or password", apperrors.ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("Password mismatch",
			logger.Username(username),
		)
		return nil, apperrors.Unauthorized("invalid username or password", apperrors.ErrInvalidCredentials)
	}

	if user.IsDeactivated {
		s.log.Warn("Deactivated account attempted login",
			logger.UserID(user.ID.String()),
			logger.Username(username),
		)
		return nil, apperrors.Forbidden("account is deactivated", apperrors.ErrUserDeactivated)
	}

	s.log.Info("User logged in",
		logger.UserID(user.ID.String()),
		logger.Username(username),
	)
	return user, nil
}

// GenerateIdentityToken issues the HS256 identity JWT set alongside the
// session cookie. It carries display claims only and is never accepted as
// proof of authentication without a live session.
func (s *AuthService) GenerateIdentityToken(user *models.User) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL())),
			NotBefore: jwt.NewNumericDate(now),
		},
		UserID:   user.ID.String(),
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign identity token: %w", err)
	}
	return signed, nil
}

// validateUsername validates a username
func validateUsername(username string) error {
	if username == "" {
		return apperrors.ValidationError("username", "username is required")
	}

	if len(username) < 3 {
		return apperrors.ValidationError("username", "username must be at least 3 characters")
	}

	if len(username) > 50 {
		return apperrors.ValidationError("username", "username must be 50 characters or less")
	}

	// Username must start with a letter and contain only alphanumeric, underscore, or hyphen
	usernameRegex := regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	if !usernameRegex.MatchString(username) {
		return apperrors.ValidationError("username", "username must start with a letter and contain only letters, numbers, underscores, or hyphens")
	}

	// Check for reserved usernames
	reservedUsernames := []string{"admin", "root", "system", "api", "www", "support"}
	lowerUsername := strings.ToLower(username)
	if ok := slices.Contains(reservedUsernames, lowerUsername); ok {
		return apperrors.ValidationError("username", "username is reserved")
	}

	return nil
}

// validateEmail validates an email address
func validateEmail(email string) error {
	if email == "" {
		return apperrors.ValidationError("email", "email is required")
	}

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return apperrors.ValidationError("email", "invalid email format")
	}

	return nil
}

// validatePassword validates a password
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.ValidationError("password", "password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt truncates input beyond 72 bytes
		return apperrors.ValidationError("password", "password must be 72 characters or less")
	}
	return nil
}
