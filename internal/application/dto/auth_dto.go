package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
)

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a local username/password login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo represents basic user information in responses.
// Password hashes, OAuth tokens and GitHub ids are never exposed.
type UserInfo struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Location   string    `json:"location,omitempty"`
	Company    string    `json:"company,omitempty"`
	IsAdmin    bool      `json:"is_admin"`
	IsVerified bool      `json:"is_verified"`
	RoleName   string    `json:"role,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthResponse represents a successful register or login response
type AuthResponse struct {
	User    UserInfo `json:"user"`
	Message string   `json:"message"`
}

// ToUserInfo maps a user model to its response representation
func ToUserInfo(u *models.User) UserInfo {
	info := UserInfo{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Name:       u.Name,
		Bio:        u.Bio,
		AvatarURL:  u.AvatarURL,
		Location:   u.Location,
		Company:    u.Company,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
	if u.Role != nil {
		info.RoleName = u.Role.Name
	}
	return info
}
