package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the devboard system. Accounts come from
// local registration (password hash set) or GitHub OAuth (github id and
// encrypted token set); both may be present on a linked account.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username string    `json:"username" gorm:"uniqueIndex;not null;size:255"`
	Email    string    `json:"email" gorm:"index;size:255"`

	// PasswordHash is a bcrypt hash; empty for OAuth-only accounts
	PasswordHash string `json:"-" gorm:"size:255"`

	// GitHubID is the provider's numeric id; nil for local-only accounts
	GitHubID *int64 `json:"-" gorm:"uniqueIndex"`

	// EncryptedToken and TokenNonce hold the AES-GCM encrypted GitHub
	// access token. The plaintext token is never persisted.
	EncryptedToken []byte `json:"-" gorm:"type:bytea"`
	TokenNonce     []byte `json:"-" gorm:"type:bytea"`

	Name      string `json:"name" gorm:"size:255"`
	Bio       string `json:"bio" gorm:"size:1000"`
	AvatarURL string `json:"avatar_url" gorm:"size:500"`
	Location  string `json:"location" gorm:"size:255"`
	Company   string `json:"company" gorm:"size:255"`

	IsAdmin       bool `json:"is_admin" gorm:"default:false"`
	IsVerified    bool `json:"is_verified" gorm:"default:false"`
	IsDeactivated bool `json:"is_deactivated" gorm:"default:false"`
	IsDemo        bool `json:"is_demo" gorm:"default:false"`

	RoleID *uuid.UUID `json:"role_id"`
	Role   *Role      `json:"role,omitempty" gorm:"foreignKey:RoleID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account supports local login
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// CanLogin reports whether the account is allowed to authenticate
func (u *User) CanLogin() bool {
	return !u.IsDeactivated
}

// FollowEdge is a directed follow relation between two users. The composite
// unique index makes repeated follows idempotent at the storage layer.
type FollowEdge struct {
	FollowerID uuid.UUID `json:"follower_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_edge;index"`
	FolloweeID uuid.UUID `json:"followee_id" gorm:"type:uuid;not null;uniqueIndex:idx_follow_edge;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for the FollowEdge model
func (FollowEdge) TableName() string {
	return "follow_edges"
}
