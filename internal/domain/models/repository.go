package models

import (
	"time"

	"github.com/google/uuid"
)

// Repository is a cached mirror of GitHub repository metadata. Rows are
// never authoritative: every field except the audit reference can be
// re-derived from the provider on the next sync.
type Repository struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	// GitHubID is the provider's numeric repository id
	GitHubID int64 `json:"github_id" gorm:"uniqueIndex;not null"`

	Owner    string `json:"owner" gorm:"not null;size:255"`
	Name     string `json:"name" gorm:"not null;size:255"`
	FullName string `json:"full_name" gorm:"uniqueIndex;not null;size:511"`

	Description string `json:"description" gorm:"size:1000"`
	Language    string `json:"language" gorm:"size:100"`
	HTMLURL     string `json:"html_url" gorm:"size:500"`
	IsPrivate   bool   `json:"is_private" gorm:"default:false"`

	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	Watchers   int `json:"watchers"`
	OpenIssues int `json:"open_issues"`

	PushedAt *time.Time `json:"pushed_at"`
	SyncedAt time.Time  `json:"synced_at"`

	// CreatedByID records who first synced the row; audit only, not ownership
	CreatedByID *uuid.UUID `json:"created_by_id"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Repository
func (Repository) TableName() string {
	return "repositories"
}

// StaleSince reports whether the cached metadata is older than the cutoff
func (r *Repository) StaleSince(cutoff time.Time) bool {
	return r.SyncedAt.Before(cutoff)
}
