package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
)

// CreateRepoRequest represents a request to track a repository. The full
// name must be in "owner/name" form.
type CreateRepoRequest struct {
	FullName    string `json:"full_name" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=500"`
	IsPrivate   bool   `json:"is_private"`
}

// UpdateRepoRequest represents a request to update repository fields.
// Only non-nil fields are applied.
type UpdateRepoRequest struct {
	Description *string `json:"description,omitempty"`
	Language    *string `json:"language,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}

// RepoResponse represents the response for repository data
type RepoResponse struct {
	ID          uuid.UUID  `json:"id"`
	GitHubID    int64      `json:"github_id,omitempty"`
	Owner       string     `json:"owner"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Description string     `json:"description,omitempty"`
	Language    string     `json:"language,omitempty"`
	HTMLURL     string     `json:"html_url,omitempty"`
	IsPrivate   bool       `json:"is_private"`
	Stars       int        `json:"stars"`
	Forks       int        `json:"forks"`
	Watchers    int        `json:"watchers"`
	OpenIssues  int        `json:"open_issues"`
	PushedAt    *time.Time `json:"pushed_at,omitempty"`
	SyncedAt    *time.Time `json:"synced_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RepoListResponse represents a paginated list of repositories
type RepoListResponse struct {
	Repositories []RepoResponse `json:"repositories"`
	Total        int64          `json:"total"`
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	TotalPages   int            `json:"total_pages"`
}

// ToRepoResponse maps a repository model to its response representation
func ToRepoResponse(r *models.Repository) RepoResponse {
	resp := RepoResponse{
		ID:          r.ID,
		GitHubID:    r.GitHubID,
		Owner:       r.Owner,
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		Language:    r.Language,
		HTMLURL:     r.HTMLURL,
		IsPrivate:   r.IsPrivate,
		Stars:       r.Stars,
		Forks:       r.Forks,
		Watchers:    r.Watchers,
		OpenIssues:  r.OpenIssues,
		PushedAt:    r.PushedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if !r.SyncedAt.IsZero() {
		synced := r.SyncedAt
		resp.SyncedAt = &synced
	}
	return resp
}
