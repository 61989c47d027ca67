package repository

import (
	"context"
	"time"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/google/uuid"
)

// RepoRepository defines the interface for repository metadata cache access
type RepoRepository interface {
	// FindByID retrieves a cached repository by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Repository, error)

	// FindByGitHubID retrieves a cached repository by the provider's numeric id
	FindByGitHubID(ctx context.Context, githubID int64) (*models.Repository, error)

	// FindByFullName retrieves a cached repository by its owner/name full name
	FindByFullName(ctx context.Context, fullName string) (*models.Repository, error)

	// Upsert inserts the row, or on a github_id conflict overwrites the
	// metadata fields in place. Identity and audit fields are preserved.
	Upsert(ctx context.Context, repo *models.Repository) error

	// Delete removes a cached repository by its ID
	Delete(ctx context.Context, id uuid.UUID) error

	// Search retrieves cached repositories matching an optional full-name
	// query, paginated
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Repository, error)

	// Count returns the number of cached repositories matching an optional query
	Count(ctx context.Context, query string) (int64, error)

	// ListStale lists rows whose last sync is older than the cutoff
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Repository, error)
}
