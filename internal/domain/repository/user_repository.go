package repository

import (
	"context"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user data access operations
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *models.User) error

	// FindByID retrieves a user by their ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByUsername retrieves a user by their username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByGitHubID retrieves a user by their GitHub numeric id
	FindByGitHubID(ctx context.Context, githubID int64) (*models.User, error)

	// Update updates an existing user's information
	Update(ctx context.Context, user *models.User) error

	// UpdateFields applies a partial update to a user in a single statement
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error

	// Delete removes a user from the database by their ID
	Delete(ctx context.Context, id uuid.UUID) error

	// Search retrieves users matching an optional username/name query, paginated
	Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error)

	// Count returns the number of users matching an optional query
	Count(ctx context.Context, query string) (int64, error)

	// ExistsByUsername checks if a user with the given username exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Follow inserts a follow edge; inserting an existing edge is a no-op
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error

	// Unfollow removes a follow edge; removing a missing edge is a no-op
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error

	// IsFollowing reports whether the follow edge exists
	IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)

	// ListFollowers lists the users following the given user, paginated
	ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error)

	// ListFollowing lists the users the given user follows, paginated
	ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error)
}
