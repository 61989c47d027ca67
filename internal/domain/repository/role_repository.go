package repository

import (
	"context"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/google/uuid"
)

// RoleRepository defines the interface for role data access operations
type RoleRepository interface {
	// Create creates a new role in the database
	Create(ctx context.Context, role *models.Role) error

	// FindByID retrieves a role by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)

	// FindByName retrieves a role by its unique name
	FindByName(ctx context.Context, name string) (*models.Role, error)

	// Update updates an existing role
	Update(ctx context.Context, role *models.Role) error

	// MergePermissions overwrites the provided permission keys on the role
	// in a single atomic statement; absent keys keep their prior value.
	MergePermissions(ctx context.Context, id uuid.UUID, perms models.PermissionMap) error

	// Delete removes a role by its ID
	Delete(ctx context.Context, id uuid.UUID) error

	// Search retrieves roles matching an optional name query, paginated
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Role, error)

	// Count returns the number of roles matching an optional query
	Count(ctx context.Context, query string) (int64, error)
}
