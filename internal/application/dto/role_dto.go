package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
)

// CreateRoleRequest represents a request to create a new role
type CreateRoleRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=50"`
	Description string          `json:"description" binding:"max=500"`
	Permissions map[string]bool `json:"permissions"`
}

// UpdateRoleRequest represents a request to update role metadata.
// Only non-nil fields are applied.
type UpdateRoleRequest struct {
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
}

// UpdatePermissionsRequest represents a request to merge permission flags
// into a role. Keys absent from the map keep their current value.
type UpdatePermissionsRequest struct {
	Permissions map[string]bool `json:"permissions" binding:"required"`
}

// RoleResponse represents the response for role data
type RoleResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions map[string]bool `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RoleListResponse represents a paginated list of roles
type RoleListResponse struct {
	Roles      []RoleResponse `json:"roles"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

// ToRoleResponse maps a role model to its response representation
func ToRoleResponse(r *models.Role) RoleResponse {
	perms := map[string]bool{}
	for k, v := range r.Permissions {
		perms[k] = v
	}
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
