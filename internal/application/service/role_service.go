package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

// RoleService handles role and permission management
type RoleService struct {
	roleRepo repository.RoleRepository
	log      *logger.Logger
}

// NewRoleService creates a new RoleService instance
func NewRoleService(roleRepo repository.RoleRepository) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		log:      logger.Get().WithFields(logger.Component("role-service")),
	}
}

// CreateRoleRequest represents a request to create a role
type CreateRoleRequest struct {
	Name        string
	Description string
	Permissions map[string]bool
}

// CreateRole creates a new role with an optional initial permission set
func (s *RoleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*models.Role, error) {
	if req.Name == "" {
		return nil, apperrors.ValidationError("name", "role name is required")
	}
	if err := validatePermissionKeys(req.Permissions); err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: models.PermissionMap(req.Permissions),
	}
	if role.Permissions == nil {
		role.Permissions = models.PermissionMap{}
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("role name already taken", apperrors.ErrRoleExists)
		}
		s.log.Error("Failed to create role",
			logger.Error(err),
			logger.String("role", req.Name),
		)
		return nil, err
	}

	s.log.Info("Role created",
		logger.String("role", role.Name),
	)
	return role, nil
}

// GetRole retrieves a role by ID
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.roleRepo.FindByID(ctx, id)
}

// GetRoleByName retrieves a role by name
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	return s.roleRepo.FindByName(ctx, name)
}

// UpdateRole applies metadata changes to a role
func (s *RoleService) UpdateRole(ctx context.Context, id uuid.UUID, description *string) (*models.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if description != nil {
		role.Description = *description
		if err := s.roleRepo.Update(ctx, role); err != nil {
			return nil, err
		}
	}
	return role, nil
}

// UpdatePermissions merges the given flags into a role's permission map.
// Keys not present in the patch keep their current value. The merge is a
// single atomic update, concurrent patches to different keys both land.
func (s *RoleService) UpdatePermissions(ctx context.Context, id uuid.UUID, perms map[string]bool) (*models.Role, error) {
	if err := validatePermissionKeys(perms); err != nil {
		return nil, err
	}

	if err := s.roleRepo.MergePermissions(ctx, id, models.PermissionMap(perms)); err != nil {
		s.log.Error("Failed to merge permissions",
			logger.Error(err),
			logger.String("role_id", id.String()),
		)
		return nil, err
	}

	s.log.Info("Permissions updated",
		logger.String("role_id", id.String()),
		logger.Int("keys", len(perms)),
	)
	return s.roleRepo.FindByID(ctx, id)
}

// DeleteRole removes a role. Users pointing at it fall back to no role,
// which denies everything.
func (s *RoleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Role deleted",
		logger.String("role_id", id.String()),
	)
	return nil
}

// SearchRoles returns roles matching the query with pagination
func (s *RoleService) SearchRoles(ctx context.Context, query string, limit, offset int) ([]*models.Role, error) {
	return s.roleRepo.Search(ctx, query, limit, offset)
}

// CountRoles returns the number of roles matching the query
func (s *RoleService) CountRoles(ctx context.Context, query string) (int64, error) {
	return s.roleRepo.Count(ctx, query)
}

// validatePermissionKeys rejects permission maps containing unknown keys
func validatePermissionKeys(perms map[string]bool) error {
	for key := range perms {
		if !models.ValidPermissionKey(key) {
			return apperrors.ValidationError("permissions", fmt.Sprintf("unknown permission key %q", key))
		}
	}
	return nil
}
