package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	apperror "github.com/devboard-io/devboard/pkg/errors"
	"github.com/google/uuid"
)

// RoleRepoImpl implements the RoleRepository interface using GORM
type RoleRepoImpl struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepoImpl instance
func NewRoleRepository(db *gorm.DB) repository.RoleRepository {
	return &RoleRepoImpl{db: db}
}

// Create creates a new role in the database
func (r *RoleRepoImpl) Create(ctx context.Context, role *models.Role) error {
	if role.Permissions == nil {
		role.Permissions = models.PermissionMap{}
	}
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("role already exists", apperror.ErrRoleExists)
		}
		return apperror.DatabaseError("create role", err)
	}
	return nil
}

// FindByID retrieves a role by its ID
func (r *RoleRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("role", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find role by id", err)
	}
	return &role, nil
}

// FindByName retrieves a role by its unique name
func (r *RoleRepoImpl) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("role", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find role by name", err)
	}
	return &role, nil
}

// Update updates an existing role
func (r *RoleRepoImpl) Update(ctx context.Context, role *models.Role) error {
	result := r.db.WithContext(ctx).Save(role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("role name already taken", apperror.ErrRoleExists)
		}
		return apperror.DatabaseError("update role", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("role", apperror.ErrNotFound)
	}
	return nil
}

// MergePermissions overwrites the provided keys inside the JSONB permission
// map with a single UPDATE, so concurrent writers touching disjoint keys
// cannot lose each other's updates.
func (r *RoleRepoImpl) MergePermissions(ctx context.Context, id uuid.UUID, perms models.PermissionMap) error {
	if len(perms) == 0 {
		return nil
	}

	patch, err := json.Marshal(perms)
	if err != nil {
		return apperror.DatabaseError("encode permissions", err)
	}

	result := r.db.WithContext(ctx).Model(&models.Role{}).
		Where("id = ?", id).
		Update("permissions", gorm.Expr("permissions || ?::jsonb", string(patch)))
	if result.Error != nil {
		return apperror.DatabaseError("merge role permissions", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("role", apperror.ErrNotFound)
	}
	return nil
}

// Delete removes a role by its ID
func (r *RoleRepoImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Role{}, "id = ?", id)
	if result.Error != nil {
		return apperror.DatabaseError("delete role", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("role", apperror.ErrNotFound)
	}
	return nil
}

// Search retrieves roles matching an optional name query
func (r *RoleRepoImpl) Search(ctx context.Context, query string, limit, offset int) ([]*models.Role, error) {
	var roles []*models.Role
	q := r.db.WithContext(ctx).Order("name ASC")

	if query != "" {
		q = q.Where("name ILIKE ?", "%"+query+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	if err := q.Find(&roles).Error; err != nil {
		return nil, apperror.DatabaseError("search roles", err)
	}
	return roles, nil
}

// Count returns the number of roles matching an optional query
func (r *RoleRepoImpl) Count(ctx context.Context, query string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Role{})
	if query != "" {
		q = q.Where("name ILIKE ?", "%"+query+"%")
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.DatabaseError("count roles", err)
	}
	return count, nil
}
