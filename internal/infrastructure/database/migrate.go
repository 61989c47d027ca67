package database

import (
	"fmt"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/pkg/logger"
)

// AutoMigrate creates or updates the schema for all domain models
func (d *Database) AutoMigrate() error {
	d.log.Info("Running schema migrations")

	if err := d.db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.FollowEdge{},
		&models.Repository{},
	); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	d.log.Info("Schema migrations completed")
	return nil
}

// defaultRoles returns the built-in roles. Member is assigned to every new
// account and can read everything; moderator additionally manages repository
// metadata.
func defaultRoles() []models.Role {
	return []models.Role{
		{
			Name:        models.DefaultRoleName,
			Description: "Default role for new accounts",
			Permissions: models.PermissionMap{
				models.PermissionKey(models.ResourceUser, models.ActionRead):       true,
				models.PermissionKey(models.ResourceRole, models.ActionRead):       true,
				models.PermissionKey(models.ResourceRepository, models.ActionRead): true,
			},
		},
		{
			Name:        "moderator",
			Description: "Manages the repository metadata cache",
			Permissions: models.PermissionMap{
				models.PermissionKey(models.ResourceUser, models.ActionRead):         true,
				models.PermissionKey(models.ResourceRole, models.ActionRead):         true,
				models.PermissionKey(models.ResourceRepository, models.ActionRead):   true,
				models.PermissionKey(models.ResourceRepository, models.ActionCreate): true,
				models.PermissionKey(models.ResourceRepository, models.ActionUpdate): true,
				models.PermissionKey(models.ResourceRepository, models.ActionDelete): true,
			},
		},
	}
}

// SeedDefaultRoles creates the built-in roles when they do not exist yet
func (d *Database) SeedDefaultRoles() error {
	for _, role := range defaultRoles() {
		var count int64
		if err := d.db.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role %s: %w", role.Name, err)
		}
		if count > 0 {
			continue
		}
		if err := d.db.Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
		d.log.Info("Seeded default role", logger.String("role", role.Name))
	}

	return nil
}
