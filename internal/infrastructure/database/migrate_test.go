package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devboard-io/devboard/internal/domain/models"
)

func findRole(t *testing.T, name string) *models.Role {
	t.Helper()
	for _, role := range defaultRoles() {
		if role.Name == name {
			return &role
		}
	}
	t.Fatalf("role %q not seeded", name)
	return nil
}

func TestDefaultRoleGrantsReadAccess(t *testing.T) {
	member := findRole(t, models.DefaultRoleName)

	for _, resource := range []string{models.ResourceUser, models.ResourceRole, models.ResourceRepository} {
		assert.True(t, member.Allows(models.PermissionKey(resource, models.ActionRead)), resource)
	}
	assert.False(t, member.Allows(models.PermissionKey(models.ResourceUser, models.ActionUpdate)))
	assert.False(t, member.Allows(models.PermissionKey(models.ResourceRole, models.ActionDelete)))
}

func TestModeratorManagesRepositoryCache(t *testing.T) {
	moderator := findRole(t, "moderator")

	for _, action := range []string{models.ActionCreate, models.ActionUpdate, models.ActionDelete} {
		assert.True(t, moderator.Allows(models.PermissionKey(models.ResourceRepository, action)), action)
	}
	assert.False(t, moderator.Allows(models.PermissionKey(models.ResourceUser, models.ActionDelete)))
}

func TestSeededPermissionKeysAreValid(t *testing.T) {
	for _, role := range defaultRoles() {
		require.NotEmpty(t, role.Permissions, role.Name)
		for key := range role.Permissions {
			assert.True(t, models.ValidPermissionKey(key), key)
		}
	}
}
