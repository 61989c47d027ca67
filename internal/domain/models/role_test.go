package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionKey(t *testing.T) {
	assert.Equal(t, "user:read", PermissionKey(ResourceUser, ActionRead))
	assert.Equal(t, "repository:delete", PermissionKey(ResourceRepository, ActionDelete))
}

func TestValidPermissionKey(t *testing.T) {
	valid := []string{
		"user:create", "user:read", "user:update", "user:delete",
		"role:create", "role:read", "role:update", "role:delete",
		"repository:create", "repository:read", "repository:update", "repository:delete",
	}
	for _, key := range valid {
		assert.True(t, ValidPermissionKey(key), key)
	}

	invalid := []string{"", "user", "user:", ":read", "user:fly", "spaceship:read", "user:read:extra"}
	for _, key := range invalid {
		assert.False(t, ValidPermissionKey(key), key)
	}
}

func TestRoleAllows(t *testing.T) {
	role := &Role{
		Name: "editor",
		Permissions: PermissionMap{
			"repository:read":   true,
			"repository:update": false,
		},
	}

	assert.True(t, role.Allows("repository:read"))
	// Explicit false denies
	assert.False(t, role.Allows("repository:update"))
	// Absent key denies
	assert.False(t, role.Allows("repository:delete"))
}

func TestRoleAllowsNilPermissions(t *testing.T) {
	role := &Role{Name: "empty"}
	assert.False(t, role.Allows("user:read"))
}

func TestPermissionMapValueScanRoundTrip(t *testing.T) {
	perms := PermissionMap{"user:read": true, "user:update": false}

	val, err := perms.Value()
	require.NoError(t, err)

	var decoded PermissionMap
	require.NoError(t, decoded.Scan(val))
	assert.Equal(t, perms, decoded)
}

func TestPermissionMapScanNil(t *testing.T) {
	var decoded PermissionMap
	require.NoError(t, decoded.Scan(nil))
	assert.Empty(t, decoded)
}
