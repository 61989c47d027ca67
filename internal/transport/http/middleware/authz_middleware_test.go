package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/devboard-io/devboard/internal/domain/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// permRouter builds a router whose single route injects the given user (nil
// for anonymous) before the permission check
func permRouter(user *models.User, resource, action string) *gin.Engine {
	r := gin.New()
	authz := NewAuthzMiddleware()

	inject := func(c *gin.Context) {
		if user != nil {
			c.Set(string(UserContextKey), user)
		}
		c.Next()
	}

	r.GET("/guarded", inject, authz.RequirePermission(resource, action), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hit(r *gin.Engine, path string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequirePermissionAnonymous(t *testing.T) {
	r := permRouter(nil, models.ResourceUser, models.ActionRead)
	assert.Equal(t, http.StatusUnauthorized, hit(r, "/guarded"))
}

func TestRequirePermissionGranted(t *testing.T) {
	user := &models.User{
		Username: "alice",
		Role: &models.Role{
			Name:        "reader",
			Permissions: models.PermissionMap{"user:read": true},
		},
	}
	r := permRouter(user, models.ResourceUser, models.ActionRead)
	assert.Equal(t, http.StatusOK, hit(r, "/guarded"))
}

func TestRequirePermissionAbsentFlagDenies(t *testing.T) {
	user := &models.User{
		Username: "alice",
		Role: &models.Role{
			Name:        "reader",
			Permissions: models.PermissionMap{"user:read": true},
		},
	}
	r := permRouter(user, models.ResourceUser, models.ActionDelete)
	assert.Equal(t, http.StatusForbidden, hit(r, "/guarded"))
}

func TestRequirePermissionExplicitFalseDenies(t *testing.T) {
	user := &models.User{
		Username: "alice",
		Role: &models.Role{
			Name:        "restricted",
			Permissions: models.PermissionMap{"user:read": false},
		},
	}
	r := permRouter(user, models.ResourceUser, models.ActionRead)
	assert.Equal(t, http.StatusForbidden, hit(r, "/guarded"))
}

func TestRequirePermissionNoRoleDenies(t *testing.T) {
	user := &models.User{Username: "alice"}
	r := permRouter(user, models.ResourceUser, models.ActionRead)
	assert.Equal(t, http.StatusForbidden, hit(r, "/guarded"))
}

func TestRequirePermissionAdminBypass(t *testing.T) {
	user := &models.User{Username: "root-ish", IsAdmin: true}
	r := permRouter(user, models.ResourceRole, models.ActionDelete)
	assert.Equal(t, http.StatusOK, hit(r, "/guarded"))
}

func TestRequirePermissionDeactivatedDenied(t *testing.T) {
	user := &models.User{
		Username:      "alice",
		IsAdmin:       true,
		IsDeactivated: true,
	}
	r := permRouter(user, models.ResourceUser, models.ActionRead)
	assert.Equal(t, http.StatusForbidden, hit(r, "/guarded"))
}

// selfRouter guards PUT /users/:id with the self-or-permission check
func selfRouter(user *models.User) *gin.Engine {
	r := gin.New()
	authz := NewAuthzMiddleware()

	inject := func(c *gin.Context) {
		if user != nil {
			c.Set(string(UserContextKey), user)
		}
		c.Next()
	}

	r.GET("/users/:id", inject, authz.RequirePermissionOrSelf(models.ResourceUser, models.ActionUpdate), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequirePermissionOrSelfOwnRecord(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "alice"}
	r := selfRouter(user)
	assert.Equal(t, http.StatusOK, hit(r, "/users/"+user.ID.String()))
}

func TestRequirePermissionOrSelfOtherRecordDenied(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "alice"}
	r := selfRouter(user)
	assert.Equal(t, http.StatusForbidden, hit(r, "/users/"+uuid.NewString()))
}

func TestRequirePermissionOrSelfOtherRecordWithPermission(t *testing.T) {
	user := &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Role: &models.Role{
			Name:        "editor",
			Permissions: models.PermissionMap{"user:update": true},
		},
	}
	r := selfRouter(user)
	assert.Equal(t, http.StatusOK, hit(r, "/users/"+uuid.NewString()))
}

func TestRequirePermissionOrSelfDeactivatedDenied(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "alice", IsDeactivated: true}
	r := selfRouter(user)
	assert.Equal(t, http.StatusForbidden, hit(r, "/users/"+user.ID.String()))
}
