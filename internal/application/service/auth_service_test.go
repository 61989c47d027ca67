package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
)

func newAuthService(repo *fakeUserRepo) *AuthService {
	return newAuthServiceWithRoles(repo, newFakeRoleRepo())
}

func newAuthServiceWithRoles(repo *fakeUserRepo, roles *fakeRoleRepo) *AuthService {
	return NewAuthService(repo, roles, &config.SessionConfig{
		TTLMinutes: 60,
		JWTSecret:  "test-secret",
	})
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

	got, err := svc.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"short username", RegisterRequest{Username: "ab", Email: "a@b.com", Password: "password1"}},
		{"bad first char", RegisterRequest{Username: "1abc", Email: "a@b.com", Password: "password1"}},
		{"reserved username", RegisterRequest{Username: "admin", Email: "a@b.com", Password: "password1"}},
		{"bad email", RegisterRequest{Username: "alice", Email: "not-an-email", Password: "password1"}},
		{"short password", RegisterRequest{Username: "alice", Email: "a@b.com", Password: "short"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			assert.True(t, apperrors.IsBadRequest(err), "expected validation error, got %v", err)
		})
	}
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	roles := newFakeRoleRepo()
	member := &models.Role{
		Name: models.DefaultRoleName,
		Permissions: models.PermissionMap{
			models.PermissionKey(models.ResourceUser, models.ActionRead): true,
		},
	}
	require.NoError(t, roles.Create(context.Background(), member))

	svc := newAuthServiceWithRoles(newFakeUserRepo(), roles)
	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotNil(t, user.RoleID)
	assert.Equal(t, member.ID, *user.RoleID)
}

func TestRegisterWithoutSeededRoles(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Nil(t, user.RoleID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Email: "other@b.com", Password: "password2"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody", "password1")
	_, wrongPassErr := svc.Login(ctx, "alice", "wrong-password")

	assert.True(t, apperrors.IsUnauthorized(unknownErr))
	assert.True(t, apperrors.IsUnauthorized(wrongPassErr))
	// Same message either way, the response must not leak which usernames exist
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	user.IsDeactivated = true
	require.NoError(t, repo.Update(ctx, user))

	_, err = svc.Login(ctx, "alice", "password1")
	assert.True(t, apperrors.IsForbidden(err))
}

func TestLoginOAuthOnlyAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	githubID := int64(42)
	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "ghuser",
		Email:    "gh@example.com",
		GitHubID: &githubID,
	}))

	_, err := svc.Login(ctx, "ghuser", "anything")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestGenerateIdentityToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	signed, err := svc.GenerateIdentityToken(user)
	require.NoError(t, err)

	var claims IdentityClaims
	token, err := jwt.ParseWithClaims(signed, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsAdmin)
}
