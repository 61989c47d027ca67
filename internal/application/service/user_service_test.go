package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devboard-io/devboard/internal/domain/models"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
)

func seedUser(t *testing.T, repo *fakeUserRepo, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestFollowUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")

	require.NoError(t, svc.FollowUser(ctx, alice.ID, bob.ID))

	following, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Reverse direction is not implied
	following, err = svc.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowUserIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")

	require.NoError(t, svc.FollowUser(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.FollowUser(ctx, alice.ID, bob.ID))

	followers, err := svc.ListFollowers(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 1)
}

func TestFollowSelfRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")

	err := svc.FollowUser(ctx, alice.ID, alice.ID)
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestFollowUnknownUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	ghost := seedUser(t, repo, "ghost")
	require.NoError(t, repo.Delete(ctx, ghost.ID))

	err := svc.FollowUser(ctx, alice.ID, ghost.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUnfollowMissingEdgeIsNoOp(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	bob := seedUser(t, repo, "bob")

	require.NoError(t, svc.UnfollowUser(ctx, alice.ID, bob.ID))
}

func TestUpdateUserAppliesOnlyProvidedFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	bio := "gopher"
	updated, err := svc.UpdateUser(ctx, alice.ID, UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "gopher", updated.Bio)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUpdateUserRejectsBadEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	alice := seedUser(t, repo, "alice")
	bad := "not-an-email"
	_, err := svc.UpdateUser(ctx, alice.ID, UpdateProfileRequest{Email: &bad})
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestAssignRole(t *testing.T) {
	userRepo := newFakeUserRepo()
	roleRepo := newFakeRoleRepo()
	svc := NewUserService(userRepo, roleRepo)
	ctx := context.Background()

	require.NoError(t, roleRepo.Create(ctx, &models.Role{
		Name:        "moderator",
		Permissions: models.PermissionMap{"user:read": true},
	}))
	alice := seedUser(t, userRepo, "alice")

	updated, err := svc.AssignRole(ctx, alice.ID, "moderator")
	require.NoError(t, err)
	require.NotNil(t, updated.RoleID)

	_, err = svc.AssignRole(ctx, alice.ID, "missing-role")
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestSearchUsers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, newFakeRoleRepo())
	ctx := context.Background()

	seedUser(t, repo, "alice")
	seedUser(t, repo, "albert")
	seedUser(t, repo, "bob")

	users, err := svc.SearchUsers(ctx, "al", 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	total, err := svc.CountUsers(ctx, "al")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
