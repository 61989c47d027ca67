package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

// UserService handles user-related business logic
type UserService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	log      *logger.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		log:      logger.Get().WithFields(logger.Component("user-service")),
	}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.FindByUsername(ctx, username)
}

// UpdateProfileRequest represents a request to update profile fields
type UpdateProfileRequest struct {
	Email    *string
	Name     *string
	Bio      *string
	Location *string
	Company  *string
}

// UpdateUser applies the non-nil profile fields to a user
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return nil, err
		}
		fields["email"] = strings.ToLower(*req.Email)
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Company != nil {
		fields["company"] = *req.Company
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, id, fields); err != nil {
			s.log.Error("Failed to update user",
				logger.Error(err),
				logger.UserID(id.String()),
			)
			return nil, err
		}
	}

	return s.userRepo.FindByID(ctx, id)
}

// DeleteUser removes a user account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("User deleted",
		logger.UserID(id.String()),
	)
	return nil
}

// SearchUsers returns users matching the query with pagination
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	return s.userRepo.Search(ctx, query, limit, offset)
}

// CountUsers returns the number of users matching the query
func (s *UserService) CountUsers(ctx context.Context, query string) (int64, error) {
	return s.userRepo.Count(ctx, query)
}

// AssignRole sets a user's role by role name
func (s *UserService) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) (*models.User, error) {
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.BadRequest(fmt.Sprintf("role %q does not exist", roleName), apperrors.ErrInvalidInput)
		}
		return nil, err
	}

	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"role_id": role.ID}); err != nil {
		return nil, err
	}

	s.log.Info("Role assigned",
		logger.UserID(userID.String()),
		logger.String("role", roleName),
	)
	return s.userRepo.FindByID(ctx, userID)
}

// FollowUser records that follower follows followee. Following yourself is
// rejected; following someone twice is a no-op.
func (s *UserService) FollowUser(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return apperrors.ValidationError("followee", "cannot follow yourself")
	}

	// Make sure the target exists so the edge insert does not fail on the
	// foreign key with an opaque error
	if _, err := s.userRepo.FindByID(ctx, followeeID); err != nil {
		return err
	}

	if err := s.userRepo.Follow(ctx, followerID, followeeID); err != nil {
		s.log.Error("Failed to record follow",
			logger.Error(err),
			logger.UserID(followerID.String()),
		)
		return err
	}

	s.log.Info("Follow recorded",
		logger.String("follower_id", followerID.String()),
		logger.String("followee_id", followeeID.String()),
	)
	return nil
}

// UnfollowUser removes a follow edge; removing a missing edge is a no-op
func (s *UserService) UnfollowUser(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return apperrors.ValidationError("followee", "cannot unfollow yourself")
	}
	return s.userRepo.Unfollow(ctx, followerID, followeeID)
}

// IsFollowing reports whether follower currently follows followee
func (s *UserService) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	return s.userRepo.IsFollowing(ctx, followerID, followeeID)
}

// ListFollowers returns the users following the given user
func (s *UserService) ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListFollowers(ctx, userID, limit, offset)
}

// ListFollowing returns the users the given user follows
func (s *UserService) ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListFollowing(ctx, userID, limit, offset)
}
