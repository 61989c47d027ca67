package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	apperror "github.com/devboard-io/devboard/pkg/errors"
	"github.com/google/uuid"
)

// UserRepoImpl implements the UserRepository interface using GORM
type UserRepoImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepoImpl instance
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepoImpl{db: db}
}

// Create creates a new user in the database
func (r *UserRepoImpl) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("user already exists", apperror.ErrUserExists)
		}
		return apperror.DatabaseError("create user", err)
	}
	return nil
}

// FindByID retrieves a user by their ID, with their role preloaded
func (r *UserRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Role").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find user by id", err)
	}
	return &user, nil
}

// FindByUsername retrieves a user by their username
func (r *UserRepoImpl) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Role").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find user by username", err)
	}
	return &user, nil
}

// FindByGitHubID retrieves a user by their GitHub numeric id
func (r *UserRepoImpl) FindByGitHubID(ctx context.Context, githubID int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Role").Where("git_hub_id = ?", githubID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find user by github id", err)
	}
	return &user, nil
}

// Update updates an existing user's information
func (r *UserRepoImpl) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Omit("Role").Save(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("username already taken", apperror.ErrUserExists)
		}
		return apperror.DatabaseError("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", apperror.ErrNotFound)
	}
	return nil
}

// UpdateFields applies a partial update in a single UPDATE statement
func (r *UserRepoImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return apperror.DatabaseError("update user fields", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", apperror.ErrNotFound)
	}
	return nil
}

// Delete removes a user from the database by their ID
func (r *UserRepoImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return apperror.DatabaseError("delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("user", apperror.ErrNotFound)
	}
	return nil
}

// Search retrieves users matching an optional username/name query
func (r *UserRepoImpl) Search(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	q := r.db.WithContext(ctx).Order("username ASC")

	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("username ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	if err := q.Find(&users).Error; err != nil {
		return nil, apperror.DatabaseError("search users", err)
	}
	return users, nil
}

// Count returns the number of users matching an optional query
func (r *UserRepoImpl) Count(ctx context.Context, query string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("username ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.DatabaseError("count users", err)
	}
	return count, nil
}

// ExistsByUsername checks if a user with the given username exists
func (r *UserRepoImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, apperror.DatabaseError("check user exists by username", err)
	}
	return count > 0, nil
}

// Follow inserts a follow edge. The ON CONFLICT DO NOTHING clause makes
// repeated follows idempotent without a separate existence check.
func (r *UserRepoImpl) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	edge := models.FollowEdge{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		return apperror.DatabaseError("follow user", err)
	}
	return nil
}

// Unfollow removes a follow edge; removing a missing edge is a no-op
func (r *UserRepoImpl) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.FollowEdge{}).Error
	if err != nil {
		return apperror.DatabaseError("unfollow user", err)
	}
	return nil
}

// IsFollowing reports whether the follow edge exists
func (r *UserRepoImpl) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, apperror.DatabaseError("check follow edge", err)
	}
	return count > 0, nil
}

// ListFollowers lists the users following the given user
func (r *UserRepoImpl) ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	q := r.db.WithContext(ctx).
		Joins("JOIN follow_edges ON follow_edges.follower_id = users.id").
		Where("follow_edges.followee_id = ?", userID).
		Order("follow_edges.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&users).Error
	if err != nil {
		return nil, apperror.DatabaseError("list followers", err)
	}
	return users, nil
}

// ListFollowing lists the users the given user follows
func (r *UserRepoImpl) ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	q := r.db.WithContext(ctx).
		Joins("JOIN follow_edges ON follow_edges.followee_id = users.id").
		Where("follow_edges.follower_id = ?", userID).
		Order("follow_edges.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&users).Error
	if err != nil {
		return nil, apperror.DatabaseError("list following", err)
	}
	return users, nil
}
