package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	apperror "github.com/devboard-io/devboard/pkg/errors"
	"github.com/google/uuid"
)

// RepoRepoImpl implements the RepoRepository interface using GORM
type RepoRepoImpl struct {
	db *gorm.DB
}

// NewRepoRepository creates a new RepoRepoImpl instance
func NewRepoRepository(db *gorm.DB) repository.RepoRepository {
	return &RepoRepoImpl{db: db}
}

// FindByID retrieves a cached repository by its ID
func (r *RepoRepoImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Repository, error) {
	var repo models.Repository
	if err := r.db.WithContext(ctx).First(&repo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("repository", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find repository by id", err)
	}
	return &repo, nil
}

// FindByGitHubID retrieves a cached repository by the provider's numeric id
func (r *RepoRepoImpl) FindByGitHubID(ctx context.Context, githubID int64) (*models.Repository, error) {
	var repo models.Repository
	if err := r.db.WithContext(ctx).Where("git_hub_id = ?", githubID).First(&repo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("repository", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find repository by github id", err)
	}
	return &repo, nil
}

// FindByFullName retrieves a cached repository by its owner/name full name
func (r *RepoRepoImpl) FindByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	var repo models.Repository
	if err := r.db.WithContext(ctx).Where("full_name = ?", fullName).First(&repo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("repository", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find repository by full name", err)
	}
	return &repo, nil
}

// Upsert inserts the row or, on a github_id conflict, overwrites the
// metadata columns in one statement. The row id and audit reference of an
// existing row are left untouched.
func (r *RepoRepoImpl) Upsert(ctx context.Context, repo *models.Repository) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "git_hub_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"owner", "name", "full_name", "description", "language",
			"html_url", "is_private", "stars", "forks", "watchers",
			"open_issues", "pushed_at", "synced_at", "updated_at",
		}),
	}).Create(repo).Error
	if err != nil {
		return apperror.DatabaseError("upsert repository", err)
	}
	return nil
}

// Delete removes a cached repository by its ID
func (r *RepoRepoImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Repository{}, "id = ?", id)
	if result.Error != nil {
		return apperror.DatabaseError("delete repository", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("repository", apperror.ErrNotFound)
	}
	return nil
}

// Search retrieves cached repositories matching an optional full-name query
func (r *RepoRepoImpl) Search(ctx context.Context, query string, limit, offset int) ([]*models.Repository, error) {
	var repos []*models.Repository
	q := r.db.WithContext(ctx).Order("full_name ASC")

	if query != "" {
		q = q.Where("full_name ILIKE ?", "%"+query+"%")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	if err := q.Find(&repos).Error; err != nil {
		return nil, apperror.DatabaseError("search repositories", err)
	}
	return repos, nil
}

// Count returns the number of cached repositories matching an optional query
func (r *RepoRepoImpl) Count(ctx context.Context, query string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Repository{})
	if query != "" {
		q = q.Where("full_name ILIKE ?", "%"+query+"%")
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperror.DatabaseError("count repositories", err)
	}
	return count, nil
}

// ListStale lists rows whose last sync is older than the cutoff
func (r *RepoRepoImpl) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*models.Repository, error) {
	var repos []*models.Repository
	q := r.db.WithContext(ctx).Where("synced_at < ?", cutoff).Order("synced_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&repos).Error; err != nil {
		return nil, apperror.DatabaseError("list stale repositories", err)
	}
	return repos, nil
}
