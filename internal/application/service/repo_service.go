package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/domain/repository"
	"github.com/devboard-io/devboard/internal/infrastructure/github"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

// RepoService handles tracked repositories and their GitHub metadata
type RepoService struct {
	repoRepo repository.RepoRepository
	ghClient *github.Client
	log      *logger.Logger
}

// NewRepoService creates a new RepoService instance
func NewRepoService(repoRepo repository.RepoRepository, ghClient *github.Client) *RepoService {
	return &RepoService{
		repoRepo: repoRepo,
		ghClient: ghClient,
		log:      logger.Get().WithFields(logger.Component("repo-service")),
	}
}

// TrackRepo fetches metadata for owner/name from GitHub and records the
// repository. Tracking an already-tracked repository refreshes its metadata.
func (s *RepoService) TrackRepo(ctx context.Context, fullName, accessToken string, createdBy *uuid.UUID) (*models.Repository, error) {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	meta, err := s.ghClient.FetchRepo(ctx, accessToken, owner, name)
	if err != nil {
		return nil, err
	}

	repo := metadataToModel(meta)
	repo.CreatedByID = createdBy

	if err := s.repoRepo.Upsert(ctx, repo); err != nil {
		s.log.Error("Failed to store repository",
			logger.Error(err),
			logger.RepoFullName(repo.FullName),
		)
		return nil, err
	}

	s.log.Info("Repository tracked",
		logger.RepoFullName(repo.FullName),
		logger.Int64("github_id", repo.GitHubID),
	)
	return s.repoRepo.FindByGitHubID(ctx, repo.GitHubID)
}

// GetRepo retrieves a repository by ID
func (s *RepoService) GetRepo(ctx context.Context, id uuid.UUID) (*models.Repository, error) {
	return s.repoRepo.FindByID(ctx, id)
}

// GetRepoByFullName retrieves a repository by its owner/name
func (s *RepoService) GetRepoByFullName(ctx context.Context, fullName string) (*models.Repository, error) {
	return s.repoRepo.FindByFullName(ctx, fullName)
}

// UpdateRepoRequest represents local metadata overrides
type UpdateRepoRequest struct {
	Description *string
	Language    *string
	IsPrivate   *bool
}

// UpdateRepo applies local overrides to a tracked repository. The next sync
// overwrites them with provider values.
func (s *RepoService) UpdateRepo(ctx context.Context, id uuid.UUID, req UpdateRepoRequest) (*models.Repository, error) {
	repo, err := s.repoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		repo.Description = *req.Description
	}
	if req.Language != nil {
		repo.Language = *req.Language
	}
	if req.IsPrivate != nil {
		repo.IsPrivate = *req.IsPrivate
	}

	if err := s.repoRepo.Upsert(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// DeleteRepo stops tracking a repository
func (s *RepoService) DeleteRepo(ctx context.Context, id uuid.UUID) error {
	if err := s.repoRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Repository untracked",
		logger.String("repo_id", id.String()),
	)
	return nil
}

// SearchRepos returns repositories matching the query with pagination
func (s *RepoService) SearchRepos(ctx context.Context, query string, limit, offset int) ([]*models.Repository, error) {
	return s.repoRepo.Search(ctx, query, limit, offset)
}

// CountRepos returns the number of repositories matching the query
func (s *RepoService) CountRepos(ctx context.Context, query string) (int64, error) {
	return s.repoRepo.Count(ctx, query)
}

// SyncRepo refreshes a tracked repository's metadata from GitHub
func (s *RepoService) SyncRepo(ctx context.Context, id uuid.UUID, accessToken string) (*models.Repository, error) {
	repo, err := s.repoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.syncOne(ctx, repo, accessToken)
}

// RefreshStale re-syncs repositories whose metadata is older than the
// cutoff, in bounded batches. Called from the periodic refresh job. Fetches
// run without a token, private repositories are skipped until a user syncs
// them explicitly.
func (s *RepoService) RefreshStale(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.repoRepo.ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale repositories: %w", err)
	}

	synced := 0
	for _, repo := range stale {
		if repo.IsPrivate {
			continue
		}
		if _, err := s.syncOne(ctx, repo, ""); err != nil {
			s.log.Warn("Stale refresh failed for repository",
				logger.Error(err),
				logger.RepoFullName(repo.FullName),
			)
			continue
		}
		synced++
	}
	return synced, nil
}

func (s *RepoService) syncOne(ctx context.Context, repo *models.Repository, accessToken string) (*models.Repository, error) {
	meta, err := s.ghClient.FetchRepo(ctx, accessToken, repo.Owner, repo.Name)
	if err != nil {
		return nil, err
	}

	updated := metadataToModel(meta)
	updated.ID = repo.ID
	updated.CreatedByID = repo.CreatedByID

	if err := s.repoRepo.Upsert(ctx, updated); err != nil {
		return nil, err
	}

	s.log.Debug("Repository metadata synced",
		logger.RepoFullName(updated.FullName),
		logger.Int("stars", updated.Stars),
	)
	return s.repoRepo.FindByGitHubID(ctx, updated.GitHubID)
}

// metadataToModel maps a GitHub API payload onto the repository model
func metadataToModel(meta *github.RepoMetadata) *models.Repository {
	return &models.Repository{
		GitHubID:    meta.ID,
		Owner:       meta.Owner.Login,
		Name:        meta.Name,
		FullName:    meta.FullName,
		Description: meta.Description,
		Language:    meta.Language,
		HTMLURL:     meta.HTMLURL,
		IsPrivate:   meta.Private,
		Stars:       meta.Stars,
		Forks:       meta.Forks,
		Watchers:    meta.Watchers,
		OpenIssues:  meta.OpenIssues,
		PushedAt:    meta.PushedAt,
		SyncedAt:    time.Now().UTC(),
	}
}

// splitFullName parses "owner/name" into its components
func splitFullName(fullName string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperrors.ValidationError("full_name", "must be in owner/name form")
	}
	return parts[0], parts[1], nil
}
