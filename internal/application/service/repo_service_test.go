package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/infrastructure/github"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
)

// stubGitHub serves a minimal repos API with adjustable star counts
type stubGitHub struct {
	stars    atomic.Int64
	requests atomic.Int64
}

func (s *stubGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/hello", func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": 1296269,
			"name": "hello",
			"full_name": "octocat/hello",
			"owner": {"login": "octocat"},
			"description": "My first repository",
			"language": "Go",
			"html_url": "https://github.com/octocat/hello",
			"private": false,
			"stargazers_count": %d,
			"forks_count": 9,
			"subscribers_count": 4,
			"open_issues_count": 2,
			"pushed_at": "2026-01-02T15:04:05Z"
		}`, s.stars.Load())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

func newStubRepoService(t *testing.T) (*RepoService, *fakeRepoRepo, *stubGitHub) {
	t.Helper()

	stub := &stubGitHub{}
	stub.stars.Store(80)
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	ghClient := github.NewClient(&config.GitHubConfig{
		APIBaseURL:     srv.URL,
		TimeoutSeconds: 5,
	})
	repoRepo := newFakeRepoRepo()
	return NewRepoService(repoRepo, ghClient), repoRepo, stub
}

func TestTrackRepo(t *testing.T) {
	svc, _, _ := newStubRepoService(t)
	ctx := context.Background()

	repo, err := svc.TrackRepo(ctx, "octocat/hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1296269), repo.GitHubID)
	assert.Equal(t, "octocat", repo.Owner)
	assert.Equal(t, "hello", repo.Name)
	assert.Equal(t, "octocat/hello", repo.FullName)
	assert.Equal(t, "Go", repo.Language)
	assert.Equal(t, 80, repo.Stars)
	assert.Equal(t, 9, repo.Forks)
	require.NotNil(t, repo.PushedAt)
	assert.False(t, repo.SyncedAt.IsZero())
}

func TestTrackRepoBadFullName(t *testing.T) {
	svc, _, _ := newStubRepoService(t)
	ctx := context.Background()

	for _, bad := range []string{"", "justowner", "a/b/c", "/name", "owner/"} {
		_, err := svc.TrackRepo(ctx, bad, "", nil)
		assert.True(t, apperrors.IsBadRequest(err), "full name %q should be rejected", bad)
	}
}

func TestTrackRepoUnknownRepository(t *testing.T) {
	svc, _, _ := newStubRepoService(t)
	ctx := context.Background()

	_, err := svc.TrackRepo(ctx, "octocat/missing", "", nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTrackRepoTwiceRefreshesInPlace(t *testing.T) {
	svc, repoRepo, stub := newStubRepoService(t)
	ctx := context.Background()

	first, err := svc.TrackRepo(ctx, "octocat/hello", "", nil)
	require.NoError(t, err)

	stub.stars.Store(150)
	second, err := svc.TrackRepo(ctx, "octocat/hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 150, second.Stars)

	total, err := repoRepo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSyncRepo(t *testing.T) {
	svc, _, stub := newStubRepoService(t)
	ctx := context.Background()

	repo, err := svc.TrackRepo(ctx, "octocat/hello", "", nil)
	require.NoError(t, err)

	stub.stars.Store(777)
	synced, err := svc.SyncRepo(ctx, repo.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 777, synced.Stars)
	assert.Equal(t, repo.ID, synced.ID)
}

func TestRefreshStale(t *testing.T) {
	svc, repoRepo, stub := newStubRepoService(t)
	ctx := context.Background()

	repo, err := svc.TrackRepo(ctx, "octocat/hello", "", nil)
	require.NoError(t, err)

	// Age the row past the cutoff
	repo.SyncedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repoRepo.Upsert(ctx, repo))

	stub.stars.Store(300)
	synced, err := svc.RefreshStale(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	refreshed, err := repoRepo.FindByID(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, refreshed.Stars)
}

func TestRefreshStaleSkipsPrivateRepos(t *testing.T) {
	svc, repoRepo, stub := newStubRepoService(t)
	ctx := context.Background()

	private := &models.Repository{
		GitHubID:  999,
		Owner:     "octocat",
		Name:      "secret",
		FullName:  "octocat/secret",
		IsPrivate: true,
		SyncedAt:  time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, repoRepo.Upsert(ctx, private))

	before := stub.requests.Load()
	synced, err := svc.RefreshStale(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, synced)
	assert.Equal(t, before, stub.requests.Load())
}

func TestUpdateRepoLocalOverrides(t *testing.T) {
	svc, _, _ := newStubRepoService(t)
	ctx := context.Background()

	repo, err := svc.TrackRepo(ctx, "octocat/hello", "", nil)
	require.NoError(t, err)

	desc := "local description"
	updated, err := svc.UpdateRepo(ctx, repo.ID, UpdateRepoRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "local description", updated.Description)
	assert.Equal(t, repo.Stars, updated.Stars)
}
