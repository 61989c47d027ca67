package github

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/devboard-io/devboard/internal/config"
	apperrors "github.com/devboard-io/devboard/pkg/errors"
	"github.com/devboard-io/devboard/pkg/logger"
)

// Client talks to the GitHub REST API. The base URL is configurable so tests
// can point it at a stub server.
type Client struct {
	config *config.GitHubConfig
	client *resty.Client
	log    *logger.Logger
}

// Profile is the subset of the GitHub user payload the application consumes
type Profile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Location  string `json:"location"`
	Company   string `json:"company"`
}

// RepoMetadata is the subset of the GitHub repository payload the
// application consumes
type RepoMetadata struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	FullName    string     `json:"full_name"`
	Description string     `json:"description"`
	Language    string     `json:"language"`
	HTMLURL     string     `json:"html_url"`
	Private     bool       `json:"private"`
	Stars       int        `json:"stargazers_count"`
	Forks       int        `json:"forks_count"`
	Watchers    int        `json:"subscribers_count"`
	OpenIssues  int        `json:"open_issues_count"`
	PushedAt    *time.Time `json:"pushed_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// NewClient creates a GitHub API client with retries for transient failures
func NewClient(cfg *config.GitHubConfig) *Client {
	client := resty.New().
		SetTimeout(cfg.Timeout()).
		SetRetryCount(3).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/vnd.github+json")

	return &Client{
		config: cfg,
		client: client,
		log:    logger.Get().WithFields(logger.Component("github-client")),
	}
}

// FetchProfile retrieves the authenticated user's profile using an OAuth
// access token
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	url := fmt.Sprintf("%s/user", c.config.APIBaseURL)

	var profile Profile
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&profile).
		Get(url)

	if err != nil {
		return nil, apperrors.ProviderError("profile fetch", err)
	}

	if resp.StatusCode() != 200 {
		c.log.Warn("GitHub profile fetch failed",
			logger.Int("status", resp.StatusCode()),
		)
		return nil, apperrors.ProviderError("profile fetch", fmt.Errorf("github returned status %d", resp.StatusCode()))
	}

	if profile.ID == 0 || profile.Login == "" {
		return nil, apperrors.ProviderError("profile fetch", fmt.Errorf("incomplete profile payload"))
	}

	return &profile, nil
}

// FetchRepo retrieves repository metadata for owner/name. An access token is
// optional; without one only public repositories resolve.
func (c *Client) FetchRepo(ctx context.Context, accessToken, owner, name string) (*RepoMetadata, error) {
	url := fmt.Sprintf("%s/repos/%s/%s", c.config.APIBaseURL, owner, name)

	req := c.client.R().
		SetContext(ctx).
		SetResult(&RepoMetadata{})
	if accessToken != "" {
		req.SetAuthToken(accessToken)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, apperrors.ProviderError("repository fetch", err)
	}

	if resp.StatusCode() == 404 {
		return nil, apperrors.NotFound(fmt.Sprintf("repository %s/%s", owner, name), apperrors.ErrNotFound)
	}

	if resp.StatusCode() != 200 {
		c.log.Warn("GitHub repository fetch failed",
			logger.Int("status", resp.StatusCode()),
			logger.RepoFullName(owner+"/"+name),
		)
		return nil, apperrors.ProviderError("repository fetch", fmt.Errorf("github returned status %d", resp.StatusCode()))
	}

	meta := resp.Result().(*RepoMetadata)
	if meta.ID == 0 {
		return nil, apperrors.ProviderError("repository fetch", fmt.Errorf("incomplete repository payload"))
	}

	return meta, nil
}
