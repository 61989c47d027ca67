package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/internal/application/dto"
	"github.com/devboard-io/devboard/internal/application/service"
	"github.com/devboard-io/devboard/internal/transport/http/middleware"
	"github.com/devboard-io/devboard/pkg/logger"
)

// RepoHandler handles repository HTTP requests
type RepoHandler struct {
	repoService  *service.RepoService
	oauthService *service.OAuthService
	log          *logger.Logger
}

// NewRepoHandler creates a new RepoHandler instance
func NewRepoHandler(repoService *service.RepoService, oauthService *service.OAuthService) *RepoHandler {
	return &RepoHandler{
		repoService:  repoService,
		oauthService: oauthService,
		log:          logger.Get().WithFields(logger.Component("repo-handler")),
	}
}

// Create handles POST /api/v1/repositories
// Tracks a GitHub repository by full name, fetching its metadata
func (h *RepoHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.CreateRepoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	createdBy := actor.ID
	repo, err := h.repoService.TrackRepo(c.Request.Context(), req.FullName, h.actorToken(c), &createdBy)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToRepoResponse(repo))
}

// List handles GET /api/v1/repositories
func (h *RepoHandler) List(c *gin.Context) {
	query := c.Query("q")
	page, perPage, offset := pagination(c)

	repos, err := h.repoService.SearchRepos(c.Request.Context(), query, perPage, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	total, err := h.repoService.CountRepos(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	resps := make([]dto.RepoResponse, 0, len(repos))
	for _, r := range repos {
		resps = append(resps, dto.ToRepoResponse(r))
	}

	c.JSON(http.StatusOK, dto.RepoListResponse{
		Repositories: resps,
		Total:        total,
		Page:         page,
		PerPage:      perPage,
		TotalPages:   totalPages(total, perPage),
	})
}

// Count handles GET /api/v1/repositories/count
func (h *RepoHandler) Count(c *gin.Context) {
	total, err := h.repoService.CountRepos(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: total})
}

// Get handles GET /api/v1/repositories/:id
func (h *RepoHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	repo, err := h.repoService.GetRepo(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRepoResponse(repo))
}

// Update handles PUT /api/v1/repositories/:id
func (h *RepoHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRepoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	repo, err := h.repoService.UpdateRepo(c.Request.Context(), id, service.UpdateRepoRequest{
		Description: req.Description,
		Language:    req.Language,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRepoResponse(repo))
}

// Delete handles DELETE /api/v1/repositories/:id
func (h *RepoHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repoService.DeleteRepo(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Repository deleted"})
}

// Sync handles POST /api/v1/repositories/:id/sync
// Refreshes the repository's metadata from GitHub on demand
func (h *RepoHandler) Sync(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	repo, err := h.repoService.SyncRepo(c.Request.Context(), id, h.actorToken(c))
	if err != nil {
		handleError(c, err)
		return
	}

	h.log.Info("Repository synced on demand",
		logger.String("repo_id", id.String()),
		logger.RepoFullName(repo.FullName),
	)
	c.JSON(http.StatusOK, dto.ToRepoResponse(repo))
}

// SyncByName handles POST /api/v1/repositories/sync
// Accepts an owner/name payload and refreshes (or first tracks) that
// repository without requiring its local id.
func (h *RepoHandler) SyncByName(c *gin.Context) {
	var req dto.CreateRepoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	repo, err := h.repoService.TrackRepo(c.Request.Context(), req.FullName, h.actorToken(c), nil)
	if err != nil {
		handleError(c, err)
		return
	}

	h.log.Info("Repository synced by name",
		logger.RepoFullName(repo.FullName),
	)
	c.JSON(http.StatusOK, dto.ToRepoResponse(repo))
}

// actorToken returns the acting user's decrypted GitHub token, or empty for
// users without one. Fetches then fall back to unauthenticated access.
func (h *RepoHandler) actorToken(c *gin.Context) string {
	actor := middleware.GetUserFromContext(c)
	if actor == nil {
		return ""
	}
	token, err := h.oauthService.AccessToken(actor)
	if err != nil {
		return ""
	}
	return token
}
