package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devboard-io/devboard/internal/application/dto"
	"github.com/devboard-io/devboard/internal/application/service"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/transport/http/middleware"
	"github.com/devboard-io/devboard/pkg/logger"
)

// UserHandler handles user HTTP requests
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
	log         *logger.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		log:         logger.Get().WithFields(logger.Component("user-handler")),
	}
}

// Create handles POST /api/v1/users
// Admin-side account provisioning, same validation as self registration
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserInfo(user))
}

// List handles GET /api/v1/users
// Supports ?q= search plus pagination
func (h *UserHandler) List(c *gin.Context) {
	query := c.Query("q")
	page, perPage, offset := pagination(c)

	users, err := h.userService.SearchUsers(c.Request.Context(), query, perPage, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	total, err := h.userService.CountUsers(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	infos := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, dto.ToUserInfo(u))
	}

	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      infos,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	})
}

// Count handles GET /api/v1/users/count
func (h *UserHandler) Count(c *gin.Context) {
	total, err := h.userService.CountUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: total})
}

// Get handles GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserInfo(user))
}

// Update handles PUT /api/v1/users/:id
// Users can edit themselves, everyone else needs the user:update permission
// enforced by the route
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, service.UpdateProfileRequest{
		Email:    req.Email,
		Name:     req.Name,
		Bio:      req.Bio,
		Location: req.Location,
		Company:  req.Company,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserInfo(user))
}

// Delete handles DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// AssignRole handles PUT /api/v1/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	user, err := h.userService.AssignRole(c.Request.Context(), id, req.RoleName)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserInfo(user))
}

// Follow handles GET /api/v1/users/:id/follow
// The acting user follows :id
func (h *UserHandler) Follow(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.FollowUser(c.Request.Context(), actor.ID, id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Followed"})
}

// Unfollow handles GET /api/v1/users/:id/unfollow
func (h *UserHandler) Unfollow(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.UnfollowUser(c.Request.Context(), actor.ID, id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

// Followers handles GET /api/v1/users/:id/followers
func (h *UserHandler) Followers(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	_, perPage, offset := pagination(c)

	users, err := h.userService.ListFollowers(c.Request.Context(), id, perPage, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	infos := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, dto.ToUserInfo(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": infos})
}

// Following handles GET /api/v1/users/:id/following
func (h *UserHandler) Following(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	_, perPage, offset := pagination(c)

	users, err := h.userService.ListFollowing(c.Request.Context(), id, perPage, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	infos := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, dto.ToUserInfo(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": infos})
}

// parseUUIDParam parses a UUID path parameter, writing a 400 on failure
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid " + name + " parameter",
		})
		return uuid.Nil, false
	}
	return id, true
}

// requireActor pulls the authenticated user out of the context
func requireActor(c *gin.Context) (*models.User, bool) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return nil, false
	}
	return user, true
}
