package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/internal/application/dto"
	"github.com/devboard-io/devboard/internal/application/service"
	"github.com/devboard-io/devboard/pkg/logger"
)

// RoleHandler handles role HTTP requests
type RoleHandler struct {
	roleService *service.RoleService
	log         *logger.Logger
}

// NewRoleHandler creates a new RoleHandler instance
func NewRoleHandler(roleService *service.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		log:         logger.Get().WithFields(logger.Component("role-handler")),
	}
}

// Create handles POST /api/v1/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), service.CreateRoleRequest{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToRoleResponse(role))
}

// List handles GET /api/v1/roles
func (h *RoleHandler) List(c *gin.Context) {
	query := c.Query("q")
	page, perPage, offset := pagination(c)

	roles, err := h.roleService.SearchRoles(c.Request.Context(), query, perPage, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	total, err := h.roleService.CountRoles(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	resps := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		resps = append(resps, dto.ToRoleResponse(r))
	}

	c.JSON(http.StatusOK, dto.RoleListResponse{
		Roles:      resps,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	})
}

// Count handles GET /api/v1/roles/count
func (h *RoleHandler) Count(c *gin.Context) {
	total, err := h.roleService.CountRoles(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: total})
}

// Get handles GET /api/v1/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.GetRole(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleResponse(role))
}

// Update handles PUT /api/v1/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), id, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleResponse(role))
}

// GetPermissions handles GET /api/v1/roles/:id/permissions
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	role, err := h.roleService.GetRole(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"permissions": role.Permissions})
}

// UpdatePermissions handles PUT /api/v1/roles/:id/permissions
// Merges the given flags into the role's permission map
func (h *RoleHandler) UpdatePermissions(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
		})
		return
	}

	role, err := h.roleService.UpdatePermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleResponse(role))
}

// Delete handles DELETE /api/v1/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role deleted"})
}
