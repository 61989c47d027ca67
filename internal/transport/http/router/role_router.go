package router

import (
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/transport/http/handler"
)

func (r *Router) roleRouter() {
	roleHandler := handler.NewRoleHandler(r.Deps.RoleService)

	roles := r.server.Group("/api/v1/roles")
	roles.Use(r.sessionMW.RequireAuth())
	{
		roles.POST("", r.authzMW.RequirePermission(models.ResourceRole, models.ActionCreate), roleHandler.Create)
		roles.GET("", r.authzMW.RequirePermission(models.ResourceRole, models.ActionRead), roleHandler.List)
		roles.GET("/count", r.authzMW.RequirePermission(models.ResourceRole, models.ActionRead), roleHandler.Count)
		roles.GET("/:id", r.authzMW.RequirePermission(models.ResourceRole, models.ActionRead), roleHandler.Get)
		roles.PUT("/:id", r.authzMW.RequirePermission(models.ResourceRole, models.ActionUpdate), roleHandler.Update)
		roles.GET("/:id/permissions", r.authzMW.RequirePermission(models.ResourceRole, models.ActionRead), roleHandler.GetPermissions)
		roles.PUT("/:id/permissions", r.authzMW.RequirePermission(models.ResourceRole, models.ActionUpdate), roleHandler.UpdatePermissions)
		roles.DELETE("/:id", r.authzMW.RequirePermission(models.ResourceRole, models.ActionDelete), roleHandler.Delete)
	}
}
