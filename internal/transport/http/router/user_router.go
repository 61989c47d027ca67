package router

import (
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/transport/http/handler"
)

func (r *Router) userRouter() {
	userHandler := handler.NewUserHandler(r.Deps.UserService, r.Deps.AuthService)

	users := r.server.Group("/api/v1/users")
	users.Use(r.sessionMW.RequireAuth())
	{
		users.POST("", r.authzMW.RequirePermission(models.ResourceUser, models.ActionCreate), userHandler.Create)
		users.GET("", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.List)
		users.GET("/count", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.Count)
		users.GET("/:id", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.Get)
		users.PUT("/:id", r.authzMW.RequirePermissionOrSelf(models.ResourceUser, models.ActionUpdate), userHandler.Update)
		users.DELETE("/:id", r.authzMW.RequirePermission(models.ResourceUser, models.ActionDelete), userHandler.Delete)
		users.PUT("/:id/role", r.sessionMW.RequireAdmin(), userHandler.AssignRole)

		// Follow edges act on the caller's own account, read access suffices
		users.GET("/:id/follow", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.Follow)
		users.GET("/:id/unfollow", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.Unfollow)
		users.GET("/:id/followers", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.Followers)
		users.GET("/:id/following", r.authzMW.RequirePermission(models.ResourceUser, models.ActionRead), userHandler.Following)
	}
}
