package router

import (
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/transport/http/handler"
)

func (r *Router) repoRouter() {
	repoHandler := handler.NewRepoHandler(r.Deps.RepoService, r.Deps.OAuthService)

	repos := r.server.Group("/api/v1/repositories")
	repos.Use(r.sessionMW.RequireAuth())
	{
		repos.POST("", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionCreate), repoHandler.Create)
		repos.GET("", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionRead), repoHandler.List)
		repos.GET("/count", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionRead), repoHandler.Count)
		repos.GET("/:id", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionRead), repoHandler.Get)
		repos.PUT("/:id", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionUpdate), repoHandler.Update)
		repos.DELETE("/:id", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionDelete), repoHandler.Delete)
		repos.POST("/:id/sync", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionUpdate), repoHandler.Sync)
		repos.POST("/sync", r.authzMW.RequirePermission(models.ResourceRepository, models.ActionUpdate), repoHandler.SyncByName)
	}
}
