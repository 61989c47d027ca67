package router

import (
	"github.com/devboard-io/devboard/internal/transport/http/handler"
)

func (r *Router) authRouter() {
	authHandler := handler.NewAuthHandler(r.Deps.AuthService, r.Deps.OAuthService, r.Deps.Sessions, r.server.Config)

	api := r.server.Group("/api")
	{
		api.GET("/auth/github", authHandler.GitHubLogin)
		api.GET("/auth/github/callback", authHandler.GitHubCallback)
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/logout", authHandler.Logout)
		api.GET("/user", r.sessionMW.RequireAuth(), authHandler.CurrentUser)
	}
}
