package router

import (
	"github.com/devboard-io/devboard/internal/injectable"
	"github.com/devboard-io/devboard/internal/server"
	"github.com/devboard-io/devboard/internal/transport/http/middleware"
)

type Router struct {
	server *server.Server
	Deps   *injectable.Dependencies

	sessionMW *middleware.SessionMiddleware
	authzMW   *middleware.AuthzMiddleware
}

// NewRouter creates a new Router instance.
func NewRouter(s *server.Server) *Router {
	deps := injectable.LoadDependencies(s.Config, s.DB)

	return &Router{
		server:    s,
		Deps:      &deps,
		sessionMW: middleware.NewSessionMiddleware(deps.Sessions, deps.UserRepo, &s.Config.Session),
		authzMW:   middleware.NewAuthzMiddleware(),
	}
}

// RegisterRoutes sets up the routes and middleware for the server.
func (r *Router) RegisterRoutes() {
	r.server.Use(middleware.RecoveryMiddleware())
	r.server.Use(middleware.LoggerMiddleware())
	r.server.Use(middleware.CORSMiddleware(r.server.Config.Server.AllowedOrigins))

	r.healthRouter()
	r.authRouter()
	r.userRouter()
	r.roleRouter()
	r.repoRouter()
}
