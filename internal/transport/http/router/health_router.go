package router

import (
	"github.com/devboard-io/devboard/internal/transport/http/handler"
)

func (r *Router) healthRouter() {
	healthHandler := handler.NewHealthHandler(r.server.DB, r.Deps.Sessions)

	r.server.GET("/healthz", healthHandler.Healthz)
	r.server.GET("/readyz", healthHandler.Readyz)
}
