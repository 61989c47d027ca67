package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/infrastructure/database"
)

// Server bundles the gin engine with the loaded configuration and the
// database handle the routers need.
type Server struct {
	*gin.Engine

	Config *config.Config
	DB     *database.Database
}

// New loads configuration, connects to the database and prepares a bare
// gin engine. Middleware and routes are registered by the router package.
func New() (*Server, error) {
	configPath := os.Getenv("DEVBOARD_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		Engine: gin.New(),
		Config: cfg,
		DB:     db,
	}, nil
}
