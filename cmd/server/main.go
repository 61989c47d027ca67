package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devboard-io/devboard/internal/server"
	"github.com/devboard-io/devboard/internal/transport/http/router"
	"github.com/devboard-io/devboard/pkg/logger"
)

func main() {
	srv, err := server.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Initialize logging from config
	if err := logger.Init(&logger.Config{
		Level:       srv.Config.Logging.Level,
		Output:      logger.OutputType(srv.Config.Logging.Output),
		Format:      srv.Config.Logging.Format,
		FilePath:    srv.Config.Logging.OutputPath,
		Development: srv.Config.IsDevelopment(),
		AddCaller:   true,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Close()
	log := logger.Get()

	// Run schema migrations and seed the built-in roles
	if err := srv.DB.AutoMigrate(); err != nil {
		log.Fatal("Migration failed",
			logger.Error(err),
		)
	}
	if err := srv.DB.SeedDefaultRoles(); err != nil {
		log.Fatal("Role seeding failed",
			logger.Error(err),
		)
	}

	r := router.NewRouter(srv)
	r.RegisterRoutes()

	// Start the periodic metadata refresh
	if err := r.Deps.SyncCron.Start(); err != nil {
		log.Fatal("Failed to start sync scheduler",
			logger.Error(err),
		)
	}

	httpServer := &http.Server{
		Addr:              srv.Config.ServerAddress(),
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening",
			logger.String("addr", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed",
				logger.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	r.Deps.SyncCron.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed",
			logger.Error(err),
		)
	}

	if err := r.Deps.Sessions.Close(); err != nil {
		log.Error("Failed to close redis client",
			logger.Error(err),
		)
	}
	if err := srv.DB.Close(); err != nil {
		log.Error("Failed to close database",
			logger.Error(err),
		)
	}

	log.Info("Shutdown complete")
}
