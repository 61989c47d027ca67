package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/pkg/logger"
)

// SyncCronService periodically refreshes metadata of stale repositories
type SyncCronService struct {
	repoService *RepoService
	config      *config.SyncConfig
	cron        *cron.Cron
	running     bool
	mu          sync.Mutex
	log         *logger.Logger
}

// NewSyncCronService creates a new sync cron service
func NewSyncCronService(repoService *RepoService, cfg *config.SyncConfig) *SyncCronService {
	return &SyncCronService{
		repoService: repoService,
		config:      cfg,
		log:         logger.Get().WithFields(logger.Component("sync-cron")),
	}
}

// Start schedules the periodic refresh job
func (s *SyncCronService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled {
		s.log.Info("Periodic repository sync disabled")
		return nil
	}
	if s.running {
		s.log.Warn("Sync cron service already running")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.config.Schedule, s.refresh); err != nil {
		return err
	}
	s.cron.Start()
	s.running = true

	s.log.Info("Sync cron service started",
		logger.String("schedule", s.config.Schedule),
	)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish
func (s *SyncCronService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.log.Info("Sync cron service stopped")
}

// refresh runs one batch of stale repository syncs
func (s *SyncCronService) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.config.StaleAfter())
	synced, err := s.repoService.RefreshStale(ctx, cutoff, 50)
	if err != nil {
		s.log.Error("Stale repository refresh failed",
			logger.Error(err),
		)
		return
	}

	if synced > 0 {
		s.log.Info("Stale repositories refreshed",
			logger.Int("count", synced),
		)
	}
}
