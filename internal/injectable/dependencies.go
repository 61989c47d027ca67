package injectable

import (
	"github.com/devboard-io/devboard/internal/application/service"
	"github.com/devboard-io/devboard/internal/config"
	domainrepo "github.com/devboard-io/devboard/internal/domain/repository"
	"github.com/devboard-io/devboard/internal/infrastructure/database"
	"github.com/devboard-io/devboard/internal/infrastructure/github"
	"github.com/devboard-io/devboard/internal/infrastructure/repository"
	"github.com/devboard-io/devboard/internal/infrastructure/session"
	"github.com/devboard-io/devboard/pkg/crypto"
)

// Dependencies holds all the dependencies required by the router
type Dependencies struct {
	// Infrastructure
	Sessions *session.Store
	GitHub   *github.Client

	// Repositories
	UserRepo domainrepo.UserRepository

	// Services
	AuthService  *service.AuthService
	OAuthService *service.OAuthService
	UserService  *service.UserService
	RoleService  *service.RoleService
	RepoService  *service.RepoService
	SyncCron     *service.SyncCronService
}

func LoadDependencies(cfg *config.Config, db *database.Database) Dependencies {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB())
	roleRepo := repository.NewRoleRepository(db.DB())
	repoRepo := repository.NewRepoRepository(db.DB())

	// Initialize session store
	sessions, err := session.NewStore(&cfg.Redis, cfg.Session.TTL())
	if err != nil {
		panic("Failed to connect to redis: " + err.Error())
	}

	// Initialize token codec
	codec, err := crypto.NewTokenCodec(cfg.Crypto.TokenKey)
	if err != nil {
		panic("Failed to initialize token codec: " + err.Error())
	}

	ghClient := github.NewClient(&cfg.GitHub)

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, &cfg.Session)
	oauthService := service.NewOAuthService(&cfg.GitHub, userRepo, roleRepo, ghClient, codec)
	userService := service.NewUserService(userRepo, roleRepo)
	roleService := service.NewRoleService(roleRepo)
	repoService := service.NewRepoService(repoRepo, ghClient)
	syncCron := service.NewSyncCronService(repoService, &cfg.Sync)

	return Dependencies{
		Sessions:     sessions,
		GitHub:       ghClient,
		UserRepo:     userRepo,
		AuthService:  authService,
		OAuthService: oauthService,
		UserService:  userService,
		RoleService:  roleService,
		RepoService:  repoService,
		SyncCron:     syncCron,
	}
}
