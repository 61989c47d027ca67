package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/devboard-io/devboard/internal/application/service"
	"github.com/devboard-io/devboard/internal/config"
	"github.com/devboard-io/devboard/internal/domain/models"
	"github.com/devboard-io/devboard/internal/infrastructure/database"
	"github.com/devboard-io/devboard/internal/infrastructure/github"
	"github.com/devboard-io/devboard/internal/infrastructure/repository"
	"github.com/devboard-io/devboard/pkg/crypto"
	"github.com/devboard-io/devboard/pkg/logger"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "manage",
		Short: "Management CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(&logger.Config{Level: "warn", Output: "console", Format: "console"})
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "path to config.yaml")

	root.AddCommand(migrateCmd())
	root.AddCommand(seedRolesCmd())
	root.AddCommand(createAdminCmd())
	root.AddCommand(syncRepoCmd())
	root.AddCommand(genKeyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func openDatabase() (*database.Database, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AutoMigrate(); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func seedRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Create the built-in roles if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SeedDefaultRoles(); err != nil {
				return err
			}
			fmt.Println("default roles seeded")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || email == "" || password == "" {
				return fmt.Errorf("username, email, and password are required")
			}

			db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			userRepo := repository.NewUserRepository(db.DB())
			user := &models.User{
				Username:     username,
				Email:        email,
				PasswordHash: string(hash),
				IsAdmin:      true,
				IsVerified:   true,
			}
			if err := userRepo.Create(ctx, user); err != nil {
				return err
			}
			fmt.Printf("admin %s created (%s)\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "admin username")
	cmd.Flags().String("email", "", "admin email")
	cmd.Flags().String("password", "", "admin password")
	return cmd
}

func syncRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-repo [owner/name]",
		Short: "Fetch and store metadata for a GitHub repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			repoRepo := repository.NewRepoRepository(db.DB())
			ghClient := github.NewClient(&cfg.GitHub)
			repoService := service.NewRepoService(repoRepo, ghClient)

			repo, err := repoService.TrackRepo(ctx, args[0], "", nil)
			if err != nil {
				return err
			}
			fmt.Printf("synced %s (%d stars)\n", repo.FullName, repo.Stars)
			return nil
		},
	}
	return cmd
}

func genKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genkey",
		Short: "Generate a hex AES-256 key for token encryption",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Println(key)
			return nil
		},
	}
}
