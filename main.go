package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"wfmuser/internal/config"
	"wfmuser/internal/handlers"
	"wfmuser/internal/hashing"
	"wfmuser/internal/messaging"
	"wfmuser/internal/models"
	"wfmuser/internal/repositories"
	"wfmuser/internal/services"
	"wfmuser/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Initialize the user store ---
	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}
	authService := services.NewAuthService(store, cfg.AuthResponseExclusionList)

	app := newApp(cfg, store, authService)

	// --- Messaging ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQEnabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Queue:    cfg.UserQueue,
			Prefetch: 32,
		})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit

		dispatcher := messaging.NewDispatcher(store, mqClient)
		if err := mqClient.ConsumeRequests(dispatcher.HandleDelivery); err != nil {
			log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp builds the Fiber app with the user routes mounted at cfg.APIPath.
func newApp(cfg config.Config, store services.Directory, authService *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	api := app.Group(cfg.APIPath)
	// Auth routes first so /auth is not matched as a user id.
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewUserHandler(store).RegisterRoutes(api)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": cfg.RabbitMQEnabled,
		})
	})

	return app
}

// buildStore creates the hasher and the store, seeded from the configured
// fixtures file and seed database.
func buildStore(cfg config.Config) (*services.UserStore, error) {
	hasher, err := hashing.New(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	seeds, err := loadSeed(cfg)
	if err != nil {
		return nil, err
	}
	users, err := services.PrepareSeed(hasher, seeds)
	if err != nil {
		return nil, err
	}

	backoff := services.BackoffPolicy{BaseDelay: cfg.BackoffBaseDelay, MaxDelay: cfg.BackoffMaxDelay}
	if backoff.MaxDelay > 0 {
		log.Printf("Password backoff capped at %s", backoff.MaxDelay)
	}

	store, err := services.NewUserStore(hasher, backoff, users)
	if err != nil {
		return nil, err
	}
	log.Printf("Seeded %d users", len(users))
	return store, nil
}

func loadSeed(cfg config.Config) ([]models.SeedUser, error) {
	var repos repositories.MultiUserRepository
	if cfg.SeedFile != "" {
		repos = append(repos, repositories.NewJSONUserRepository(cfg.SeedFile))
	}
	if cfg.SeedDatabaseDriver != "" {
		db, err := repositories.OpenDatabase(cfg.SeedDatabaseDriver, cfg.SeedDatabaseDSN)
		if err != nil {
			return nil, err
		}
		// The seed database is read once; close its pool afterwards.
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		repos = append(repos, repositories.NewGORMUserRepository(db))
	}
	return repos.GetAll()
}
