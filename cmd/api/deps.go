package main

import (
	"fmt"
	"log"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/dashboard"
	"horizon/internal/domain/link"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/appwrite"
	appwriterepo "horizon/internal/infrastructure/appwrite/repositories"
	"horizon/internal/infrastructure/crypto"
	"horizon/internal/infrastructure/dwolla"
	"horizon/internal/infrastructure/plaid"
	"horizon/internal/infrastructure/postgres"
	"horizon/internal/infrastructure/redis"
	httphandlers "horizon/internal/interfaces/http"
	"horizon/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Cache *redis.Cache

	// Handlers
	AuthHandler      *httphandlers.AuthHandler
	UserHandler      *httphandlers.UserHandler
	LinkHandler      *httphandlers.LinkHandler
	BankHandler      *httphandlers.BankHandler
	DashboardHandler *httphandlers.DashboardHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize encryptor
	encryptor, err := crypto.NewEncryptor(cfg.Link.EncryptionKey)
	if err != nil {
		return nil, err
	}

	// Initialize external clients
	identityClient := appwrite.NewAdminClient(cfg.Identity)
	aggregatorClient := plaid.NewClient(cfg.Plaid)
	railClient := dwolla.NewClient(cfg.Dwolla)

	// Initialize repositories per storage driver
	var userRepo user.Repository
	var bankRepo bank.Repository
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := postgres.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		deps.DB = db
		userRepo = postgres.NewUserRepository(db)
		bankRepo = postgres.NewBankRepository(db)
		log.Println("Connected to database")
	case config.StorageDriverAppwrite:
		userRepo = appwriterepo.NewUserRepository(identityClient, cfg.Identity.DatabaseID, cfg.Identity.UserCollectionID)
		bankRepo = appwriterepo.NewBankRepository(identityClient, cfg.Identity.DatabaseID, cfg.Identity.BankCollectionID)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	// Initialize dashboard cache (optional)
	var cache *redis.Cache
	if cfg.Redis.Addr != "" {
		cache, err = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		deps.Cache = cache
		log.Println("Connected to redis")
	} else {
		log.Println("Dashboard cache disabled (REDIS_ADDR not set)")
	}

	// Session clients are per-request: each carries one caller's secret.
	sessions := func(sessionSecret string) appwrite.SessionInterface {
		return appwrite.NewSessionClient(cfg.Identity, sessionSecret)
	}

	// Initialize domain services
	userService := user.NewService(identityClient, sessions, railClient, userRepo)
	bankService := bank.NewService(bankRepo)

	var invalidator link.CacheInvalidator
	var summaryCache dashboard.Cache
	if cache != nil {
		invalidator = cache
		summaryCache = cache
	}
	linkService := link.NewService(aggregatorClient, railClient, bankService, encryptor, invalidator, cfg.Link)
	dashboardService := dashboard.NewService(bankService, aggregatorClient, encryptor, summaryCache)

	// Initialize handlers
	deps.AuthHandler = httphandlers.NewAuthHandler(userService)
	deps.UserHandler = httphandlers.NewUserHandler(userService)
	deps.LinkHandler = httphandlers.NewLinkHandler(linkService, userService)
	deps.BankHandler = httphandlers.NewBankHandler(bankService, userService)
	deps.DashboardHandler = httphandlers.NewDashboardHandler(dashboardService, userService)

	return deps, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Cache != nil {
		d.Cache.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
