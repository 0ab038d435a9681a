package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/learnloop/learnloop-backend/internal/clients/openrouter"
	"github.com/learnloop/learnloop-backend/internal/domains"
	"github.com/learnloop/learnloop-backend/internal/domains/datascience"
	"github.com/learnloop/learnloop-backend/internal/handlers"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/normalization"
	"github.com/learnloop/learnloop-backend/internal/observability"
	"github.com/learnloop/learnloop-backend/internal/server"
	"github.com/learnloop/learnloop-backend/internal/services"
	"github.com/learnloop/learnloop-backend/internal/store"
	"github.com/learnloop/learnloop-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "learnloop-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     handlers.Version,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn("OTel shutdown failed", "error", err)
		}
	}()

	// Store
	log.Info("Setting up session store from main...")
	var sessionStore store.SessionStore
	if utils.GetEnv("STORE_BACKEND", "memory", log) == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     utils.GetEnv("REDIS_ADDR", "localhost:6379", log),
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Redis ping failed", "error", err)
		}
		sessionStore = store.NewRedisStore(rdb, log)
	} else {
		sessionStore = store.NewMemoryStore(log)
	}

	// Generation client
	aiClient, err := openrouter.NewClient(log)
	if err != nil {
		log.Fatal("OpenRouter client init failed", "error", err)
	}

	// Domains
	genCfg := datascience.DefaultConfig()
	if path := os.Getenv("DOMAIN_CONFIG_PATH"); path != "" {
		genCfg, err = domains.LoadGenerationConfig(path, genCfg)
		if err != nil {
			log.Fatal("Domain config load failed", "error", err, "path", path)
		}
	}
	registry := domains.NewRegistry(datascience.New(genCfg))

	// Services
	log.Info("Setting up services from main...")
	normalizer := normalization.NewNormalizer(log)
	tocService := services.NewTOCService(log, aiClient, sessionStore, registry)
	pathService := services.NewPathService(log, sessionStore)
	moduleService := services.NewModuleService(log, aiClient, sessionStore, registry, normalizer)
	conceptService := services.NewConceptService(log, aiClient, sessionStore, registry, normalizer)
	navigationService := services.NewNavigationService(log, sessionStore)
	onboardingService := services.NewOnboardingService(log, aiClient)
	coachService := services.NewCoachService(log, aiClient, registry)

	// Handlers
	log.Info("Setting up handlers from main...")
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		DomainHandler:     handlers.NewDomainHandler(log, registry),
		OnboardingHandler: handlers.NewOnboardingHandler(log, onboardingService),
		TOCHandler:        handlers.NewTOCHandler(log, tocService, pathService),
		ModuleHandler:     handlers.NewModuleHandler(log, moduleService, navigationService),
		ConceptHandler:    handlers.NewConceptHandler(log, conceptService, navigationService),
		CoachHandler:      handlers.NewCoachHandler(log, coachService),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
