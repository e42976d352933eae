package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeMatch/app/echo-server/router"
	"homeMatch/business/experiment"
	"homeMatch/business/feedback"
	"homeMatch/business/preference"
	"homeMatch/business/recommend"
	"homeMatch/domain"
	"homeMatch/internal/middleware"
	psqlRepo "homeMatch/internal/repository/postgres"
	redisRepo "homeMatch/internal/repository/redis"
	"homeMatch/internal/rest"
	"homeMatch/pkg/config"
	"homeMatch/pkg/database"
	redisdb "homeMatch/pkg/database/redis"
	"homeMatch/pkg/logger"
	"homeMatch/pkg/metrics"
	"homeMatch/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const policyExperiment = "engine-policy"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting HomeMatch recommendation engine", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// Init repo
	eventRepo := psqlRepo.NewEventRepository(db)
	propertyRepo := psqlRepo.NewPropertyRepository(db)
	popularityRepo := psqlRepo.NewPopularityRepository(db)
	snapshotRepo := psqlRepo.NewProfileSnapshotRepository(db)
	engineCfgRepo := psqlRepo.NewEngineConfigRepository(db)
	onboardingRepo := psqlRepo.NewOnboardingRepository(db)
	assignmentRepo := psqlRepo.NewAssignmentRepository(db)
	resultCache := redisRepo.NewResultCache(redisClient)
	dedupeStore := redisRepo.NewDedupeStore(redisClient)

	// Preference store: warm start from the persisted snapshots, then run
	// the decay sweep in the background.
	prefStore := preference.NewStore(snapshotRepo, preference.DefaultConfig())
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := prefStore.WarmStart(bootCtx); err != nil {
		logger.Warn("profile warm start failed, starting empty", "error", err)
	}
	bootCancel()

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go prefStore.RunDecayLoop(sweepCtx, time.Duration(cfg.Engine.DecaySweepMin)*time.Minute)

	// Experiment allocator with the engine-policy split.
	allocator := experiment.NewAllocator(assignmentRepo)
	if err := allocator.Register(domain.Experiment{
		Name: policyExperiment,
		Variants: []domain.ExperimentVariant{
			{Name: "control", Weight: 80},
			{Name: "treatment", Weight: 20},
		},
	}); err != nil {
		logger.Fatal("Failed to register experiment", "error", err)
	}

	// Recommendation service
	engineCfg := recommend.DefaultConfig()
	engineCfg.ScorerTimeout = time.Duration(cfg.Engine.ScorerTimeoutMS) * time.Millisecond
	engineCfg.ResultTTL = time.Duration(cfg.Engine.ResultCacheTTLMin) * time.Minute
	engineCfg.ColdStartTTL = time.Duration(cfg.Engine.ColdStartCacheTTLMin) * time.Minute
	engineCfg.DiversityFloor = cfg.Engine.DiversityFloor

	coldStart := recommend.NewColdStartResolver(popularityRepo, onboardingRepo, engineCfg)

	recoService := recommend.NewService(
		prefStore,
		propertyRepo,
		coldStart,
		resultCache,
		engineCfgRepo,
		allocator,
		policyExperiment,
		engineCfg,
	)
	contentScorer := recommend.NewContentScorer()
	recoService.RegisterScorer(recommend.NewCollaborativeScorer(prefStore, eventRepo, engineCfg))
	recoService.RegisterScorer(contentScorer)
	recoService.RegisterScorer(recommend.NewContextualScorer(contentScorer, engineCfg))

	ingestor := feedback.NewIngestor(eventRepo, dedupeStore, prefStore, propertyRepo)

	// Init handler
	recommendHandler := rest.NewRecommendHandler(recoService, ingestor)
	experimentHandler := rest.NewExperimentHandler(allocator)
	adminHandler := rest.NewEngineAdminHandler(engineCfgRepo, onboardingRepo)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Setup routes
	api := e.Group("/api/v1")
	router.SetRecommendRoutes(api, recommendHandler)
	router.SetExperimentRoutes(api, experimentHandler)
	router.SetEngineAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
