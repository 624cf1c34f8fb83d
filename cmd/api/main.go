package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/cache"
	"resumatch/resume-matcher/internal/config"
	"resumatch/resume-matcher/internal/handlers"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal("failed to initialize redis", zap.Error(err))
	}

	jdRepo := repositories.NewJobDescriptionRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	statusRepo := repositories.NewCandidateStatusRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	extractor := services.NewTextExtractor()

	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Matching.EmbeddingDim,
		cfg.Worker.RetryMaxAttempts,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize gemini", zap.Error(err))
	}

	vectorIndex, err := services.NewQdrantIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Matching.EmbeddingDim,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize qdrant", zap.Error(err))
	}
	if err := vectorIndex.InitCollection(context.Background()); err != nil {
		logger.Fatal("failed to initialize qdrant collection", zap.Error(err))
	}

	skillCache := services.NewSkillCache(
		cache.NewRedisCache(rdb, "resumatch:"),
		geminiService,
		cfg.Matching.SkillCacheTTL,
		logger,
	)

	skillMatcher := services.NewSkillMatcher(cfg.Matching.FuzzyThreshold)
	heuristicScorer := services.NewHeuristicScorer(skillMatcher)
	analysisCache := services.NewAnalysisCache(resumeRepo, logger)
	orchestrator := services.NewAnalysisOrchestrator(geminiService, analysisCache, logger)
	ranker := services.NewRankingAggregator(
		heuristicScorer,
		analysisCache,
		orchestrator,
		cfg.Matching.AnalysisConcurrency,
		cfg.Matching.SimilaritySkipThreshold,
		logger,
	)
	exportService := services.NewExportService(ranker, analysisCache, vectorIndex, logger)

	ingestWorker := services.NewIngestWorker(
		resumeRepo,
		extractor,
		geminiService,
		geminiService,
		vectorIndex,
		cfg.Worker.Concurrency,
		logger,
	)
	ingestWorker.Start()

	jdHandler := handlers.NewJDHandler(
		jdRepo,
		skillCache,
		geminiService,
		extractor,
		storageService,
		vectorIndex,
		cfg.Matching.MaxJobDescriptions,
		logger,
	)
	resumeHandler := handlers.NewResumeHandler(
		resumeRepo,
		storageService,
		ingestWorker,
		cfg.Matching.MaxResumes,
		cfg.Storage.MaxFileSize,
		logger,
	)
	candidatesHandler := handlers.NewCandidatesHandler(jdRepo, resumeRepo, ranker, orchestrator, logger)
	statusHandler := handlers.NewStatusHandler(statusRepo)
	exportHandler := handlers.NewExportHandler(jdRepo, resumeRepo, exportService)
	adminHandler := handlers.NewAdminHandler(skillCache, logger)

	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 25,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().UTC(),
		})
	})

	api.Post("/jds", jdHandler.HandleUpload)
	api.Get("/jds", jdHandler.HandleList)
	api.Delete("/jds/:id", jdHandler.HandleDelete)

	api.Post("/resumes/bulk-upload", resumeHandler.HandleBulkUpload)
	api.Get("/resumes", resumeHandler.HandleList)
	api.Get("/resumes/ingest-status/:jobID", resumeHandler.HandleIngestStatus)
	api.Get("/resumes/:id/file", resumeHandler.HandleDownload)
	api.Delete("/resumes", resumeHandler.HandleDeleteAll)

	api.Get("/candidates/:jdID", candidatesHandler.HandleRankAll)
	api.Post("/candidates/analyze", candidatesHandler.HandleAnalyzeOne)
	api.Get("/candidates/full-analysis/:jdID", candidatesHandler.HandleFullAnalysis)
	api.Post("/candidates/preliminary/:jdID", candidatesHandler.HandlePreliminary)
	api.Get("/candidates/analysis-status/:jdID", candidatesHandler.HandleAnalysisStatus)

	api.Get("/candidates/statuses/:jdID", statusHandler.HandleListByJD)
	api.Patch("/candidates/statuses/bulk", statusHandler.HandleBulkUpdate)

	api.Get("/export/:jdID", exportHandler.HandleExportCSV)
	api.Post("/admin/cache/flush", adminHandler.HandleFlushCache)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down server")
		ingestWorker.Stop()
		if err := app.Shutdown(); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
