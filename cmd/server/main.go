package main

import (
	"context"
	"log/slog"
	"os"

	"tenderpulse-backend/ai"
	"tenderpulse-backend/config"
	"tenderpulse-backend/handlers"
	"tenderpulse-backend/repository"
	"tenderpulse-backend/service"
	"tenderpulse-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to initialize Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Postgres connection established")

	docStorage, err := storage.NewStorage(cfg.StorageConfig())
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("storage initialized", "type", cfg.StorageType)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	bidRepo := repository.NewBidRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)

	oracle, err := ai.NewGeminiOracle(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, ai.DefaultGenerationSettings())
	if err != nil {
		logger.Error("failed to initialize Gemini", "error", err)
		os.Exit(1)
	}
	logger.Info("Gemini client initialized", "model", cfg.GeminiModel)

	evalService := service.NewEvaluationService(
		service.EvalWithBidStore(bidRepo),
		service.EvalWithProjectStore(projectRepo),
		service.EvalWithUserStore(userRepo),
		service.EvalWithDocumentStore(docRepo),
		service.EvalWithEvaluationStore(evalRepo),
		service.EvalWithObjectStorage(docStorage),
		service.EvalWithOracle(oracle),
		service.EvalWithTimeout(cfg.EvaluationTimeout),
		service.EvalWithWorkers(cfg.EvaluationWorkers),
		service.EvalWithLogger(logger),
	)

	projectHandler := handlers.NewProjectHandler(projectRepo, bidRepo, evalService)
	bidHandler := handlers.NewBidHandler(bidRepo, projectRepo, evalService)
	docHandler := handlers.NewDocumentHandler(docRepo, bidRepo, docStorage, cfg.MaxUploadSize)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Project endpoints
		api.POST("/projects", projectHandler.CreateProject)
		api.GET("/projects", projectHandler.ListProjects)
		api.GET("/projects/:id", projectHandler.GetProject)
		api.PUT("/projects/:id", projectHandler.UpdateProject)
		api.POST("/projects/:id/publish", projectHandler.PublishProject)
		api.POST("/projects/:id/evaluate", projectHandler.EvaluateProject)
		api.GET("/projects/:id/evaluations", projectHandler.ListProjectEvaluations)
		api.POST("/projects/:id/rank", projectHandler.RankProject)
		api.POST("/projects/:id/award/:bid_id", projectHandler.AwardProject)

		// Bid endpoints
		api.POST("/bids", bidHandler.CreateBid)
		api.GET("/bids", bidHandler.ListBidderBids)
		api.GET("/bids/:id", bidHandler.GetBid)
		api.POST("/bids/:id/submit", bidHandler.SubmitBid)
		api.POST("/bids/:id/evaluate", bidHandler.EvaluateBid)
		api.GET("/bids/:id/evaluation", bidHandler.GetBidEvaluation)

		// Document endpoints
		api.POST("/bids/:id/documents", docHandler.UploadDocument)
		api.GET("/bids/:id/documents", docHandler.ListBidDocuments)
		api.GET("/documents/:id/download", docHandler.DownloadDocument)
		api.DELETE("/documents/:id", docHandler.DeleteDocument)
	}

	logger.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	return pool, nil
}
