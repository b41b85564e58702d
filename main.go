// File: finehero/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finehero/config"
	"finehero/cron"
	"finehero/database"
	billingRepoPkg "finehero/database/repository/billing"
	defenseRepoPkg "finehero/database/repository/defense"
	fineRepoPkg "finehero/database/repository/fine"
	legalRepoPkg "finehero/database/repository/legal"
	userRepoPkg "finehero/database/repository/user"
	"finehero/handlers"
	"finehero/middleware"
	"finehero/routes"
	"finehero/services/billing"
	"finehero/services/defense"
	"finehero/services/fine"
	"finehero/services/legal"
	"finehero/services/notification"
	"finehero/services/ocr"
	"finehero/services/user"
	"finehero/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.InitEmbedCache()
	utils.FirebaseInit()

	storageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	fineRepo := fineRepoPkg.NewMongoFineRepo()
	defenseRepo := defenseRepoPkg.NewMongoDefenseRepo()
	legalRepo := legalRepoPkg.NewMongoLegalRepo()
	ledgerRepo := billingRepoPkg.NewMongoLedgerRepo()

	// Task queue client for the API side; the worker consumes the same queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	// services.
	userService := &user.DefaultUserService{
		Repo: userRepo,
	}

	notificationService := &notification.DefaultNotificationService{
		Users: userRepo,
	}

	billingService := &billing.DefaultBillingService{
		Ledger:        ledgerRepo,
		Users:         userRepo,
		WebhookSecret: config.AppConfig.StripeWebhookSecret,
	}

	ocrPipeline := ocr.NewPipeline(
		config.AppConfig.OCRQualityGate,
		ocr.NewPDFTextEngine(),
		ocr.NewTesseractEngine(config.AppConfig.OCRLanguages),
	)

	fineService := &fine.DefaultFineService{
		Repo:     fineRepo,
		Storage:  storageService,
		Pipeline: ocrPipeline,
		Tasks:    asynqClient,
		TempDir:  config.AppConfig.UploadTempDir,
	}

	embedder := legal.NewCachedEmbedder(
		legal.NewGeminiEmbedder(config.AppConfig.GeminiAPIKey, config.AppConfig.EmbeddingModel),
		utils.GetEmbedCacheClient(),
		24*time.Hour,
	)
	legalService := legal.NewDefaultLegalService(
		legalRepo,
		embedder,
		legal.NewSplitter(config.AppConfig.ChunkSize, config.AppConfig.ChunkOverlap),
		config.AppConfig.RetrievalTopK,
		config.AppConfig.RetrievalMinScore,
	)

	defenseService := &defense.DefaultDefenseService{
		Repo:      defenseRepo,
		Fines:     fineRepo,
		Legal:     legalService,
		Generator: defense.NewGeminiClient(config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel),
		Billing:   billingService,
		Notify:    notificationService,
		Tasks:     asynqClient,
		TopK:      config.AppConfig.RetrievalTopK,
	}

	// Background worker for OCR and letter generation.
	cron.InitPipelineWorker(fineService, defenseService)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient(), utils.GetEmbedCacheClient()},
		database.MongoClient,
	)

	// Assemble the handler bundle and register routes.
	handlerBundle := handlers.NewHandlerBundle(
		userRepo,
		userService,
		fineService,
		defenseService,
		billingService,
		legalService,
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
