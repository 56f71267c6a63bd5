package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"hiresense/evaluation-engine/internal/config"
	"hiresense/evaluation-engine/internal/handlers"
	"hiresense/evaluation-engine/internal/repositories"
	"hiresense/evaluation-engine/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	sessionRepo := repositories.NewSessionRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	topCandidateRepo := repositories.NewTopCandidateRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Pipeline.RetryMaxAttempts,
		cfg.Pipeline.RetryInitialDelay,
		cfg.Pipeline.CallTimeout,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant. The fit evaluator degrades gracefully without it,
	// so a missing Qdrant only disables retrieved reference context.
	var retriever services.ContextRetriever
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Printf("⚠️  Qdrant unavailable, continuing without reference context: %v\n", err)
	} else if err := qdrantService.InitCollection(); err != nil {
		log.Printf("⚠️  Failed to initialize Qdrant collection, continuing without reference context: %v\n", err)
	} else {
		retriever = services.NewContextRetriever(geminiService, qdrantService)
		log.Println("✅ Qdrant initialized successfully")
	}

	// Initialize pipeline services
	pdfParser := services.NewPDFParserService()
	eventBus := services.NewEventBus(eventRepo)
	extractor := services.NewResumeExtractor(geminiService)
	fitEvaluator := services.NewFitEvaluator(geminiService, retriever)
	debateCoordinator := services.NewDebateCoordinator(geminiService, eventBus, cfg.Pipeline.DebateRounds)
	decisionSynthesizer := services.NewDecisionSynthesizer(geminiService)

	sessionManager := services.NewSessionManager(
		sessionRepo,
		jobRepo,
		topCandidateRepo,
		eventBus,
		extractor,
		fitEvaluator,
		debateCoordinator,
		decisionSynthesizer,
		cfg.Pipeline.SessionBudget,
	)
	log.Println("✅ Session manager initialized")

	// Initialize worker
	worker := services.NewWorker(
		sessionRepo,
		sessionManager,
		cfg.Pipeline.WorkerConcurrency,
	)

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)

	// Initialize handlers
	evaluateHandler := handlers.NewEvaluateHandler(
		sessionManager,
		worker,
		pdfParser,
		cfg.Pipeline.MaxResumeSize,
	)
	sessionHandler := handlers.NewSessionHandler(sessionManager, eventBus)
	resultHandler := handlers.NewResultHandler(sessionManager)
	topCandidatesHandler := handlers.NewTopCandidatesHandler(topCandidateRepo)
	streamHandler := handlers.NewStreamHandler(sessionManager, eventBus)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Hiring Evaluation Engine API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Pipeline.MaxResumeSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Get("/sessions/:id", sessionHandler.HandleGetSession)
	api.Get("/sessions/:id/events", sessionHandler.HandleGetEvents)
	api.Post("/sessions/:id/cancel", sessionHandler.HandleCancel)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Get("/top-candidates", topCandidatesHandler.HandleListTopCandidates)

	// Progress stream
	app.Use("/ws", streamHandler.Upgrade)
	app.Get("/ws/progress/:id", websocket.New(streamHandler.HandleProgressStream))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Hiring Evaluation Engine API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/evaluate",
				"GET /api/v1/sessions/:id",
				"GET /api/v1/sessions/:id/events",
				"POST /api/v1/sessions/:id/cancel",
				"GET /api/v1/result/:id",
				"GET /api/v1/top-candidates",
				"WS /ws/progress/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
