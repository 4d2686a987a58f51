package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"maru/internal/config"
	"maru/internal/database"
	"maru/internal/handlers"
	"maru/internal/health"
	"maru/internal/jobs"
	"maru/internal/logging"
	"maru/internal/services"
	"maru/internal/tools"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Maru assistant server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: %s, Model: %s)", cfg.Port, cfg.DatabasePath, cfg.LLMModel)

	if cfg.LLMAPIKey == "" {
		log.Println("⚠️  LLM_API_KEY not set - completion calls will fail unless the provider allows anonymous access")
	}

	// Database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Intent routing table (defaults, optionally overridden from YAML)
	intentMap, err := config.LoadIntentMap(cfg.IntentMapPath)
	if err != nil {
		log.Fatalf("❌ Failed to load intent map: %v", err)
	}

	// Capability handlers
	registry := tools.NewRegistry()
	for _, h := range []tools.Handler{
		tools.NewNotesHandler(db),
		tools.NewCalendarHandler(db),
		tools.NewWebHandler(cfg.SearXNGURL),
		tools.NewFilesHandler(cfg.WorkspaceDir),
		tools.NewFallbackHandler(),
	} {
		if err := registry.Register(h); err != nil {
			log.Fatalf("❌ Failed to register handler: %v", err)
		}
	}
	log.Printf("🧰 Registered capabilities: %v", registry.Names())

	// LLM + pipeline
	llm := services.NewLLMClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	parser := services.NewParserService(llm, cfg.ParserPromptPath)
	if err := parser.WatchTemplate(); err != nil {
		log.Printf("⚠️  Prompt template watcher disabled: %v", err)
	}
	defer parser.Close()

	sessionStore := services.NewSessionStore(db)
	sessionManager := services.NewSessionManager(sessionStore, cfg.SessionTTL)
	metrics := services.InitMetrics(sessionManager)

	router := services.NewRouter(intentMap, registry)
	executor := services.NewExecutor(router, metrics)
	synthesizer := services.NewSynthesizer(llm)
	assistant := services.NewAssistantService(parser, executor, synthesizer, sessionManager, metrics, cfg.HistoryLimit)

	// Backend dependency health checks
	healthService := health.NewService(0)
	healthService.Register(&health.DatabaseCheck{DB: db})
	healthService.Register(&health.LLMCheck{BaseURL: cfg.LLMBaseURL, APIKey: cfg.LLMAPIKey})
	healthService.Register(&health.SearchCheck{BaseURL: cfg.SearXNGURL})

	// Background expiry sweep
	scheduler := jobs.NewScheduler()
	cleanupJob := jobs.NewSessionCleanupJob(sessionManager, metrics)
	spec := "@every " + cfg.CleanupInterval.String()
	if err := scheduler.Register("session-cleanup", spec, cleanupJob.Run); err != nil {
		log.Fatalf("❌ Failed to register cleanup job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP surface
	app := fiber.New(fiber.Config{
		AppName:      "maru",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{Max: 60}))

	prometheus := fiberprometheus.New("maru")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	assistantHandler := handlers.NewAssistantHandler(assistant)
	sessionHandler := handlers.NewSessionHandler(sessionManager)
	healthHandler := handlers.NewHealthHandler(healthService)

	app.Get("/", healthHandler.Live)
	app.Get("/health", healthHandler.Health)
	app.Post("/assistant", assistantHandler.Process)
	app.Get("/sessions/:id", sessionHandler.Get)
	app.Delete("/sessions/:id", sessionHandler.Delete)
	app.Get("/sessions-stats", sessionHandler.Stats)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server shutdown error: %v", err)
		}
	}()

	log.Printf("🌐 Listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("✅ Server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
