package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biocode/internal/config"
	"biocode/internal/database"
	"biocode/internal/gateway"
	"biocode/internal/handlers"
	"biocode/internal/jobs"
	"biocode/internal/logging"
	"biocode/internal/middleware"
	"biocode/internal/services"
	"biocode/internal/store"
	"biocode/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting BioCode Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// SQLite credential database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Document store: MongoDB when configured, local diskv otherwise
	var docStore store.Store
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		log.Println("🔗 Connecting to MongoDB...")
		mongoDB, err := database.NewMongoDB(mongoURI)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		defer mongoDB.Close(context.Background())
		if err := mongoDB.Initialize(context.Background()); err != nil {
			log.Fatalf("❌ Failed to initialize MongoDB: %v", err)
		}
		docStore = store.NewMongoStore(mongoDB)
		log.Println("✅ MongoDB document store ready")
	} else {
		diskStore, err := store.NewDiskStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("❌ Failed to open document store: %v", err)
		}
		docStore = diskStore
		log.Printf("✅ Local document store ready at %s", cfg.DataDir)
	}

	// AI gateway client
	if cfg.GatewayAPIKey == "" {
		log.Println("⚠️  GATEWAY_API_KEY not set: AI features will fail until it is configured")
	}
	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayModel, cfg.GatewayTTSModel,
		gateway.WithRateLimit(cfg.GatewayRPS, 4))

	// Mentor personality presets with hot reload
	personalities, err := config.LoadPersonalities(cfg.PersonalitiesPath)
	if err != nil {
		log.Fatalf("❌ Failed to load personalities: %v", err)
	}
	watchStop := make(chan struct{})
	go personalities.Watch(watchStop)

	// JWT auth
	var jwtAuth *auth.LocalJWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth, err = auth.NewLocalJWTAuth(cfg.JWTSecret, 0)
		if err != nil {
			log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
		}
		log.Println("✅ JWT authentication enabled")
	} else if cfg.Environment == "production" {
		log.Fatal("❌ JWT_SECRET is required in production")
	} else {
		log.Println("⚠️  JWT_SECRET not set: running with development auth bypass")
	}

	// Services
	timelineService := services.NewTimelineService(docStore, gw)
	analysisService := services.NewAnalysisService(docStore, gw, timelineService)
	reportService := services.NewReportService(docStore, gw, timelineService)
	awarenessService := services.NewAwarenessService(docStore, gw, timelineService, reportService)
	mentorService := services.NewMentorService(docStore, gw, reportService, awarenessService, personalities)
	notebookService := services.NewNotebookService(docStore, gw, timelineService)
	exportService := services.NewExportService(docStore, timelineService, analysisService, reportService, mentorService, awarenessService)
	userService := services.NewUserService(db, docStore, jwtAuth, cfg.AccessBypassPassword)
	trialService := services.NewTrialService(userService, cfg.TrialDurationDays)

	// Background jobs
	scheduler, err := jobs.NewScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create scheduler: %v", err)
	}
	trialChecker := jobs.NewTrialExpiryChecker(db, time.Duration(cfg.TrialDurationDays)*24*time.Hour)
	if err := scheduler.Every("trial-expiry", 1*time.Hour, trialChecker.Run); err != nil {
		log.Fatalf("❌ Failed to register trial checker: %v", err)
	}
	scheduler.Start()

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "BioCode v1.0",
		ReadTimeout:  300 * time.Second, // gateway calls over slow models take a while
		WriteTimeout: 300 * time.Second,
		BodyLimit:    20 * 1024 * 1024, // scanned PDFs and backup bundles
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("biocode")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(userService)
	timelineHandler := handlers.NewTimelineHandler(timelineService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	reportHandler := handlers.NewReportHandler(reportService, exportService)
	mentorHandler := handlers.NewMentorHandler(mentorService, personalities)
	notebookHandler := handlers.NewNotebookHandler(notebookService)
	awarenessHandler := handlers.NewAwarenessHandler(awarenessService)
	exportHandler := handlers.NewExportHandler(exportService)
	trialHandler := handlers.NewTrialHandler(trialService)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api/v1")

	// Public auth endpoints, rate limited harder than the rest
	authGroup := api.Group("/auth", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 15 * time.Minute,
	}))
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/reminder/:username", authHandler.Reminder)
	authGroup.Post("/reactivate", authHandler.Reactivate)

	// Everything below requires auth
	authed := api.Group("", middleware.LocalAuthMiddleware(jwtAuth))

	authed.Delete("/auth/profile", authHandler.DeleteProfile)
	authed.Get("/auth/disclaimer", authHandler.GetDisclaimer)
	authed.Post("/auth/disclaimer", authHandler.AcceptDisclaimer)

	authed.Get("/timeline", timelineHandler.Get)
	authed.Get("/timeline/display", timelineHandler.Display)
	authed.Put("/timeline/anchor", timelineHandler.SetAnchor)
	authed.Post("/timeline/events", timelineHandler.AddEvent)
	authed.Put("/timeline/events/:id", timelineHandler.UpdateEvent)
	authed.Delete("/timeline/events/:id", timelineHandler.DeleteEvent)
	authed.Post("/timeline/scan", timelineHandler.Scan)
	authed.Post("/timeline/categorize", timelineHandler.Categorize)

	authed.Post("/analysis", analysisHandler.Analyze)
	authed.Get("/analysis", analysisHandler.Get)
	authed.Get("/analysis/conversation", analysisHandler.Conversation)
	authed.Post("/analysis/ask", analysisHandler.Ask)

	authed.Post("/report", reportHandler.Generate)
	authed.Get("/report", reportHandler.Get)
	authed.Post("/report/edit", reportHandler.BeginEdit)
	authed.Post("/report/edit/save", reportHandler.Save)
	authed.Post("/report/edit/cancel", reportHandler.Cancel)
	authed.Put("/report/edit/field", reportHandler.EditField)
	authed.Post("/report/edit/list", reportHandler.AddListItem)
	authed.Put("/report/edit/list", reportHandler.EditListItem)
	authed.Delete("/report/edit/list", reportHandler.DeleteListItem)
	authed.Post("/report/edit/table/:table", reportHandler.AddTableRow)
	authed.Put("/report/edit/table/:table", reportHandler.EditTableCell)
	authed.Delete("/report/edit/table/:table", reportHandler.DeleteTableRow)
	authed.Get("/report/export/xlsx", reportHandler.ExportXLSX)
	authed.Get("/report/export/html", reportHandler.ExportHTML)

	authed.Get("/mentor/personalities", mentorHandler.Personalities)
	authed.Get("/mentor/config", mentorHandler.GetConfig)
	authed.Put("/mentor/config", mentorHandler.SetConfig)
	authed.Post("/mentor/chat", mentorHandler.Send)
	authed.Get("/mentor/history", mentorHandler.History)
	authed.Delete("/mentor/history", mentorHandler.ClearHistory)
	authed.Post("/mentor/history/upload", mentorHandler.UploadHistory)
	authed.Get("/mentor/history/download", mentorHandler.DownloadHistory)
	authed.Get("/mentor/audio", mentorHandler.GetAudio)
	authed.Put("/mentor/audio", mentorHandler.SetAudio)

	authed.Get("/notebook", notebookHandler.List)
	authed.Post("/notebook", notebookHandler.Add)
	authed.Get("/notebook/dashboard", notebookHandler.Dashboard)
	authed.Post("/notebook/insight", notebookHandler.Insight)
	authed.Put("/notebook/:id", notebookHandler.Update)
	authed.Delete("/notebook/:id", notebookHandler.Delete)
	authed.Post("/notebook/:id/reset-script", notebookHandler.ResetScript)
	authed.Post("/notebook/:id/reframing", notebookHandler.ThoughtReframing)

	authed.Get("/awareness", awarenessHandler.Get)
	authed.Post("/awareness", awarenessHandler.Generate)

	authed.Get("/export", exportHandler.Export)
	authed.Post("/import", exportHandler.Import)

	authed.Get("/trial", trialHandler.Status)

	// Trial countdown websocket (token passed as query parameter)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Use("/ws/trial", middleware.LocalAuthMiddleware(jwtAuth))
	app.Get("/ws/trial", websocket.New(trialHandler.Countdown))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		scheduler.Stop()
		close(watchStop)

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
