package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"task-reviewer-api/config"
	"task-reviewer-api/middleware"
	"task-reviewer-api/routes"
	"task-reviewer-api/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Pick the store backend: MySQL when configured, in-memory otherwise
	var taskStore services.TaskStore
	var reviewStore services.ReviewStore
	if cfg.DBDatabase != "" {
		db, err := config.OpenDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		store := services.NewGormStore(db)
		if err := store.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		taskStore = store
		reviewStore = store
	} else {
		log.Println("DB_DATABASE not set, using in-memory stores")
		memory := services.NewMemoryStore()
		taskStore = memory
		reviewStore = memory
	}

	registry := services.NewTaskRegistry(taskStore)
	generator := services.NewGeminiGenerator(cfg, nil)
	notifier := services.NewFeedbackNotifier(config.NewMailer(cfg))
	lifecycle := services.NewReviewLifecycle(taskStore, reviewStore, generator, notifier)

	// Set Gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Setup routes
	routes.SetupRoutes(router, routes.Deps{
		Cfg:       cfg,
		Registry:  registry,
		Lifecycle: lifecycle,
	})

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
