package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"io.winapps.dailyreflect/internal/handlers"
	"io.winapps.dailyreflect/internal/llm"
	"io.winapps.dailyreflect/internal/middleware"
	"io.winapps.dailyreflect/internal/prompt"
	"io.winapps.dailyreflect/internal/store"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// Initialize the persistence backend (STORE_DRIVER selects it)
	dataStore, err := store.Open()
	if err != nil {
		logger.Fatalw("Failed to initialize store", "error", err)
	}
	defer dataStore.Close()

	// Initialize the prompt generator
	generator, err := llm.NewGemini()
	if err != nil {
		logger.Fatalw("Failed to initialize prompt generator", "error", err)
	}

	promptCache := prompt.NewCache(dataStore, generator)

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "super-secret-key"
		logger.Warnw("SESSION_SECRET not set, using insecure default")
	}

	// Optionally pre-generate the prompt shortly after midnight so the first
	// visitor of the day does not wait on the generator.
	if os.Getenv("PROMPT_PREWARM") == "true" {
		prewarm := cron.New()
		if _, err := prewarm.AddFunc("5 0 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := promptCache.Today(ctx); err != nil {
				logger.Errorw("Failed to prewarm daily prompt", "error", err)
			}
		}); err != nil {
			logger.Fatalw("Failed to schedule prompt prewarm", "error", err)
		}
		prewarm.Start()
		defer prewarm.Stop()
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.LoadHTMLGlob("templates/*.html")

	// Initialize handlers
	journalHandler := handlers.NewJournalHandler(promptCache, dataStore, logger)

	// Journal routes are session-scoped; the middleware issues a session
	// cookie before any of them touch storage
	journal := router.Group("/")
	journal.Use(middleware.SessionMiddleware([]byte(secret)))
	{
		journal.GET("/", journalHandler.Today)
		journal.POST("/api/submit", journalHandler.Submit)
		journal.GET("/history", journalHandler.History)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infow("Server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("Shutting down server")

	// Give a 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalw("Server forced to shutdown", "error", err)
	}

	logger.Infow("Server exited")
}
